package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "BareFlag", arguments: []string{"--ci"}, expectedValue: true, expectedChanged: true},
		{name: "DetachedYes", arguments: []string{"--ci", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "AttachedOff", arguments: []string{"--ci=off"}, expectedValue: false, expectedChanged: true},
		{name: "DetachedNoUppercase", arguments: []string{"--ci", "NO"}, expectedValue: false, expectedChanged: true},
		{name: "FollowedByFlag", arguments: []string{"--ci", "--workspace", "/work"}, expectedValue: true, expectedChanged: true},
		{name: "DetachedZero", arguments: []string{"--ci", "0"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}
			var workspace string
			command.Flags().StringVar(&workspace, "workspace", "", "workspace")

			var ciMode bool
			AddToggleFlag(command.Flags(), &ciMode, "ci", "", false, "Run non-interactively")

			require.NoError(t, command.ParseFlags(NormalizeToggleArguments(testCase.arguments)))
			require.Equal(t, testCase.expectedValue, ciMode)

			flag := command.Flags().Lookup("ci")
			require.NotNil(t, flag)
			require.Equal(t, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	command := &cobra.Command{}

	var ciMode bool
	AddToggleFlag(command.Flags(), &ciMode, "ci", "", false, "Run non-interactively")

	require.Error(t, command.ParseFlags(NormalizeToggleArguments([]string{"--ci", "maybe"})))
	require.False(t, ciMode)
	require.False(t, command.Flags().Lookup("ci").Changed)
}

func TestNormalizeToggleArgumentsHandlesShorthand(t *testing.T) {
	command := &cobra.Command{}

	var assumeYes bool
	AddToggleFlag(command.Flags(), &assumeYes, "yes", "y", true, "Confirm prompts")

	require.NoError(t, command.ParseFlags(NormalizeToggleArguments([]string{"-y", "no"})))
	require.False(t, assumeYes)
	require.True(t, command.Flags().Lookup("yes").Changed)
	require.Equal(t, "`<YES|no>` Confirm prompts", command.Flags().Lookup("yes").Usage)
}

func TestNormalizeToggleArgumentsStopsAtTerminator(t *testing.T) {
	var ciMode bool
	AddToggleFlag(new(cobra.Command).Flags(), &ciMode, "ci", "", false, "")

	require.Equal(t, []string{"--", "--ci", "yes"}, NormalizeToggleArguments([]string{"--", "--ci", "yes"}))
	require.Nil(t, NormalizeToggleArguments(nil))
}
