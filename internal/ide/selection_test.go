package ide_test

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wsboot/internal/ide"
)

type scriptedChooser struct {
	selection int
	err       error
	prompts   []string
	options   [][]string
}

func (chooser *scriptedChooser) Choose(prompt string, options []string) (int, error) {
	chooser.prompts = append(chooser.prompts, prompt)
	chooser.options = append(chooser.options, options)
	return chooser.selection, chooser.err
}

func lookPathFor(available ...string) ide.LookPathFunc {
	return func(file string) (string, error) {
		for _, executable := range available {
			if executable == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetect(t *testing.T) {
	testCases := []struct {
		name      string
		available []string
		expected  []string
	}{
		{name: "AllPresent", available: []string{"make", "code", "rider"}, expected: []string{ide.JetBrainsRider, ide.VSCode, ide.Makefile}},
		{name: "OnlyVSCode", available: []string{"code"}, expected: []string{ide.VSCode, ide.Makefile}},
		{name: "Nothing", expected: []string{ide.Makefile}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, ide.Detect(lookPathFor(testCase.available...)))
		})
	}
}

func TestActionFor(t *testing.T) {
	require.Equal(t, "rider", ide.ActionFor("JetBrains Rider"))
	require.Equal(t, "gmake2", ide.ActionFor("VSCode"))
	require.Equal(t, "gmake2", ide.ActionFor("Makefile"))
	require.Equal(t, "gmake2", ide.ActionFor("Emacs"))
	require.True(t, ide.IsVSCode("VSCode"))
	require.False(t, ide.IsVSCode("Makefile"))
}

func TestSelectorNonInteractiveUsesDefaults(t *testing.T) {
	chooser := &scriptedChooser{}
	selector := ide.NewSelector(chooser, lookPathFor(), ide.Options{NonInteractive: true})

	selected, selectError := selector.SelectIDE()
	require.NoError(t, selectError)
	require.Equal(t, ide.Makefile, selected)

	buildConfig, configError := selector.SelectBuildConfig()
	require.NoError(t, configError)
	require.Equal(t, ide.BuildConfigDebug, buildConfig)
	require.Empty(t, chooser.prompts)
}

func TestSelectorPromptsInteractively(t *testing.T) {
	chooser := &scriptedChooser{selection: 1}
	selector := ide.NewSelector(chooser, lookPathFor("make", "code"), ide.Options{})

	selected, selectError := selector.SelectIDE()
	require.NoError(t, selectError)
	require.Equal(t, ide.Makefile, selected)
	require.Equal(t, []string{ide.VSCode, ide.Makefile}, chooser.options[0])

	buildConfig, configError := selector.SelectBuildConfig()
	require.NoError(t, configError)
	require.Equal(t, ide.BuildConfigRelease, buildConfig)
}

func TestSelectorErrors(t *testing.T) {
	_, missingChooserError := ide.NewSelector(nil, lookPathFor(), ide.Options{}).SelectIDE()
	require.ErrorIs(t, missingChooserError, ide.ErrChooserNotConfigured)

	closedInput := errors.New("input closed")
	_, chooseError := ide.NewSelector(&scriptedChooser{err: closedInput}, lookPathFor(), ide.Options{}).SelectBuildConfig()
	require.ErrorIs(t, chooseError, closedInput)
}
