package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wsboot/internal/manifest"
)

const sampleManifestContents = `# vendored dependencies
[submodule "vendor/glfw"]
	path = vendor/glfw
	url = git@github.com:glfw/glfw.git
[submodule "vendor/imgui"]
	path = vendor/imgui
	url = ssh://git@github.com/ocornut/imgui.git
	branch = docking
[submodule "vendor/glm"]
	path = vendor/glm
	url = https://github.com/g-truc/glm.git
`

func TestParseKeepsEntryOrder(t *testing.T) {
	parsed, parseError := manifest.Parse(sampleManifestContents)
	require.NoError(t, parseError)
	require.Equal(t, []manifest.Entry{
		{Name: "vendor/glfw", Path: "vendor/glfw", URL: "git@github.com:glfw/glfw.git"},
		{Name: "vendor/imgui", Path: "vendor/imgui", URL: "ssh://git@github.com/ocornut/imgui.git", Branch: "docking"},
		{Name: "vendor/glm", Path: "vendor/glm", URL: "https://github.com/g-truc/glm.git"},
	}, parsed.Entries)
}

func TestParseIgnoresOtherSections(t *testing.T) {
	contents := "[core]\n\tbare = false\n[submodule \"lib\"]\n\tpath = lib\n\turl = https://example.com/lib.git\n"
	parsed, parseError := manifest.Parse(contents)
	require.NoError(t, parseError)
	require.Len(t, parsed.Entries, 1)
	require.Equal(t, "lib", parsed.Entries[0].Path)
}

func TestParseRejectsIncompleteEntries(t *testing.T) {
	testCases := []struct {
		name     string
		contents string
		message  string
	}{
		{
			name:     "MissingPath",
			contents: "[submodule \"lib\"]\n\turl = https://example.com/lib.git\n",
			message:  "declares no path",
		},
		{
			name:     "MissingURL",
			contents: "[submodule \"lib\"]\n\tpath = lib\n",
			message:  "declares no url",
		},
		{
			name:     "MalformedLine",
			contents: "[submodule \"lib\"]\n\tpath lib\n",
			message:  "malformed manifest line",
		},
		{
			name:     "UnterminatedSection",
			contents: "[submodule \"lib\"\n",
			message:  "malformed manifest line",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, parseError := manifest.Parse(testCase.contents)
			require.Error(t, parseError)
			require.Contains(t, parseError.Error(), testCase.message)
		})
	}
}

func TestProbeDestinationUsesFirstSSHRemote(t *testing.T) {
	parsed, parseError := manifest.Parse(sampleManifestContents)
	require.NoError(t, parseError)
	require.Len(t, parsed.SSHEntries(), 2)

	destination, found := parsed.ProbeDestination()
	require.True(t, found)
	require.Equal(t, "git@github.com", destination)

	httpsOnly := manifest.Manifest{Entries: []manifest.Entry{{Path: "lib", URL: "https://example.com/lib.git"}}}
	_, found = httpsOnly.ProbeDestination()
	require.False(t, found)
}
