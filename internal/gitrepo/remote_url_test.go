package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wsboot/internal/gitrepo"
)

func TestParseRemoteURL(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected gitrepo.RemoteURL
	}{
		{
			name:     "SSHShorthand",
			input:    "git@github.com:glfw/glfw.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, User: "git", Host: "github.com", Path: "glfw/glfw.git"},
		},
		{
			name:     "SSHURL",
			input:    "ssh://git@github.com/ocornut/imgui.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, User: "git", Host: "github.com", Path: "ocornut/imgui.git"},
		},
		{
			name:     "SSHURLWithPort",
			input:    "ssh://git@gitlab.example.com:2222/group/sub/project.git",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, User: "git", Host: "gitlab.example.com", Port: "2222", Path: "group/sub/project.git"},
		},
		{
			name:     "HTTPS",
			input:    " https://github.com/g-truc/glm ",
			expected: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Path: "g-truc/glm"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			parsed, parseError := gitrepo.ParseRemoteURL(testCase.input)
			require.NoError(t, parseError)
			require.Equal(t, testCase.expected, parsed)
		})
	}
}

func TestParseRemoteURLRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"", "   ", "../relative/path", "https://github.com", "ssh://git@github.com", "file:///srv/repo.git"} {
		_, parseError := gitrepo.ParseRemoteURL(input)
		var remoteError gitrepo.RemoteURLParseError
		require.ErrorAs(t, parseError, &remoteError, input)
	}
}

func TestIsSSHForm(t *testing.T) {
	require.True(t, gitrepo.IsSSHForm("git@github.com:owner/repo.git"))
	require.True(t, gitrepo.IsSSHForm("ssh://git@github.com/owner/repo.git"))
	require.False(t, gitrepo.IsSSHForm("https://github.com/owner/repo.git"))
	require.False(t, gitrepo.IsSSHForm("https://user@github.com/owner/repo.git"))
	require.False(t, gitrepo.IsSSHForm("../sibling"))
}

func TestFormatRemoteURLPreservesHostAndPath(t *testing.T) {
	parsed, parseError := gitrepo.ParseRemoteURL("ssh://git@gitlab.example.com:2222/group/project.git")
	require.NoError(t, parseError)

	sshForm, sshError := gitrepo.FormatRemoteURL(parsed)
	require.NoError(t, sshError)
	require.Equal(t, "ssh://git@gitlab.example.com:2222/group/project.git", sshForm)

	parsed.Protocol = gitrepo.RemoteProtocolHTTPS
	httpsForm, httpsError := gitrepo.FormatRemoteURL(parsed)
	require.NoError(t, httpsError)
	require.Equal(t, "https://gitlab.example.com/group/project.git", httpsForm)
	require.Equal(t, "git@gitlab.example.com", parsed.Destination())

	_, unsupportedError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{Protocol: "ftp", Host: "example.com", Path: "repo"})
	require.ErrorAs(t, unsupportedError, &gitrepo.UnsupportedProtocolError{})
}
