package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesSubmoduleCommands(t *testing.T) {
	formatter := CommandMessageFormatter{}
	testCases := []struct {
		name     string
		command  ShellCommand
		stage    messageStage
		result   ExecutionResult
		failure  error
		expected string
	}{
		{
			name:     "ScopedUpdateStart",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"submodule", "update", "--init", "--", "vendor/glm"}, WorkingDirectory: "/workspace"}},
			stage:    messageStageStart,
			expected: "Initializing and fetching vendor/glm in /workspace",
		},
		{
			name:     "RecursiveUpdateStart",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"submodule", "update", "--init", "--recursive"}, WorkingDirectory: "/workspace"}},
			stage:    messageStageStart,
			expected: "Initializing and fetching all submodules in /workspace",
		},
		{
			name:     "InitWithoutWorkingDirectory",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"submodule", "init"}}},
			stage:    messageStageSuccess,
			expected: "Registered submodules in current directory",
		},
		{
			name:     "ShowRefFailure",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"show-ref", "--verify", "--quiet", "refs/remotes/origin/docking"}, WorkingDirectory: "vendor/imgui"}},
			stage:    messageStageFailure,
			result:   ExecutionResult{ExitCode: 1},
			expected: "origin/docking not found in vendor/imgui (exit code 1)",
		},
		{
			name:     "PullFailureIncludesStandardError",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"pull", "origin", "main"}, WorkingDirectory: "vendor/glfw"}},
			stage:    messageStageFailure,
			result:   ExecutionResult{ExitCode: 1, StandardError: "fatal: not possible to fast-forward\n"},
			expected: "Failed to pull main from origin into vendor/glfw (exit code 1: fatal: not possible to fast-forward)",
		},
		{
			name:     "CheckoutExecutionFailure",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"checkout", "master"}, WorkingDirectory: "vendor/glm"}},
			stage:    messageStageExecutionFailure,
			failure:  errors.New("context canceled"),
			expected: "Unable to switch vendor/glm to branch master: context canceled",
		},
		{
			name:     "SafeDirectoryConfig",
			command:  ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"config", "--global", "--add", "safe.directory", "/workspace"}}},
			stage:    messageStageStart,
			expected: "Updating git configuration (safe.directory /workspace)",
		},
		{
			name:     "SSHProbe",
			command:  ShellCommand{Name: CommandSSH, Details: CommandDetails{Arguments: []string{"-T", "-o", "BatchMode=yes", "-o", "ConnectTimeout=5", "git@github.com"}}},
			stage:    messageStageStart,
			expected: "Probing SSH access to git@github.com",
		},
		{
			name:     "GenericBinary",
			command:  ShellCommand{Name: CommandName("vendor/premake/premake5"), Details: CommandDetails{Arguments: []string{"gmake2"}, WorkingDirectory: "/workspace"}},
			stage:    messageStageFailure,
			result:   ExecutionResult{ExitCode: 2},
			expected: "vendor/premake/premake5 gmake2 (in /workspace) failed with exit code 2",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			message := formatter.buildMessage(testCase.command, testCase.result, testCase.failure, testCase.stage)
			require.Equal(t, testCase.expected, message)
		})
	}
}
