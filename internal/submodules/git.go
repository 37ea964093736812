package submodules

import (
	"context"

	"github.com/temirov/wsboot/internal/execshell"
)

const (
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

func executeGit(executionContext context.Context, executor GitExecutor, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	return executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
}
