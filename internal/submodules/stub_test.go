package submodules_test

import (
	"context"
	"strings"

	"github.com/temirov/wsboot/internal/execshell"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type recordingGitExecutor struct {
	responses        map[string]scriptedResponse
	recordedCommands []execshell.CommandDetails
}

func newRecordingGitExecutor() *recordingGitExecutor {
	return &recordingGitExecutor{responses: map[string]scriptedResponse{}}
}

func (executor *recordingGitExecutor) respond(arguments string, result execshell.ExecutionResult, err error) {
	executor.responses[arguments] = scriptedResponse{result: result, err: err}
}

func (executor *recordingGitExecutor) fail(arguments string, exitCode int, standardError string) {
	executor.respond(arguments, execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode, StandardError: standardError},
	})
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	response, found := executor.responses[strings.Join(details.Arguments, " ")]
	if !found {
		return execshell.ExecutionResult{}, nil
	}
	return response.result, response.err
}

func (executor *recordingGitExecutor) invocations() []string {
	invocations := make([]string, 0, len(executor.recordedCommands))
	for _, details := range executor.recordedCommands {
		invocations = append(invocations, details.WorkingDirectory+": git "+strings.Join(details.Arguments, " "))
	}
	return invocations
}
