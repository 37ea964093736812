package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/execshell"
)

const (
	binaryExecutorMissingMessage = "binary executor not configured"
	actionRequiredMessage        = "generator action must be provided"
	generatorRunFailedTemplate   = "unable to run %s: %w"
	generatorFinishedLogMessage  = "build generator finished"
	logFieldActionConstant       = "action"
	logFieldExitCodeConstant     = "exit_code"
)

// ErrBinaryExecutorNotConfigured indicates the executor dependency was missing.
var ErrBinaryExecutorNotConfigured = errors.New(binaryExecutorMissingMessage)

// ErrActionRequired indicates an empty generator action.
var ErrActionRequired = errors.New(actionRequiredMessage)

// BinaryExecutor runs an executable by path.
type BinaryExecutor interface {
	ExecuteBinary(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Runner invokes the generator from the workspace root.
type Runner struct {
	executor   BinaryExecutor
	logger     *zap.Logger
	workspace  string
	binaryPath string
}

// NewRunner constructs a Runner for the binary at binaryPath, relative to workspace.
func NewRunner(executor BinaryExecutor, logger *zap.Logger, workspace string, binaryPath string) (*Runner, error) {
	if executor == nil {
		return nil, ErrBinaryExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{executor: executor, logger: logger, workspace: workspace, binaryPath: binaryPath}, nil
}

// Generate runs the generator with action as its only argument and returns
// its exit code. A non-zero exit is reported through the code, not the error;
// the error is reserved for a generator that could not be run at all.
func (runner *Runner) Generate(executionContext context.Context, action string) (int, error) {
	trimmedAction := strings.TrimSpace(action)
	if len(trimmedAction) == 0 {
		return 0, ErrActionRequired
	}

	executable := runner.binaryPath
	if !filepath.IsAbs(executable) {
		executable = filepath.Join(runner.workspace, filepath.FromSlash(executable))
	}

	exitCode := 0
	_, runError := runner.executor.ExecuteBinary(executionContext, executable, execshell.CommandDetails{
		Arguments:        []string{trimmedAction},
		WorkingDirectory: runner.workspace,
	})
	if runError != nil {
		var failure execshell.CommandFailedError
		if !errors.As(runError, &failure) {
			return 0, fmt.Errorf(generatorRunFailedTemplate, executable, runError)
		}
		exitCode = failure.Result.ExitCode
	}

	runner.logger.Info(generatorFinishedLogMessage, zap.String(logFieldActionConstant, trimmedAction), zap.Int(logFieldExitCodeConstant, exitCode))
	return exitCode, nil
}
