package submodules

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/wsboot/internal/execshell"
)

const (
	// DefaultRemoteName is the remote every submodule record tracks.
	DefaultRemoteName = "origin"
	// FallbackBranchName is used when neither the requested branch nor the remote default can be determined.
	FallbackBranchName = "main"

	gitExecutorMissingMessageConstant = "git executor not configured"
	fileSystemMissingMessageConstant  = "workspace filesystem not configured"
	workspaceRequiredMessageConstant  = "workspace path must be provided"
	synchronizationErrorTemplate      = "submodule %s: %s failed: %v"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the workspace filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrWorkspaceRequired indicates the workspace path was empty.
var ErrWorkspaceRequired = errors.New(workspaceRequiredMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Record is the run's view of one declared submodule.
type Record struct {
	Path         string `yaml:"path"`
	RemoteName   string `yaml:"remote"`
	TargetBranch string `yaml:"target_branch"`
	Present      bool   `yaml:"present"`
}

// BranchRequest asks for a specific branch at a submodule path.
type BranchRequest struct {
	Path   string `mapstructure:"path"`
	Branch string `mapstructure:"branch"`
}

// ResolutionSource tells which rule produced a resolved branch.
type ResolutionSource string

// Resolution sources, in order of preference.
const (
	ResolutionRequested      ResolutionSource = ResolutionSource("requested")
	ResolutionRemoteDefault  ResolutionSource = ResolutionSource("remote-default")
	ResolutionStaticFallback ResolutionSource = ResolutionSource("static-fallback")
)

// BranchResolution is the branch a submodule ended up on and why.
type BranchResolution struct {
	Branch string           `yaml:"branch"`
	Source ResolutionSource `yaml:"source"`
}

// Step names a stage of submodule synchronization.
type Step string

// Synchronization steps.
const (
	StepPopulate Step = Step("populate")
	StepFetch    Step = Step("fetch")
	StepResolve  Step = Step("resolve")
	StepCheckout Step = Step("checkout")
	StepPull     Step = Step("pull")
)

// SynchronizationError reports the step at which a submodule failed.
type SynchronizationError struct {
	Path string
	Step Step
	Err  error
}

// Error describes the failure including the command diagnostic.
func (synchronizationError SynchronizationError) Error() string {
	return fmt.Sprintf(synchronizationErrorTemplate, synchronizationError.Path, synchronizationError.Step, synchronizationError.Err)
}

// Unwrap exposes the underlying command failure.
func (synchronizationError SynchronizationError) Unwrap() error {
	return synchronizationError.Err
}

// Outcome is the result of synchronizing one submodule. Err is nil on success.
type Outcome struct {
	Record     Record
	Resolution BranchResolution
	Err        error
}

// Succeeded reports whether the submodule reached its resolved branch.
func (outcome Outcome) Succeeded() bool {
	return outcome.Err == nil
}
