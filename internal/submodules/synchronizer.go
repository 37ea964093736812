package submodules

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/execshell"
)

const (
	gitMetadataNameConstant          = ".git"
	gitSubmoduleUpdateConstant       = "update"
	gitInitFlagConstant              = "--init"
	gitArgumentTerminatorConstant    = "--"
	gitFetchSubcommandConstant       = "fetch"
	gitShowRefSubcommandConstant     = "show-ref"
	gitVerifyFlagConstant            = "--verify"
	gitQuietFlagConstant             = "--quiet"
	gitSymbolicRefSubcommandConstant = "symbolic-ref"
	gitCheckoutSubcommandConstant    = "checkout"
	gitPullSubcommandConstant        = "pull"
	remoteReferencePrefixConstant    = "refs/remotes/"
	remoteHeadReferenceNameConstant  = "HEAD"
	submoduleSynchronizedLogMessage  = "submodule synchronized"
	submoduleFailedLogMessage        = "submodule synchronization failed"
	submodulePopulatedLogMessage     = "submodule checkout populated"
	logFieldSubmodulePathConstant    = "submodule_path"
	logFieldBranchConstant           = "branch"
	logFieldResolutionSourceConstant = "resolution_source"
	logFieldStepConstant             = "step"
)

// Synchronizer brings individual submodule checkouts onto their target branch.
type Synchronizer struct {
	executor   GitExecutor
	fileSystem billy.Filesystem
	logger     *zap.Logger
	workspace  string
}

// NewSynchronizer constructs a Synchronizer. The filesystem must be rooted at
// the workspace; it is only used to decide whether a checkout is present.
func NewSynchronizer(executor GitExecutor, fileSystem billy.Filesystem, logger *zap.Logger, workspace string) (*Synchronizer, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	trimmedWorkspace := strings.TrimSpace(workspace)
	if len(trimmedWorkspace) == 0 {
		return nil, ErrWorkspaceRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{executor: executor, fileSystem: fileSystem, logger: logger, workspace: trimmedWorkspace}, nil
}

// SynchronizeAll processes records sequentially in the given order. A failing
// record does not stop the others; cancellation does, and the outcomes gathered
// so far are returned.
func (synchronizer *Synchronizer) SynchronizeAll(executionContext context.Context, records []Record) []Outcome {
	outcomes := make([]Outcome, 0, len(records))
	for _, record := range records {
		if executionContext.Err() != nil {
			break
		}
		outcomes = append(outcomes, synchronizer.Synchronize(executionContext, record))
	}
	return outcomes
}

// Synchronize populates the checkout when missing, fetches, resolves the
// branch, checks it out and pulls it.
func (synchronizer *Synchronizer) Synchronize(executionContext context.Context, record Record) Outcome {
	outcome := Outcome{Record: record}
	if len(outcome.Record.RemoteName) == 0 {
		outcome.Record.RemoteName = DefaultRemoteName
	}
	remoteName := outcome.Record.RemoteName

	if !outcome.Record.Present {
		outcome.Record.Present = synchronizer.checkoutPresent(record.Path)
	}
	if !outcome.Record.Present {
		if _, populateError := executeGit(executionContext, synchronizer.executor, synchronizer.workspace,
			gitSubmoduleSubcommandConstant, gitSubmoduleUpdateConstant, gitInitFlagConstant, gitArgumentTerminatorConstant, record.Path,
		); populateError != nil {
			return synchronizer.fail(outcome, StepPopulate, populateError)
		}
		outcome.Record.Present = true
		synchronizer.logger.Debug(submodulePopulatedLogMessage, zap.String(logFieldSubmodulePathConstant, record.Path))
	}

	submoduleDirectory := filepath.Join(synchronizer.workspace, filepath.FromSlash(record.Path))

	if _, fetchError := executeGit(executionContext, synchronizer.executor, submoduleDirectory, gitFetchSubcommandConstant, remoteName); fetchError != nil {
		return synchronizer.fail(outcome, StepFetch, fetchError)
	}

	resolution, resolveError := synchronizer.resolveBranch(executionContext, submoduleDirectory, remoteName, record.TargetBranch)
	if resolveError != nil {
		return synchronizer.fail(outcome, StepResolve, resolveError)
	}
	outcome.Resolution = resolution

	if _, checkoutError := executeGit(executionContext, synchronizer.executor, submoduleDirectory, gitCheckoutSubcommandConstant, resolution.Branch); checkoutError != nil {
		return synchronizer.fail(outcome, StepCheckout, checkoutError)
	}
	if _, pullError := executeGit(executionContext, synchronizer.executor, submoduleDirectory, gitPullSubcommandConstant, remoteName, resolution.Branch); pullError != nil {
		return synchronizer.fail(outcome, StepPull, pullError)
	}

	synchronizer.logger.Info(submoduleSynchronizedLogMessage,
		zap.String(logFieldSubmodulePathConstant, record.Path),
		zap.String(logFieldBranchConstant, resolution.Branch),
		zap.String(logFieldResolutionSourceConstant, string(resolution.Source)),
	)
	return outcome
}

// resolveBranch prefers the target branch when the remote has it, then the
// branch the remote HEAD points to, then FallbackBranchName. A lookup that
// exits non-zero moves on to the next rule; a lookup that cannot run at all is
// an error.
func (synchronizer *Synchronizer) resolveBranch(executionContext context.Context, submoduleDirectory string, remoteName string, targetBranch string) (BranchResolution, error) {
	trimmedTarget := strings.TrimSpace(targetBranch)
	if len(trimmedTarget) > 0 {
		remoteReference := remoteReferencePrefixConstant + remoteName + pathSeparatorConstant + trimmedTarget
		_, lookupError := executeGit(executionContext, synchronizer.executor, submoduleDirectory,
			gitShowRefSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, remoteReference,
		)
		if lookupError == nil {
			return BranchResolution{Branch: trimmedTarget, Source: ResolutionRequested}, nil
		}
		if !isNonZeroExit(lookupError) {
			return BranchResolution{}, lookupError
		}
	}

	headReference := remoteReferencePrefixConstant + remoteName + pathSeparatorConstant + remoteHeadReferenceNameConstant
	result, headError := executeGit(executionContext, synchronizer.executor, submoduleDirectory, gitSymbolicRefSubcommandConstant, headReference)
	if headError != nil {
		if !isNonZeroExit(headError) {
			return BranchResolution{}, headError
		}
		return BranchResolution{Branch: FallbackBranchName, Source: ResolutionStaticFallback}, nil
	}

	defaultBranch := lastPathSegment(result.StandardOutput)
	if len(defaultBranch) == 0 {
		return BranchResolution{Branch: FallbackBranchName, Source: ResolutionStaticFallback}, nil
	}
	return BranchResolution{Branch: defaultBranch, Source: ResolutionRemoteDefault}, nil
}

func (synchronizer *Synchronizer) checkoutPresent(submodulePath string) bool {
	_, statError := synchronizer.fileSystem.Lstat(synchronizer.fileSystem.Join(filepath.ToSlash(submodulePath), gitMetadataNameConstant))
	return statError == nil
}

func (synchronizer *Synchronizer) fail(outcome Outcome, step Step, cause error) Outcome {
	outcome.Err = SynchronizationError{Path: outcome.Record.Path, Step: step, Err: cause}
	synchronizer.logger.Warn(submoduleFailedLogMessage,
		zap.String(logFieldSubmodulePathConstant, outcome.Record.Path),
		zap.String(logFieldStepConstant, string(step)),
		zap.Error(cause),
	)
	return outcome
}

func isNonZeroExit(commandError error) bool {
	var failure execshell.CommandFailedError
	return errors.As(commandError, &failure)
}

func lastPathSegment(reference string) string {
	trimmedReference := strings.TrimSpace(reference)
	if separatorIndex := strings.LastIndex(trimmedReference, pathSeparatorConstant); separatorIndex != -1 {
		return trimmedReference[separatorIndex+1:]
	}
	return trimmedReference
}
