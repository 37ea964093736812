package submodules

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/manifest"
)

const (
	gitConfigSubcommandConstant     = "config"
	gitGlobalFlagConstant           = "--global"
	gitAddFlagConstant              = "--add"
	gitSafeDirectoryKeyConstant     = "safe.directory"
	gitSubmoduleSubcommandConstant  = "submodule"
	gitSubmoduleSyncConstant        = "sync"
	gitSubmoduleInitConstant        = "init"
	safeDirectoryFailureTemplate    = "failed to mark workspace %s as safe: %w"
	submoduleSyncFailureTemplate    = "failed to synchronize submodule remotes: %w"
	submoduleInitFailureTemplate    = "failed to initialize submodules: %w"
	registryReadyLogMessageConstant = "submodule registry initialized"
	logFieldSubmoduleCountConstant  = "submodule_count"
	logFieldResynchronizedConstant  = "resynchronized"
	pathSeparatorConstant           = "/"
	currentDirectoryPathConstant    = "."
	backslashPathSeparatorConstant  = "\\"
)

// Registry registers manifest submodules with git and produces the records of a run.
type Registry struct {
	executor          GitExecutor
	logger            *zap.Logger
	workspace         string
	requestedBranches map[string]string
}

// NewRegistry constructs a Registry for the workspace. Requests override the
// branch declared in the manifest for matching paths.
func NewRegistry(executor GitExecutor, logger *zap.Logger, workspace string, requests []BranchRequest) (*Registry, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedWorkspace := strings.TrimSpace(workspace)
	if len(trimmedWorkspace) == 0 {
		return nil, ErrWorkspaceRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	requestedBranches := make(map[string]string, len(requests))
	for _, request := range requests {
		branch := strings.TrimSpace(request.Branch)
		if len(branch) == 0 {
			continue
		}
		requestedBranches[normalizePath(request.Path)] = branch
	}

	return &Registry{executor: executor, logger: logger, workspace: trimmedWorkspace, requestedBranches: requestedBranches}, nil
}

// Initialize marks the workspace as a safe directory, resynchronizes remote
// URLs when the manifest changed, registers every submodule without fetching
// and returns one record per manifest entry in manifest order.
func (registry *Registry) Initialize(executionContext context.Context, declared manifest.Manifest, resynchronize bool) ([]Record, error) {
	if _, configError := executeGit(executionContext, registry.executor, registry.workspace,
		gitConfigSubcommandConstant, gitGlobalFlagConstant, gitAddFlagConstant, gitSafeDirectoryKeyConstant, registry.workspace,
	); configError != nil {
		return nil, fmt.Errorf(safeDirectoryFailureTemplate, registry.workspace, configError)
	}

	if resynchronize {
		if _, syncError := executeGit(executionContext, registry.executor, registry.workspace, gitSubmoduleSubcommandConstant, gitSubmoduleSyncConstant); syncError != nil {
			return nil, fmt.Errorf(submoduleSyncFailureTemplate, syncError)
		}
	}

	if _, initError := executeGit(executionContext, registry.executor, registry.workspace, gitSubmoduleSubcommandConstant, gitSubmoduleInitConstant); initError != nil {
		return nil, fmt.Errorf(submoduleInitFailureTemplate, initError)
	}

	records := make([]Record, 0, len(declared.Entries))
	for _, entry := range declared.Entries {
		records = append(records, Record{
			Path:         entry.Path,
			RemoteName:   DefaultRemoteName,
			TargetBranch: registry.targetBranch(entry),
		})
	}

	registry.logger.Info(registryReadyLogMessageConstant,
		zap.Int(logFieldSubmoduleCountConstant, len(records)),
		zap.Bool(logFieldResynchronizedConstant, resynchronize),
	)
	return records, nil
}

func (registry *Registry) targetBranch(entry manifest.Entry) string {
	if requested, found := registry.requestedBranches[normalizePath(entry.Path)]; found {
		return requested
	}
	if declaredBranch := strings.TrimSpace(entry.Branch); len(declaredBranch) > 0 && declaredBranch != currentDirectoryPathConstant {
		return declaredBranch
	}
	return FallbackBranchName
}

func normalizePath(submodulePath string) string {
	slashed := strings.ReplaceAll(strings.TrimSpace(submodulePath), backslashPathSeparatorConstant, pathSeparatorConstant)
	return strings.Trim(path.Clean(slashed), pathSeparatorConstant)
}
