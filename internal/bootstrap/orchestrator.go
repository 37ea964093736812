package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/ide"
	"github.com/temirov/wsboot/internal/manifest"
	"github.com/temirov/wsboot/internal/submodules"
)

const (
	collaboratorMissingTemplate        = "bootstrap collaborator not configured: %s"
	manifestLoadFailedTemplate         = "unable to load manifest: %w"
	manifestRewriteFailedTemplate      = "unable to switch manifest to https: %w"
	ideSelectionFailedTemplate         = "unable to select an IDE: %w"
	buildConfigSelectionFailedTemplate = "unable to select a build configuration: %w"
	ideConfigurationFailedTemplate     = "unable to write IDE configuration: %w"
	stateReachedLogMessage             = "bootstrap state reached"
	stageFailedLogMessage              = "bootstrap stage failed"
	transportSelectedLogMessage        = "submodule transport selected"
	logFieldStateConstant              = "state"
	logFieldTransportConstant          = "transport"
	logFieldProbeTargetConstant        = "probe_target"
	logFieldRewrittenURLsConstant      = "rewritten_urls"
	environmentSectionTitle            = "Checking host dependencies"
	generatorSectionTitle              = "Checking build generator"
	registrySectionTitle               = "Preparing submodules"
	synchronizationSectionTitle        = "Synchronizing submodules"
	buildSectionTitle                  = "Generating build files"
	sshUnavailableReportTemplate       = "SSH access to %s unavailable, switching %d submodule URL(s) to HTTPS"
	sshAvailableReportTemplate         = "SSH access to %s available"
	submoduleSynchronizedReport        = "%s is on %s"
	submoduleFailedReportTemplate      = "%s could not be synchronized: %v"
	submoduleFailureSummaryTemplate    = "%d of %d submodule(s) failed to synchronize"
	generatorSelectionReportTemplate   = "Generating %s project files (%s)"
	buildFailedReportTemplate          = "BUILD FAILED! the premake script encountered %d errors"
	buildSucceededReportMessage        = "BUILD SUCCESSFUL!"
)

// EnvironmentValidator makes sure the host has what the build needs.
type EnvironmentValidator interface {
	Validate(executionContext context.Context) error
}

// GeneratorProvisioner locates or installs the build generator and returns its path.
type GeneratorProvisioner interface {
	Validate(executionContext context.Context) (string, error)
}

// ConnectivityChecker gates interactive runs on a working internet connection.
type ConnectivityChecker interface {
	Check(executionContext context.Context) error
}

// ReachabilityProber reports whether SSH remotes can be used.
type ReachabilityProber interface {
	Usable(executionContext context.Context, target string) bool
}

// ManifestStore reads and rewrites the submodule manifest.
type ManifestStore interface {
	Load() (manifest.Manifest, error)
	Rewrite(mode manifest.TransportMode) (int, error)
}

// RegistryInitializer registers the declared submodules with the workspace repository.
type RegistryInitializer interface {
	Initialize(executionContext context.Context, declared manifest.Manifest, resynchronize bool) ([]submodules.Record, error)
}

// SubmoduleSynchronizer brings every registered submodule onto its branch.
type SubmoduleSynchronizer interface {
	SynchronizeAll(executionContext context.Context, records []submodules.Record) []submodules.Outcome
}

// WorkspaceConfigurator picks the IDE and writes editor configuration.
type WorkspaceConfigurator interface {
	SelectIDE() (string, error)
	SelectBuildConfig() (string, error)
	WriteIDEConfig(buildConfig string) error
}

// BuildGenerator runs the build generator with a single action.
type BuildGenerator interface {
	Generate(executionContext context.Context, action string) (int, error)
}

// StatusReporter receives progress lines meant for the terminal.
type StatusReporter interface {
	Section(title string)
	Info(format string, arguments ...any)
	Success(format string, arguments ...any)
	Warning(format string, arguments ...any)
	Failure(format string, arguments ...any)
}

// Dependencies enumerates the collaborators of an Orchestrator.
// Connectivity may be nil; every other collaborator is required.
type Dependencies struct {
	Environment  EnvironmentValidator
	Generator    GeneratorProvisioner
	Connectivity ConnectivityChecker
	Prober       ReachabilityProber
	Manifest     ManifestStore
	Registry     RegistryInitializer
	Synchronizer SubmoduleSynchronizer
	Workspace    WorkspaceConfigurator
	Builder      BuildGenerator
	Reporter     StatusReporter
	Logger       *zap.Logger
}

// Options carries the run-wide settings read once at startup.
type Options struct {
	// CIMode skips the connectivity gate. Prompt suppression is the
	// responsibility of the collaborators constructed for the run.
	CIMode    bool
	Workspace string
}

// Orchestrator drives a workspace from START to DONE.
type Orchestrator struct {
	dependencies Dependencies
	options      Options
	logger       *zap.Logger
	reporter     StatusReporter
}

// NewOrchestrator validates the collaborators and constructs an Orchestrator.
func NewOrchestrator(dependencies Dependencies, options Options) (*Orchestrator, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{name: "environment validator", missing: dependencies.Environment == nil},
		{name: "generator provisioner", missing: dependencies.Generator == nil},
		{name: "reachability prober", missing: dependencies.Prober == nil},
		{name: "manifest store", missing: dependencies.Manifest == nil},
		{name: "registry initializer", missing: dependencies.Registry == nil},
		{name: "submodule synchronizer", missing: dependencies.Synchronizer == nil},
		{name: "workspace configurator", missing: dependencies.Workspace == nil},
		{name: "build generator", missing: dependencies.Builder == nil},
	}
	for _, collaborator := range required {
		if collaborator.missing {
			return nil, fmt.Errorf(collaboratorMissingTemplate, collaborator.name)
		}
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = silentReporter{}
	}
	return &Orchestrator{dependencies: dependencies, options: options, logger: logger, reporter: reporter}, nil
}

// Run walks every state in order. The returned Report is filled as far as the
// run got; a non-nil error is always a StageError naming the state that could
// not be reached. Submodule failures and a failing generator exit code are
// recorded in the Report and do not produce an error.
func (orchestrator *Orchestrator) Run(executionContext context.Context) (Report, error) {
	report := Report{Workspace: orchestrator.options.Workspace, CIMode: orchestrator.options.CIMode}
	orchestrator.enter(&report, StateStart)

	stages := []struct {
		state State
		run   func(context.Context, *Report) error
	}{
		{state: StateEnvironmentReady, run: orchestrator.prepareEnvironment},
		{state: StateGeneratorReady, run: orchestrator.prepareGenerator},
		{state: StateRegistryReady, run: orchestrator.prepareRegistry},
		{state: StateSubmodulesSynced, run: orchestrator.synchronizeSubmodules},
		{state: StateBuildGenerated, run: orchestrator.generateBuild},
	}

	for _, stage := range stages {
		stageError := stage.run(executionContext, &report)
		if stageError == nil {
			stageError = executionContext.Err()
		}
		if stageError != nil {
			orchestrator.logger.Error(stageFailedLogMessage, zap.String(logFieldStateConstant, string(stage.state)), zap.Error(stageError))
			return report, StageError{State: stage.state, Err: stageError}
		}
		orchestrator.enter(&report, stage.state)
	}

	orchestrator.enter(&report, StateDone)
	return report, nil
}

func (orchestrator *Orchestrator) enter(report *Report, state State) {
	report.States = append(report.States, state)
	orchestrator.logger.Info(stateReachedLogMessage, zap.String(logFieldStateConstant, string(state)))
}

func (orchestrator *Orchestrator) prepareEnvironment(executionContext context.Context, _ *Report) error {
	orchestrator.reporter.Section(environmentSectionTitle)
	if !orchestrator.options.CIMode && orchestrator.dependencies.Connectivity != nil {
		if connectivityError := orchestrator.dependencies.Connectivity.Check(executionContext); connectivityError != nil {
			return connectivityError
		}
	}
	return orchestrator.dependencies.Environment.Validate(executionContext)
}

func (orchestrator *Orchestrator) prepareGenerator(executionContext context.Context, report *Report) error {
	orchestrator.reporter.Section(generatorSectionTitle)
	generatorPath, provisionError := orchestrator.dependencies.Generator.Validate(executionContext)
	if provisionError != nil {
		return provisionError
	}
	report.GeneratorPath = generatorPath
	return nil
}

// prepareRegistry switches the manifest to HTTPS when it declares SSH remotes
// that cannot be used, then registers the submodules. Only a rewrite that
// changed the file asks the registry to resynchronize remote URLs.
func (orchestrator *Orchestrator) prepareRegistry(executionContext context.Context, report *Report) error {
	orchestrator.reporter.Section(registrySectionTitle)
	declared, loadError := orchestrator.dependencies.Manifest.Load()
	if loadError != nil {
		return fmt.Errorf(manifestLoadFailedTemplate, loadError)
	}

	report.Transport = manifest.TransportHTTPS
	probeTarget, declaresSSH := declared.ProbeDestination()
	if declaresSSH {
		report.ProbeTarget = probeTarget
		report.Transport = manifest.TransportSSH
		if orchestrator.dependencies.Prober.Usable(executionContext, probeTarget) {
			orchestrator.reporter.Success(sshAvailableReportTemplate, probeTarget)
		} else {
			if contextError := executionContext.Err(); contextError != nil {
				return contextError
			}
			rewrittenURLs, rewriteError := orchestrator.dependencies.Manifest.Rewrite(manifest.TransportHTTPS)
			if rewriteError != nil {
				return fmt.Errorf(manifestRewriteFailedTemplate, rewriteError)
			}
			report.Transport = manifest.TransportHTTPS
			report.RewrittenURLs = rewrittenURLs
			orchestrator.reporter.Warning(sshUnavailableReportTemplate, probeTarget, rewrittenURLs)
			if rewrittenURLs > 0 {
				if declared, loadError = orchestrator.dependencies.Manifest.Load(); loadError != nil {
					return fmt.Errorf(manifestLoadFailedTemplate, loadError)
				}
			}
		}
	}
	orchestrator.logger.Info(
		transportSelectedLogMessage,
		zap.String(logFieldTransportConstant, string(report.Transport)),
		zap.String(logFieldProbeTargetConstant, report.ProbeTarget),
		zap.Int(logFieldRewrittenURLsConstant, report.RewrittenURLs),
	)

	records, initializeError := orchestrator.dependencies.Registry.Initialize(executionContext, declared, report.RewrittenURLs > 0)
	if initializeError != nil {
		return initializeError
	}
	report.Records = records
	return nil
}

func (orchestrator *Orchestrator) synchronizeSubmodules(executionContext context.Context, report *Report) error {
	orchestrator.reporter.Section(synchronizationSectionTitle)
	report.Outcomes = orchestrator.dependencies.Synchronizer.SynchronizeAll(executionContext, report.Records)
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	for _, outcome := range report.Outcomes {
		if outcome.Succeeded() {
			orchestrator.reporter.Success(submoduleSynchronizedReport, outcome.Record.Path, outcome.Resolution.Branch)
			continue
		}
		orchestrator.reporter.Failure(submoduleFailedReportTemplate, outcome.Record.Path, outcome.Err)
	}
	if failed := len(report.FailedOutcomes()); failed > 0 {
		orchestrator.reporter.Warning(submoduleFailureSummaryTemplate, failed, len(report.Outcomes))
	}
	return nil
}

func (orchestrator *Orchestrator) generateBuild(executionContext context.Context, report *Report) error {
	orchestrator.reporter.Section(buildSectionTitle)
	selectedIDE, selectionError := orchestrator.dependencies.Workspace.SelectIDE()
	if selectionError != nil {
		return fmt.Errorf(ideSelectionFailedTemplate, selectionError)
	}
	report.IDE = strings.TrimSpace(selectedIDE)
	report.Action = ide.ActionFor(report.IDE)

	if ide.IsVSCode(report.IDE) {
		buildConfig, configError := orchestrator.dependencies.Workspace.SelectBuildConfig()
		if configError != nil {
			return fmt.Errorf(buildConfigSelectionFailedTemplate, configError)
		}
		if writeError := orchestrator.dependencies.Workspace.WriteIDEConfig(buildConfig); writeError != nil {
			return fmt.Errorf(ideConfigurationFailedTemplate, writeError)
		}
		report.BuildConfig = buildConfig
	}

	orchestrator.reporter.Info(generatorSelectionReportTemplate, report.IDE, report.Action)
	exitCode, generateError := orchestrator.dependencies.Builder.Generate(executionContext, report.Action)
	if generateError != nil {
		return generateError
	}
	report.GeneratorExitCode = exitCode
	if exitCode != 0 {
		orchestrator.reporter.Failure(buildFailedReportTemplate, exitCode)
		return nil
	}
	orchestrator.reporter.Success(buildSucceededReportMessage)
	return nil
}

type silentReporter struct{}

func (silentReporter) Section(string) {}

func (silentReporter) Info(string, ...any) {}

func (silentReporter) Success(string, ...any) {}

func (silentReporter) Warning(string, ...any) {}

func (silentReporter) Failure(string, ...any) {}
