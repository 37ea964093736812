package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/execshell"
	"github.com/temirov/wsboot/internal/generator"
	"github.com/temirov/wsboot/internal/hostdeps"
	"github.com/temirov/wsboot/internal/ide"
	"github.com/temirov/wsboot/internal/manifest"
	"github.com/temirov/wsboot/internal/reachability"
	"github.com/temirov/wsboot/internal/submodules"
	"github.com/temirov/wsboot/internal/ui"
	"github.com/temirov/wsboot/internal/utils"
	flagutils "github.com/temirov/wsboot/internal/utils/flags"
	pathutils "github.com/temirov/wsboot/internal/utils/path"
)

const (
	commandUseConstant                 = "bootstrap"
	commandShortDescriptionConstant    = "Prepare the workspace for building"
	commandLongDescriptionConstant     = "bootstrap installs missing host packages and the build generator, synchronizes every submodule onto its branch (switching SSH remotes to HTTPS when SSH is unusable) and generates the build files."
	unexpectedArgumentsMessageConstant = "bootstrap does not accept positional arguments"
	ciFlagNameConstant                 = "ci"
	ciFlagUsageConstant                = "Run without prompts, using configured defaults"
	workspaceFlagNameConstant          = "workspace"
	workspaceFlagUsageConstant         = "Workspace root containing the submodule manifest"
	reportFlagNameConstant             = "report"
	reportFlagUsageConstant            = "Write a YAML run report to this path"
	workspaceResolveFailedTemplate     = "unable to resolve workspace: %w"
	reportResolveFailedTemplate        = "unable to resolve report path: %w"
	collaboratorBuildFailedTemplate    = "unable to prepare bootstrap: %w"
	reportWrittenLogMessage            = "bootstrap report written"
	reportWriteFailedLogMessage        = "bootstrap report could not be written"
	logFieldReportPathConstant         = "report_path"
	hintsTitleConstant                 = "Helpful hints"
	failedSubmodulesTitleConstant      = "Submodules needing attention"
	rootDirectoryConstant              = string(filepath.Separator)
	generatorHelpTemplateConstant      = "%s --help OR visit[https://premake.github.io/docs/Using-Premake/]"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// ConfigurationProvider returns the current bootstrap configuration.
type ConfigurationProvider func() Configuration

// FileSystemFactory opens the filesystem rooted at a workspace.
type FileSystemFactory func(workspace string) billy.Filesystem

// CommandBuilder assembles the bootstrap command. Every field is optional;
// unset collaborators fall back to their operating system implementations.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	ConfigurationProvider        ConfigurationProvider
	CommandRunner                execshell.CommandRunner
	Downloader                   generator.Downloader
	Dialer                       reachability.ContextDialer
	LookPath                     ide.LookPathFunc
	FileSystemFactory            FileSystemFactory
	ReportFileSystem             billy.Filesystem
	WorkingDirectory             pathutils.WorkingDirectoryProvider
	HomeExpander                 *pathutils.HomeExpander
	ColorEnabled                 func() bool
}

// Build constructs the bootstrap command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	var ciMode bool
	flagutils.AddToggleFlag(command.Flags(), &ciMode, ciFlagNameConstant, "", false, ciFlagUsageConstant)
	command.Flags().String(workspaceFlagNameConstant, "", workspaceFlagUsageConstant)
	command.Flags().String(reportFlagNameConstant, "", reportFlagUsageConstant)

	return command, nil
}

// runSettings are the values resolved from flags, configuration and the environment.
type runSettings struct {
	configuration Configuration
	ciMode        bool
	workspace     string
	reportPath    string
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsMessageConstant)
	}

	settings, settingsError := builder.resolveSettings(command)
	if settingsError != nil {
		return settingsError
	}

	logger := builder.resolveLogger()
	colorEnabled := builder.resolveColorEnabled()
	output := command.OutOrStdout()
	printer := ui.NewStatusPrinter(output, colorEnabled)

	orchestrator, buildError := builder.buildOrchestrator(command.InOrStdin(), output, printer, logger, settings, colorEnabled)
	if buildError != nil {
		return fmt.Errorf(collaboratorBuildFailedTemplate, buildError)
	}

	report, runError := orchestrator.Run(command.Context())
	builder.writeReport(logger, settings.reportPath, report, runError)
	if runError != nil {
		return runError
	}

	builder.printSummary(printer, report)
	return nil
}

func (builder *CommandBuilder) resolveSettings(command *cobra.Command) (runSettings, error) {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.Sanitize()

	environment, _ := utils.NewCommandContextAccessor().ExecutionEnvironment(command.Context())

	ciMode := configuration.CI || environment.ContinuousIntegration
	if command.Flags().Changed(ciFlagNameConstant) {
		flagValue, flagError := command.Flags().GetBool(ciFlagNameConstant)
		if flagError != nil {
			return runSettings{}, flagError
		}
		ciMode = flagValue
	}

	workspaceCandidate := configuration.Workspace
	if len(workspaceCandidate) == 0 {
		workspaceCandidate = environment.WorkspaceOverride
	}
	if flagValue, flagError := command.Flags().GetString(workspaceFlagNameConstant); flagError == nil && len(strings.TrimSpace(flagValue)) > 0 {
		workspaceCandidate = flagValue
	}
	workspace, workspaceError := builder.resolveHomeExpander().ResolvePath(workspaceCandidate, builder.WorkingDirectory)
	if workspaceError != nil {
		return runSettings{}, fmt.Errorf(workspaceResolveFailedTemplate, workspaceError)
	}

	reportCandidate := configuration.Report
	if flagValue, flagError := command.Flags().GetString(reportFlagNameConstant); flagError == nil && len(strings.TrimSpace(flagValue)) > 0 {
		reportCandidate = flagValue
	}
	reportPath := ""
	if len(strings.TrimSpace(reportCandidate)) > 0 {
		resolvedReportPath, reportError := builder.resolveHomeExpander().ResolvePath(reportCandidate, builder.WorkingDirectory)
		if reportError != nil {
			return runSettings{}, fmt.Errorf(reportResolveFailedTemplate, reportError)
		}
		reportPath = resolvedReportPath
	}

	return runSettings{configuration: configuration, ciMode: ciMode, workspace: workspace, reportPath: reportPath}, nil
}

// buildOrchestrator wires the collaborators of one run. In CI mode no prompter
// is handed out, so every collaborator falls back to its non-interactive default.
func (builder *CommandBuilder) buildOrchestrator(input io.Reader, output io.Writer, printer *ui.StatusPrinter, logger *zap.Logger, settings runSettings, colorEnabled bool) (*Orchestrator, error) {
	configuration := settings.configuration
	humanReadable := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()

	commandRunner := builder.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	executor, executorError := execshell.NewShellExecutorWithOptions(logger, commandRunner, humanReadable)
	if executorError != nil {
		return nil, executorError
	}
	if !humanReadable {
		executor.WithObserver(ui.NewCommandEchoObserver(output, colorEnabled))
	}

	workspaceFileSystem := builder.openWorkspace(settings.workspace)
	prompter := ui.NewPrompter(input, output)
	var confirmer hostdeps.Confirmer
	var chooser ide.Chooser
	if !settings.ciMode {
		confirmer = prompter
		chooser = prompter
	}

	environmentValidator, validatorError := hostdeps.NewValidator(
		hostdeps.Dependencies{Executor: executor, Confirmer: confirmer, Reporter: printer, Logger: logger},
		hostdeps.Options{Packages: configuration.Host.Packages, AssumeYes: settings.ciMode},
	)
	if validatorError != nil {
		return nil, validatorError
	}

	downloader := builder.Downloader
	if downloader == nil {
		downloader = generator.NewHTTPDownloader(nil)
	}
	provisioner, provisionerError := generator.NewProvisioner(
		generator.ProvisionerDependencies{FileSystem: workspaceFileSystem, Downloader: downloader, Confirmer: confirmer, Reporter: printer, Logger: logger},
		generator.ProvisionerOptions{
			Directory:          configuration.Generator.Directory,
			Binary:             configuration.Generator.Binary,
			Version:            configuration.Generator.Version,
			ArchiveURLTemplate: configuration.Generator.ArchiveURL,
			LicenseURL:         configuration.Generator.LicenseURL,
			AssumeYes:          settings.ciMode,
		},
	)
	if provisionerError != nil {
		return nil, provisionerError
	}

	registry, registryError := submodules.NewRegistry(executor, logger, settings.workspace, configuration.Submodules)
	if registryError != nil {
		return nil, registryError
	}
	synchronizer, synchronizerError := submodules.NewSynchronizer(executor, workspaceFileSystem, logger, settings.workspace)
	if synchronizerError != nil {
		return nil, synchronizerError
	}
	runner, runnerError := generator.NewRunner(executor, logger, settings.workspace, provisioner.BinaryPath())
	if runnerError != nil {
		return nil, runnerError
	}

	selector := ide.NewSelector(chooser, builder.LookPath, ide.Options{
		NonInteractive:     settings.ciMode,
		DefaultIDE:         configuration.IDE.Default,
		DefaultBuildConfig: configuration.IDE.BuildConfig,
	})

	orchestrator, orchestratorError := NewOrchestrator(Dependencies{
		Environment:  environmentValidator,
		Generator:    provisioner,
		Connectivity: reachability.NewConnectivityChecker(builder.Dialer, logger, configuration.Connectivity.Address, configuration.Connectivity.Timeout),
		Prober:       reachability.NewSSHProber(executor, logger, configuration.SSHProbe.Timeout),
		Manifest:     manifest.NewStore(workspaceFileSystem, configuration.Manifest),
		Registry:     registry,
		Synchronizer: synchronizer,
		Workspace:    workspaceConfigurator{selector: selector, fileSystem: workspaceFileSystem},
		Builder:      runner,
		Reporter:     printer,
		Logger:       logger,
	}, Options{CIMode: settings.ciMode, Workspace: settings.workspace})
	if orchestratorError != nil {
		return nil, orchestratorError
	}
	return orchestrator, nil
}

func (builder *CommandBuilder) writeReport(logger *zap.Logger, reportPath string, report Report, runError error) {
	if len(reportPath) == 0 {
		return
	}
	reportFileSystem := builder.ReportFileSystem
	if reportFileSystem == nil {
		reportFileSystem = osfs.New(rootDirectoryConstant)
	}
	if writeError := NewReportWriter(reportFileSystem).Write(reportPath, report, runError); writeError != nil {
		logger.Warn(reportWriteFailedLogMessage, zap.String(logFieldReportPathConstant, reportPath), zap.Error(writeError))
		return
	}
	logger.Info(reportWrittenLogMessage, zap.String(logFieldReportPathConstant, reportPath))
}

func (builder *CommandBuilder) printSummary(printer *ui.StatusPrinter, report Report) {
	if failed := report.FailedOutcomes(); len(failed) > 0 {
		paths := make([]string, 0, len(failed))
		for _, outcome := range failed {
			paths = append(paths, outcome.Record.Path)
		}
		printer.Section(failedSubmodulesTitleConstant)
		printer.Items(paths)
	}
	printer.Hints(hintsTitleConstant, closingHints(report))
}

func closingHints(report Report) []ui.Hint {
	generatorCommand := report.GeneratorPath
	hints := []ui.Hint{{Description: "apply changed premake scripts", Command: strings.TrimSpace(generatorCommand + " " + report.Action)}}
	if report.Action == ide.ActionGmake2 {
		hints = append(hints,
			ui.Hint{Description: "cleanup all generated files", Command: "make clean"},
			ui.Hint{Description: "compile application", Command: "make -j"},
		)
	}
	return append(hints, ui.Hint{Description: "for more help", Command: fmt.Sprintf(generatorHelpTemplateConstant, generatorCommand)})
}

func (builder *CommandBuilder) openWorkspace(workspace string) billy.Filesystem {
	if builder.FileSystemFactory != nil {
		return builder.FileSystemFactory(workspace)
	}
	return osfs.New(workspace)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		builder.HomeExpander = pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}

func (builder *CommandBuilder) resolveColorEnabled() bool {
	if builder.ColorEnabled != nil {
		return builder.ColorEnabled()
	}
	return !color.NoColor
}

// workspaceConfigurator joins IDE selection with the editor configuration writer.
type workspaceConfigurator struct {
	selector   *ide.Selector
	fileSystem billy.Filesystem
}

func (configurator workspaceConfigurator) SelectIDE() (string, error) {
	return configurator.selector.SelectIDE()
}

func (configurator workspaceConfigurator) SelectBuildConfig() (string, error) {
	return configurator.selector.SelectBuildConfig()
}

func (configurator workspaceConfigurator) WriteIDEConfig(buildConfig string) error {
	return ide.WriteVSCodeConfig(configurator.fileSystem, buildConfig)
}
