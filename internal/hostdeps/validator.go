package hostdeps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/execshell"
)

const (
	packageQueryStatusFlagConstant    = "-s"
	aptCommandConstant                = "apt"
	aptUpdateSubcommandConstant       = "update"
	aptInstallSubcommandConstant      = "install"
	aptAssumeYesFlagConstant          = "-y"
	installPromptTemplate             = "Install %d missing package(s)? [Y/n]: "
	packageListSeparatorConstant      = ", "
	commandExecutorMissingMessage     = "command executor not configured"
	installationDeclinedMessage       = "package installation declined"
	confirmationFailedTemplate        = "unable to confirm package installation: %w"
	packageQueryFailedTemplate        = "unable to query package %s: %w"
	packageIndexUpdateFailedTemplate  = "failed to update package lists: %w"
	packageInstallationFailedTemplate = "failed to install packages %s: %w"
	missingPackagesLogMessage         = "missing host packages"
	hostPackagesReadyLogMessage       = "host packages installed"
	logFieldPackagesConstant          = "packages"
	missingPackagesReportTemplate     = "Missing packages: %s"
	updatingPackageListsMessage       = "Updating package lists..."
	installingPackagesReportTemplate  = "Installing packages: %s"
	installationCompletedMessage      = "Package installation completed"
	allDependenciesInstalledMessage   = "All required dependencies are installed"
	installationDeclinedReportMessage = "Package installation aborted by user"
)

// ErrCommandExecutorNotConfigured indicates the executor dependency was missing.
var ErrCommandExecutorNotConfigured = errors.New(commandExecutorMissingMessage)

// ErrInstallationDeclined indicates the user refused to install missing packages.
var ErrInstallationDeclined = errors.New(installationDeclinedMessage)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(prompt string, defaultAnswer bool) (bool, error)
}

// StatusReporter receives progress lines meant for the terminal.
type StatusReporter interface {
	Info(format string, arguments ...any)
	Success(format string, arguments ...any)
	Warning(format string, arguments ...any)
	Failure(format string, arguments ...any)
	Items(items []string)
}

// Dependencies enumerates the collaborators of a Validator.
type Dependencies struct {
	Executor  CommandExecutor
	Confirmer Confirmer
	Reporter  StatusReporter
	Logger    *zap.Logger
}

// Options configures a Validator.
type Options struct {
	Packages []string
	// AssumeYes installs missing packages without asking.
	AssumeYes bool
}

// Validator checks and installs host packages.
type Validator struct {
	executor  CommandExecutor
	confirmer Confirmer
	reporter  StatusReporter
	logger    *zap.Logger
	packages  []string
	assumeYes bool
}

// NewValidator constructs a Validator.
func NewValidator(dependencies Dependencies, options Options) (*Validator, error) {
	if dependencies.Executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = silentReporter{}
	}

	var packages []string
	for _, packageName := range options.Packages {
		if trimmed := strings.TrimSpace(packageName); len(trimmed) > 0 {
			packages = append(packages, trimmed)
		}
	}

	return &Validator{
		executor:  dependencies.Executor,
		confirmer: dependencies.Confirmer,
		reporter:  reporter,
		logger:    logger,
		packages:  packages,
		assumeYes: options.AssumeYes || dependencies.Confirmer == nil,
	}, nil
}

// Validate installs whatever configured package is missing. Declining the
// installation or a failing apt run is an error.
func (validator *Validator) Validate(executionContext context.Context) error {
	missingPackages, queryError := validator.MissingPackages(executionContext)
	if queryError != nil {
		return queryError
	}
	if len(missingPackages) == 0 {
		validator.reporter.Success(allDependenciesInstalledMessage)
		return nil
	}

	validator.logger.Info(missingPackagesLogMessage, zap.Strings(logFieldPackagesConstant, missingPackages))
	validator.reporter.Warning(missingPackagesReportTemplate, strings.Join(missingPackages, packageListSeparatorConstant))
	validator.reporter.Items(missingPackages)

	if !validator.assumeYes {
		confirmed, confirmError := validator.confirmer.Confirm(fmt.Sprintf(installPromptTemplate, len(missingPackages)), true)
		if confirmError != nil {
			return fmt.Errorf(confirmationFailedTemplate, confirmError)
		}
		if !confirmed {
			validator.reporter.Failure(installationDeclinedReportMessage)
			return ErrInstallationDeclined
		}
	}

	validator.reporter.Info(updatingPackageListsMessage)
	if _, updateError := validator.executor.Execute(executionContext, superUserCommand(aptCommandConstant, aptUpdateSubcommandConstant)); updateError != nil {
		return fmt.Errorf(packageIndexUpdateFailedTemplate, updateError)
	}

	joinedPackages := strings.Join(missingPackages, packageListSeparatorConstant)
	validator.reporter.Info(installingPackagesReportTemplate, joinedPackages)
	installArguments := append([]string{aptCommandConstant, aptInstallSubcommandConstant, aptAssumeYesFlagConstant}, missingPackages...)
	if _, installError := validator.executor.Execute(executionContext, superUserCommand(installArguments...)); installError != nil {
		return fmt.Errorf(packageInstallationFailedTemplate, joinedPackages, installError)
	}

	validator.logger.Info(hostPackagesReadyLogMessage, zap.Strings(logFieldPackagesConstant, missingPackages))
	validator.reporter.Success(installationCompletedMessage)
	return nil
}

// MissingPackages queries dpkg for every configured package and returns those
// that are not installed, in configuration order.
func (validator *Validator) MissingPackages(executionContext context.Context) ([]string, error) {
	var missingPackages []string
	for _, packageName := range validator.packages {
		_, queryError := validator.executor.Execute(executionContext, execshell.ShellCommand{
			Name:    execshell.CommandPackageQuery,
			Details: execshell.CommandDetails{Arguments: []string{packageQueryStatusFlagConstant, packageName}},
		})
		if queryError == nil {
			continue
		}
		var failure execshell.CommandFailedError
		if !errors.As(queryError, &failure) {
			return nil, fmt.Errorf(packageQueryFailedTemplate, packageName, queryError)
		}
		missingPackages = append(missingPackages, packageName)
	}
	return missingPackages, nil
}

func superUserCommand(arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandSuperUser,
		Details: execshell.CommandDetails{Arguments: arguments},
	}
}

type silentReporter struct{}

func (silentReporter) Info(string, ...any) {}

func (silentReporter) Success(string, ...any) {}

func (silentReporter) Warning(string, ...any) {}

func (silentReporter) Failure(string, ...any) {}

func (silentReporter) Items([]string) {}
