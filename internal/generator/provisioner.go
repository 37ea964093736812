package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

const (
	// DefaultDirectory is where the generator lives relative to the workspace.
	DefaultDirectory = "vendor/premake"
	// DefaultBinary is the generator executable name.
	DefaultBinary = "premake5"
	// DefaultVersion is the pinned generator release.
	DefaultVersion = "5.0.0-beta4"
	// DefaultArchiveURLTemplate receives the version as its first argument.
	DefaultArchiveURLTemplate = "https://github.com/premake/premake-core/releases/download/v%[1]s/premake-%[1]s-linux.tar.gz"
	// DefaultLicenseURL points at the generator license.
	DefaultLicenseURL = "https://raw.githubusercontent.com/premake/premake-core/master/LICENSE.txt"

	licenseFileNameConstant           = "LICENSE.txt"
	executableModeConstant            = fs.FileMode(0o755)
	fileSystemMissingMessage          = "workspace filesystem not configured"
	downloaderMissingMessage          = "downloader not configured"
	downloadDeclinedMessage           = "generator download declined"
	binaryMissingAfterInstallTemplate = "archive %s did not contain %s"
	downloadPromptTemplate            = "Would you like to download %s %s? [Y/N]: "
	confirmationFailedTemplate        = "unable to confirm generator download: %w"
	statFailedTemplate                = "unable to inspect %s: %w"
	prepareDirectoryFailedTemplate    = "unable to create %s: %w"
	downloadFailedTemplate            = "unable to download %s: %w"
	removeArchiveFailedTemplate       = "unable to remove archive %s: %w"
	permissionsFailedTemplate         = "unable to make %s executable: %w"
	missingBinaryReportTemplate       = "You don't have %s downloaded!"
	downloadingReportTemplate         = "Downloading %s to %s"
	extractingReportTemplate          = "Extracting %s"
	installedReportTemplate           = "%s %s has been downloaded to '%s'"
	locatedReportTemplate             = "Located %s"
	generatorInstalledLogMessage      = "build generator installed"
	logFieldBinaryConstant            = "binary"
	logFieldVersionConstant           = "version"
	logFieldExtractedFilesConstant    = "extracted_files"
)

// ErrFileSystemNotConfigured indicates the workspace filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessage)

// ErrDownloaderNotConfigured indicates the downloader dependency was missing.
var ErrDownloaderNotConfigured = errors.New(downloaderMissingMessage)

// ErrDownloadDeclined indicates the user refused to download the generator.
var ErrDownloadDeclined = errors.New(downloadDeclinedMessage)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(prompt string, defaultAnswer bool) (bool, error)
}

// StatusReporter receives progress lines meant for the terminal.
type StatusReporter interface {
	Info(format string, arguments ...any)
	Success(format string, arguments ...any)
	Warning(format string, arguments ...any)
}

// ProvisionerDependencies enumerates the collaborators of a Provisioner.
type ProvisionerDependencies struct {
	FileSystem billy.Filesystem
	Downloader Downloader
	Confirmer  Confirmer
	Reporter   StatusReporter
	Logger     *zap.Logger
}

// ProvisionerOptions pins the generator release.
type ProvisionerOptions struct {
	Directory          string
	Binary             string
	Version            string
	ArchiveURLTemplate string
	LicenseURL         string
	// AssumeYes downloads without asking.
	AssumeYes bool
}

// Provisioner makes sure the generator binary exists in the workspace.
type Provisioner struct {
	fileSystem billy.Filesystem
	downloader Downloader
	confirmer  Confirmer
	reporter   StatusReporter
	logger     *zap.Logger
	options    ProvisionerOptions
}

// NewProvisioner constructs a Provisioner, filling unset options with the pinned defaults.
func NewProvisioner(dependencies ProvisionerDependencies, options ProvisionerOptions) (*Provisioner, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Downloader == nil {
		return nil, ErrDownloaderNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = silentReporter{}
	}

	options.Directory = defaultString(options.Directory, DefaultDirectory)
	options.Binary = defaultString(options.Binary, DefaultBinary)
	options.Version = defaultString(options.Version, DefaultVersion)
	options.ArchiveURLTemplate = defaultString(options.ArchiveURLTemplate, DefaultArchiveURLTemplate)
	options.LicenseURL = defaultString(options.LicenseURL, DefaultLicenseURL)
	if dependencies.Confirmer == nil {
		options.AssumeYes = true
	}

	return &Provisioner{
		fileSystem: dependencies.FileSystem,
		downloader: dependencies.Downloader,
		confirmer:  dependencies.Confirmer,
		reporter:   reporter,
		logger:     logger,
		options:    options,
	}, nil
}

// BinaryPath is the generator location relative to the workspace.
func (provisioner *Provisioner) BinaryPath() string {
	return path.Join(provisioner.options.Directory, provisioner.options.Binary)
}

// Validate returns the generator location relative to the workspace,
// downloading and unpacking the pinned release first when it is missing.
func (provisioner *Provisioner) Validate(executionContext context.Context) (string, error) {
	binaryPath := provisioner.BinaryPath()
	present, statError := provisioner.exists(binaryPath)
	if statError != nil {
		return "", statError
	}
	if !present {
		if installError := provisioner.install(executionContext, binaryPath); installError != nil {
			return "", installError
		}
	}

	if changer, supportsChange := provisioner.fileSystem.(billy.Change); supportsChange {
		if chmodError := changer.Chmod(binaryPath, executableModeConstant); chmodError != nil {
			return "", fmt.Errorf(permissionsFailedTemplate, binaryPath, chmodError)
		}
	}
	provisioner.reporter.Success(locatedReportTemplate, provisioner.options.Binary)
	return binaryPath, nil
}

func (provisioner *Provisioner) install(executionContext context.Context, binaryPath string) error {
	provisioner.reporter.Warning(missingBinaryReportTemplate, provisioner.options.Binary)
	if !provisioner.options.AssumeYes {
		confirmed, confirmError := provisioner.confirmer.Confirm(fmt.Sprintf(downloadPromptTemplate, provisioner.options.Binary, provisioner.options.Version), false)
		if confirmError != nil {
			return fmt.Errorf(confirmationFailedTemplate, confirmError)
		}
		if !confirmed {
			return ErrDownloadDeclined
		}
	}

	directory := provisioner.options.Directory
	if mkdirError := provisioner.fileSystem.MkdirAll(directory, executableModeConstant); mkdirError != nil {
		return fmt.Errorf(prepareDirectoryFailedTemplate, directory, mkdirError)
	}

	archiveURL := fmt.Sprintf(provisioner.options.ArchiveURLTemplate, provisioner.options.Version)
	archivePath := path.Join(directory, path.Base(archiveURL))
	provisioner.reporter.Info(downloadingReportTemplate, archiveURL, archivePath)
	if downloadError := provisioner.download(executionContext, archiveURL, archivePath); downloadError != nil {
		return downloadError
	}

	provisioner.reporter.Info(extractingReportTemplate, archivePath)
	extracted, extractError := ExtractArchive(provisioner.fileSystem, archivePath, directory)
	if extractError != nil {
		_ = provisioner.fileSystem.Remove(archivePath)
		return extractError
	}
	if removeError := provisioner.fileSystem.Remove(archivePath); removeError != nil {
		return fmt.Errorf(removeArchiveFailedTemplate, archivePath, removeError)
	}

	present, statError := provisioner.exists(binaryPath)
	if statError != nil {
		return statError
	}
	if !present {
		return fmt.Errorf(binaryMissingAfterInstallTemplate, path.Base(archiveURL), provisioner.options.Binary)
	}
	provisioner.reporter.Info(installedReportTemplate, provisioner.options.Binary, provisioner.options.Version, directory)

	licensePath := path.Join(directory, licenseFileNameConstant)
	provisioner.reporter.Info(downloadingReportTemplate, provisioner.options.LicenseURL, licensePath)
	if licenseError := provisioner.download(executionContext, provisioner.options.LicenseURL, licensePath); licenseError != nil {
		return licenseError
	}

	provisioner.logger.Info(generatorInstalledLogMessage,
		zap.String(logFieldBinaryConstant, binaryPath),
		zap.String(logFieldVersionConstant, provisioner.options.Version),
		zap.Strings(logFieldExtractedFilesConstant, extracted),
	)
	return nil
}

func (provisioner *Provisioner) download(executionContext context.Context, url string, destination string) error {
	body, fetchError := provisioner.downloader.Fetch(executionContext, url)
	if fetchError != nil {
		return fmt.Errorf(downloadFailedTemplate, url, fetchError)
	}
	defer body.Close()

	outputFile, createError := provisioner.fileSystem.Create(destination)
	if createError != nil {
		return fmt.Errorf(downloadFailedTemplate, url, createError)
	}
	_, copyError := io.Copy(outputFile, body)
	closeError := outputFile.Close()
	if copyError == nil {
		copyError = closeError
	}
	if copyError != nil {
		_ = provisioner.fileSystem.Remove(destination)
		return fmt.Errorf(downloadFailedTemplate, url, copyError)
	}
	return nil
}

func (provisioner *Provisioner) exists(filePath string) (bool, error) {
	_, statError := provisioner.fileSystem.Stat(filePath)
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(statFailedTemplate, filePath, statError)
}

func defaultString(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); len(trimmed) > 0 {
		return trimmed
	}
	return fallback
}

type silentReporter struct{}

func (silentReporter) Info(string, ...any) {}

func (silentReporter) Success(string, ...any) {}

func (silentReporter) Warning(string, ...any) {}
