package bootstrap

import (
	"strings"
	"time"

	"github.com/temirov/wsboot/internal/generator"
	"github.com/temirov/wsboot/internal/ide"
	"github.com/temirov/wsboot/internal/manifest"
	"github.com/temirov/wsboot/internal/reachability"
	"github.com/temirov/wsboot/internal/submodules"
)

// Configuration aggregates the settings of the bootstrap command.
type Configuration struct {
	CI           bool                       `mapstructure:"ci"`
	Workspace    string                     `mapstructure:"workspace"`
	Manifest     string                     `mapstructure:"manifest"`
	Report       string                     `mapstructure:"report"`
	SSHProbe     SSHProbeConfiguration      `mapstructure:"ssh_probe"`
	Connectivity ConnectivityConfiguration  `mapstructure:"connectivity"`
	Submodules   []submodules.BranchRequest `mapstructure:"submodules"`
	Generator    GeneratorConfiguration     `mapstructure:"generator"`
	Host         HostConfiguration          `mapstructure:"host"`
	IDE          IDEConfiguration           `mapstructure:"ide"`
}

// SSHProbeConfiguration bounds the SSH handshake probe.
type SSHProbeConfiguration struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ConnectivityConfiguration describes the internet connectivity gate.
type ConnectivityConfiguration struct {
	Address string        `mapstructure:"address"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeneratorConfiguration pins the build generator release.
type GeneratorConfiguration struct {
	Directory  string `mapstructure:"directory"`
	Binary     string `mapstructure:"binary"`
	Version    string `mapstructure:"version"`
	ArchiveURL string `mapstructure:"archive_url"`
	LicenseURL string `mapstructure:"license_url"`
}

// HostConfiguration lists the Debian packages the build needs.
type HostConfiguration struct {
	Packages []string `mapstructure:"packages"`
}

// IDEConfiguration holds the selections used when prompting is disabled.
type IDEConfiguration struct {
	Default     string `mapstructure:"default"`
	BuildConfig string `mapstructure:"build_config"`
}

// DefaultConfiguration mirrors the embedded default configuration file.
func DefaultConfiguration() Configuration {
	return Configuration{
		Manifest: manifest.DefaultFileName,
		SSHProbe: SSHProbeConfiguration{Timeout: reachability.DefaultProbeTimeout},
		Connectivity: ConnectivityConfiguration{
			Address: reachability.DefaultConnectivityAddress,
			Timeout: reachability.DefaultConnectivityTimeout,
		},
		Submodules: []submodules.BranchRequest{
			{Path: "vendor/glfw", Branch: "main"},
			{Path: "vendor/imgui", Branch: "docking"},
			{Path: "vendor/glm", Branch: "master"},
		},
		Generator: GeneratorConfiguration{
			Directory:  generator.DefaultDirectory,
			Binary:     generator.DefaultBinary,
			Version:    generator.DefaultVersion,
			ArchiveURL: generator.DefaultArchiveURLTemplate,
			LicenseURL: generator.DefaultLicenseURL,
		},
		Host: HostConfiguration{Packages: []string{
			"build-essential",
			"cmake",
			"libgl1-mesa-dev",
			"libglfw3-dev",
			"libglew-dev",
			"libassimp-dev",
			"libxinerama-dev",
			"libxcursor-dev",
			"libxi-dev",
			"xorg-dev",
			"pkg-config",
			"qtbase5-dev",
			"qttools5-dev",
			"qttools5-dev-tools",
			"git",
		}},
		IDE: IDEConfiguration{Default: ide.Makefile, BuildConfig: ide.BuildConfigDebug},
	}
}

// Sanitize trims configured values and fills blanks with the defaults.
// Durations that are not positive fall back to the defaults as well.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Workspace = strings.TrimSpace(configuration.Workspace)
	sanitized.Report = strings.TrimSpace(configuration.Report)
	sanitized.Manifest = fallbackString(configuration.Manifest, defaults.Manifest)
	if sanitized.SSHProbe.Timeout <= 0 {
		sanitized.SSHProbe.Timeout = defaults.SSHProbe.Timeout
	}
	sanitized.Connectivity.Address = fallbackString(configuration.Connectivity.Address, defaults.Connectivity.Address)
	if sanitized.Connectivity.Timeout <= 0 {
		sanitized.Connectivity.Timeout = defaults.Connectivity.Timeout
	}

	sanitized.Submodules = nil
	for _, request := range configuration.Submodules {
		trimmedPath := strings.TrimSpace(request.Path)
		trimmedBranch := strings.TrimSpace(request.Branch)
		if len(trimmedPath) == 0 || len(trimmedBranch) == 0 {
			continue
		}
		sanitized.Submodules = append(sanitized.Submodules, submodules.BranchRequest{Path: trimmedPath, Branch: trimmedBranch})
	}

	sanitized.Generator.Directory = fallbackString(configuration.Generator.Directory, defaults.Generator.Directory)
	sanitized.Generator.Binary = fallbackString(configuration.Generator.Binary, defaults.Generator.Binary)
	sanitized.Generator.Version = fallbackString(configuration.Generator.Version, defaults.Generator.Version)
	sanitized.Generator.ArchiveURL = fallbackString(configuration.Generator.ArchiveURL, defaults.Generator.ArchiveURL)
	sanitized.Generator.LicenseURL = fallbackString(configuration.Generator.LicenseURL, defaults.Generator.LicenseURL)

	sanitized.Host.Packages = nil
	for _, packageName := range configuration.Host.Packages {
		if trimmed := strings.TrimSpace(packageName); len(trimmed) > 0 {
			sanitized.Host.Packages = append(sanitized.Host.Packages, trimmed)
		}
	}

	sanitized.IDE.Default = fallbackString(configuration.IDE.Default, defaults.IDE.Default)
	sanitized.IDE.BuildConfig = fallbackString(configuration.IDE.BuildConfig, defaults.IDE.BuildConfig)
	return sanitized
}

func fallbackString(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); len(trimmed) > 0 {
		return trimmed
	}
	return fallback
}
