package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wsboot/internal/manifest"
	"github.com/temirov/wsboot/internal/submodules"
)

const (
	reportDirectoryPermissions   = os.FileMode(0o755)
	reportFilePermissions        = os.FileMode(0o644)
	reportEncodeFailedTemplate   = "unable to encode bootstrap report: %w"
	reportDirectoryFailedPattern = "unable to create report directory %s: %w"
	reportWriteFailedTemplate    = "unable to write bootstrap report %s: %w"
)

// Report describes what a run did. It is filled incrementally, so a failed
// run still reports everything up to the state it could not reach.
type Report struct {
	Workspace         string
	CIMode            bool
	States            []State
	GeneratorPath     string
	Transport         manifest.TransportMode
	ProbeTarget       string
	RewrittenURLs     int
	Records           []submodules.Record
	Outcomes          []submodules.Outcome
	IDE               string
	Action            string
	BuildConfig       string
	GeneratorExitCode int
}

// Reached reports whether the run entered state.
func (report Report) Reached(state State) bool {
	for _, visited := range report.States {
		if visited == state {
			return true
		}
	}
	return false
}

// FailedOutcomes returns the submodules that did not reach their branch.
func (report Report) FailedOutcomes() []submodules.Outcome {
	var failed []submodules.Outcome
	for _, outcome := range report.Outcomes {
		if !outcome.Succeeded() {
			failed = append(failed, outcome)
		}
	}
	return failed
}

type reportDocument struct {
	Workspace         string                 `yaml:"workspace"`
	CIMode            bool                   `yaml:"ci_mode"`
	States            []State                `yaml:"states"`
	Completed         bool                   `yaml:"completed"`
	GeneratorPath     string                 `yaml:"generator_path,omitempty"`
	Transport         manifest.TransportMode `yaml:"transport,omitempty"`
	ProbeTarget       string                 `yaml:"probe_target,omitempty"`
	RewrittenURLs     int                    `yaml:"rewritten_urls"`
	Submodules        []submoduleDocument    `yaml:"submodules,omitempty"`
	IDE               string                 `yaml:"ide,omitempty"`
	Action            string                 `yaml:"action,omitempty"`
	BuildConfig       string                 `yaml:"build_config,omitempty"`
	GeneratorExitCode int                    `yaml:"generator_exit_code"`
	Failure           string                 `yaml:"failure,omitempty"`
}

type submoduleDocument struct {
	submodules.Record `yaml:",inline"`
	Resolution        *submodules.BranchResolution `yaml:"resolution,omitempty"`
	Failure           string                       `yaml:"failure,omitempty"`
}

// ReportWriter stores run reports as YAML.
type ReportWriter struct {
	fileSystem billy.Filesystem
}

// NewReportWriter constructs a ReportWriter over fileSystem.
func NewReportWriter(fileSystem billy.Filesystem) *ReportWriter {
	return &ReportWriter{fileSystem: fileSystem}
}

// Write encodes report and the optional run failure to reportPath, creating parent directories.
func (writer *ReportWriter) Write(reportPath string, report Report, runError error) error {
	encoded, encodeError := yaml.Marshal(newReportDocument(report, runError))
	if encodeError != nil {
		return fmt.Errorf(reportEncodeFailedTemplate, encodeError)
	}

	if directory := filepath.Dir(reportPath); directory != "." {
		if mkdirError := writer.fileSystem.MkdirAll(directory, reportDirectoryPermissions); mkdirError != nil {
			return fmt.Errorf(reportDirectoryFailedPattern, directory, mkdirError)
		}
	}
	if writeError := util.WriteFile(writer.fileSystem, reportPath, encoded, reportFilePermissions); writeError != nil {
		return fmt.Errorf(reportWriteFailedTemplate, reportPath, writeError)
	}
	return nil
}

func newReportDocument(report Report, runError error) reportDocument {
	document := reportDocument{
		Workspace:         report.Workspace,
		CIMode:            report.CIMode,
		States:            report.States,
		Completed:         report.Reached(StateDone),
		GeneratorPath:     report.GeneratorPath,
		Transport:         report.Transport,
		ProbeTarget:       report.ProbeTarget,
		RewrittenURLs:     report.RewrittenURLs,
		IDE:               report.IDE,
		Action:            report.Action,
		BuildConfig:       report.BuildConfig,
		GeneratorExitCode: report.GeneratorExitCode,
	}
	if runError != nil {
		document.Failure = runError.Error()
	}

	if len(report.Outcomes) == 0 {
		for _, record := range report.Records {
			document.Submodules = append(document.Submodules, submoduleDocument{Record: record})
		}
		return document
	}
	for _, outcome := range report.Outcomes {
		entry := submoduleDocument{Record: outcome.Record}
		if outcome.Succeeded() {
			resolution := outcome.Resolution
			entry.Resolution = &resolution
		} else {
			entry.Failure = outcome.Err.Error()
		}
		document.Submodules = append(document.Submodules, entry)
	}
	return document
}
