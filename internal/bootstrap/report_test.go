package bootstrap_test

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/wsboot/internal/bootstrap"
	"github.com/temirov/wsboot/internal/manifest"
	"github.com/temirov/wsboot/internal/submodules"
)

type decodedReport struct {
	Workspace         string   `yaml:"workspace"`
	States            []string `yaml:"states"`
	Completed         bool     `yaml:"completed"`
	Transport         string   `yaml:"transport"`
	RewrittenURLs     int      `yaml:"rewritten_urls"`
	GeneratorExitCode int      `yaml:"generator_exit_code"`
	Failure           string   `yaml:"failure"`
	Submodules        []struct {
		Path         string `yaml:"path"`
		TargetBranch string `yaml:"target_branch"`
		Present      bool   `yaml:"present"`
		Resolution   *struct {
			Branch string `yaml:"branch"`
			Source string `yaml:"source"`
		} `yaml:"resolution"`
		Failure string `yaml:"failure"`
	} `yaml:"submodules"`
}

func readReport(t *testing.T, contents []byte) decodedReport {
	t.Helper()
	var decoded decodedReport
	require.NoError(t, yaml.Unmarshal(contents, &decoded))
	return decoded
}

func TestReportWriterWritesOutcomes(t *testing.T) {
	fileSystem := memfs.New()
	report := bootstrap.Report{
		Workspace:     "/work/engine",
		States:        bootstrap.StateSequence(),
		Transport:     manifest.TransportHTTPS,
		RewrittenURLs: 2,
		Outcomes: []submodules.Outcome{
			{
				Record:     submodules.Record{Path: "vendor/glfw", RemoteName: "origin", TargetBranch: "main", Present: true},
				Resolution: submodules.BranchResolution{Branch: "develop", Source: submodules.ResolutionRemoteDefault},
			},
			{
				Record: submodules.Record{Path: "vendor/imgui", RemoteName: "origin", TargetBranch: "docking", Present: true},
				Err:    submodules.SynchronizationError{Path: "vendor/imgui", Step: submodules.StepPull, Err: errors.New("git exited with code 1")},
			},
		},
		GeneratorExitCode: 2,
	}

	require.NoError(t, bootstrap.NewReportWriter(fileSystem).Write("/reports/bootstrap.yaml", report, nil))

	contents, readError := util.ReadFile(fileSystem, "/reports/bootstrap.yaml")
	require.NoError(t, readError)
	decoded := readReport(t, contents)

	require.Equal(t, "/work/engine", decoded.Workspace)
	require.True(t, decoded.Completed)
	require.Equal(t, "https", decoded.Transport)
	require.Equal(t, 2, decoded.RewrittenURLs)
	require.Equal(t, 2, decoded.GeneratorExitCode)
	require.Empty(t, decoded.Failure)
	require.Len(t, decoded.Submodules, 2)
	require.Equal(t, "vendor/glfw", decoded.Submodules[0].Path)
	require.NotNil(t, decoded.Submodules[0].Resolution)
	require.Equal(t, "develop", decoded.Submodules[0].Resolution.Branch)
	require.Equal(t, "remote-default", decoded.Submodules[0].Resolution.Source)
	require.Nil(t, decoded.Submodules[1].Resolution)
	require.Equal(t, "submodule vendor/imgui: pull failed: git exited with code 1", decoded.Submodules[1].Failure)
}

func TestReportWriterRecordsAbortedRun(t *testing.T) {
	fileSystem := memfs.New()
	report := bootstrap.Report{
		States:  []bootstrap.State{bootstrap.StateStart, bootstrap.StateEnvironmentReady, bootstrap.StateGeneratorReady},
		Records: []submodules.Record{{Path: "vendor/glm", RemoteName: "origin", TargetBranch: "master"}},
	}
	runError := bootstrap.StageError{State: bootstrap.StateRegistryReady, Err: errors.New("failed to initialize submodules")}

	require.NoError(t, bootstrap.NewReportWriter(fileSystem).Write("bootstrap.yaml", report, runError))

	contents, readError := util.ReadFile(fileSystem, "bootstrap.yaml")
	require.NoError(t, readError)
	decoded := readReport(t, contents)
	require.False(t, decoded.Completed)
	require.Equal(t, []string{"START", "ENV_OK", "GENERATOR_OK"}, decoded.States)
	require.Equal(t, "bootstrap stopped before REGISTRY_READY: failed to initialize submodules", decoded.Failure)
	require.Len(t, decoded.Submodules, 1)
	require.Equal(t, "master", decoded.Submodules[0].TargetBranch)
	require.False(t, decoded.Submodules[0].Present)
}
