package bootstrap_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/wsboot/internal/bootstrap"
	"github.com/temirov/wsboot/internal/execshell"
	"github.com/temirov/wsboot/internal/submodules"
	"github.com/temirov/wsboot/internal/utils"
	pathutils "github.com/temirov/wsboot/internal/utils/path"
)

const (
	commandTestWorkspace = "/work/engine"
	twoEntryManifest     = "[submodule \"vendor/glfw\"]\n" +
		"\tpath = vendor/glfw\n" +
		"\turl = git@github.com:glfw/glfw.git\n" +
		"[submodule \"vendor/imgui\"]\n" +
		"\tpath = vendor/imgui\n" +
		"\turl = ssh://git@github.com/ocornut/imgui.git\n" +
		"\tbranch = docking\n"
)

// scriptedRunner answers commands by their "name arguments" line and
// creates the checkout metadata when a submodule is populated.
type scriptedRunner struct {
	fileSystem  billy.Filesystem
	results     map[string]execshell.ExecutionResult
	invocations []string
}

func newScriptedRunner(fileSystem billy.Filesystem) *scriptedRunner {
	return &scriptedRunner{fileSystem: fileSystem, results: map[string]execshell.ExecutionResult{}}
}

func (runner *scriptedRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	line := strings.TrimSpace(string(command.Name) + " " + strings.Join(command.Details.Arguments, " "))
	runner.invocations = append(runner.invocations, command.Details.WorkingDirectory+": "+line)

	if strings.HasPrefix(line, "git submodule update --init -- ") {
		submodulePath := command.Details.Arguments[len(command.Details.Arguments)-1]
		if mkdirError := runner.fileSystem.MkdirAll(filepath.Join(submodulePath, ".git"), 0o755); mkdirError != nil {
			return execshell.ExecutionResult{}, mkdirError
		}
	}
	if strings.HasPrefix(line, "ssh ") {
		return execshell.ExecutionResult{ExitCode: 255, StandardError: "git@github.com: Permission denied (publickey)."}, nil
	}
	return runner.results[line], nil
}

func (runner *scriptedRunner) gitInvocations() []string {
	var filtered []string
	for _, invocation := range runner.invocations {
		if strings.Contains(invocation, ": git ") {
			filtered = append(filtered, invocation)
		}
	}
	return filtered
}

func newWorkspaceFileSystem(t *testing.T) billy.Filesystem {
	t.Helper()
	fileSystem := memfs.New()
	require.NoError(t, util.WriteFile(fileSystem, ".gitmodules", []byte(twoEntryManifest), 0o644))
	require.NoError(t, util.WriteFile(fileSystem, "vendor/premake/premake5", []byte("#!/bin/sh\n"), 0o755))
	return fileSystem
}

func newCommandBuilder(workspaceFileSystem billy.Filesystem, reportFileSystem billy.Filesystem, runner execshell.CommandRunner, configuration bootstrap.Configuration) *bootstrap.CommandBuilder {
	return &bootstrap.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() bootstrap.Configuration { return configuration },
		CommandRunner:         runner,
		FileSystemFactory:     func(string) billy.Filesystem { return workspaceFileSystem },
		ReportFileSystem:      reportFileSystem,
		WorkingDirectory:      func() (string, error) { return "/work", nil },
		HomeExpander:          pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "/home/builder", nil }),
		LookPath:              func(string) (string, error) { return "", errors.New("not found") },
		ColorEnabled:          func() bool { return false },
	}
}

func commandTestConfiguration() bootstrap.Configuration {
	configuration := bootstrap.DefaultConfiguration()
	configuration.Host.Packages = []string{"git"}
	configuration.Submodules = []submodules.BranchRequest{{Path: "vendor/glfw", Branch: "main"}}
	return configuration
}

func TestBootstrapCommandSwitchesToHTTPSWhenSSHIsUnusable(t *testing.T) {
	workspaceFileSystem := newWorkspaceFileSystem(t)
	reportFileSystem := memfs.New()
	runner := newScriptedRunner(workspaceFileSystem)
	runner.results["git show-ref --verify --quiet refs/remotes/origin/docking"] = execshell.ExecutionResult{ExitCode: 1}
	runner.results["git symbolic-ref refs/remotes/origin/HEAD"] = execshell.ExecutionResult{StandardOutput: "refs/remotes/origin/master\n"}

	command, buildError := newCommandBuilder(workspaceFileSystem, reportFileSystem, runner, commandTestConfiguration()).Build()
	require.NoError(t, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetIn(strings.NewReader(""))
	command.SetArgs([]string{"--ci", "--workspace", "engine", "--report", "~/reports/bootstrap.yaml"})
	command.SetContext(context.Background())
	require.NoError(t, command.Execute())

	rewrittenManifest, readError := util.ReadFile(workspaceFileSystem, ".gitmodules")
	require.NoError(t, readError)
	require.NotContains(t, string(rewrittenManifest), "git@")
	require.NotContains(t, string(rewrittenManifest), "ssh://")
	require.Contains(t, string(rewrittenManifest), "url = https://github.com/glfw/glfw.git")
	require.Contains(t, string(rewrittenManifest), "url = https://github.com/ocornut/imgui.git")

	require.Equal(t, []string{
		commandTestWorkspace + ": git config --global --add safe.directory " + commandTestWorkspace,
		commandTestWorkspace + ": git submodule sync",
		commandTestWorkspace + ": git submodule init",
		commandTestWorkspace + ": git submodule update --init -- vendor/glfw",
		commandTestWorkspace + "/vendor/glfw: git fetch origin",
		commandTestWorkspace + "/vendor/glfw: git show-ref --verify --quiet refs/remotes/origin/main",
		commandTestWorkspace + "/vendor/glfw: git checkout main",
		commandTestWorkspace + "/vendor/glfw: git pull origin main",
		commandTestWorkspace + ": git submodule update --init -- vendor/imgui",
		commandTestWorkspace + "/vendor/imgui: git fetch origin",
		commandTestWorkspace + "/vendor/imgui: git show-ref --verify --quiet refs/remotes/origin/docking",
		commandTestWorkspace + "/vendor/imgui: git symbolic-ref refs/remotes/origin/HEAD",
		commandTestWorkspace + "/vendor/imgui: git checkout master",
		commandTestWorkspace + "/vendor/imgui: git pull origin master",
	}, runner.gitInvocations())
	require.Contains(t, runner.invocations, commandTestWorkspace+": "+commandTestWorkspace+"/vendor/premake/premake5 gmake2")

	reportContents, reportError := util.ReadFile(reportFileSystem, "/home/builder/reports/bootstrap.yaml")
	require.NoError(t, reportError)
	decoded := readReport(t, reportContents)
	require.True(t, decoded.Completed)
	require.Equal(t, "https", decoded.Transport)
	require.Equal(t, 2, decoded.RewrittenURLs)
	require.Len(t, decoded.Submodules, 2)
	for _, submodule := range decoded.Submodules {
		require.True(t, submodule.Present)
		require.NotNil(t, submodule.Resolution)
	}
	require.Equal(t, "main", decoded.Submodules[0].Resolution.Branch)
	require.Equal(t, "master", decoded.Submodules[1].Resolution.Branch)

	require.Contains(t, output.String(), "BUILD SUCCESSFUL!")
	require.Contains(t, output.String(), "vendor/premake/premake5 gmake2")
	require.Contains(t, output.String(), "make clean")
}

func TestBootstrapCommandContinuesPastFailingSubmodule(t *testing.T) {
	workspaceFileSystem := newWorkspaceFileSystem(t)
	runner := newScriptedRunner(workspaceFileSystem)
	runner.results["git submodule update --init -- vendor/glfw"] = execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: repository not found"}

	command, buildError := newCommandBuilder(workspaceFileSystem, memfs.New(), runner, commandTestConfiguration()).Build()
	require.NoError(t, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetArgs([]string{"--ci"})
	command.SetContext(context.Background())
	require.NoError(t, command.Execute())

	require.Contains(t, runner.gitInvocations(), "/work: git submodule update --init -- vendor/imgui")
	require.Contains(t, runner.gitInvocations(), "/work/vendor/imgui: git pull origin docking")
	require.NotContains(t, runner.gitInvocations(), "/work/vendor/glfw: git fetch origin")
	require.Contains(t, output.String(), "vendor/glfw could not be synchronized")
	require.Contains(t, output.String(), "SUBMODULES NEEDING ATTENTION")
}

func TestBootstrapCommandUsesEnvironmentFacts(t *testing.T) {
	workspaceFileSystem := newWorkspaceFileSystem(t)
	runner := newScriptedRunner(workspaceFileSystem)

	command, buildError := newCommandBuilder(workspaceFileSystem, memfs.New(), runner, commandTestConfiguration()).Build()
	require.NoError(t, buildError)

	accessor := utils.NewCommandContextAccessor()
	executionContext := accessor.WithExecutionEnvironment(context.Background(), utils.ExecutionEnvironment{
		ContinuousIntegration: true,
		WorkspaceOverride:     "/runner/work/engine",
	})
	command.SetOut(&bytes.Buffer{})
	command.SetArgs([]string{})
	command.SetContext(executionContext)
	require.NoError(t, command.Execute())

	require.Contains(t, runner.gitInvocations(), "/runner/work/engine: git submodule init")
}

func TestBootstrapCommandReportsFatalStage(t *testing.T) {
	workspaceFileSystem := newWorkspaceFileSystem(t)
	runner := newScriptedRunner(workspaceFileSystem)
	runner.results["git submodule init"] = execshell.ExecutionResult{ExitCode: 1, StandardError: "fatal: not a git repository"}

	command, buildError := newCommandBuilder(workspaceFileSystem, memfs.New(), runner, commandTestConfiguration()).Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--ci", "--workspace", commandTestWorkspace})
	command.SetContext(context.Background())

	executionError := command.Execute()
	var stageError bootstrap.StageError
	require.ErrorAs(t, executionError, &stageError)
	require.Equal(t, bootstrap.StateRegistryReady, stageError.State)
	require.Contains(t, executionError.Error(), "failed to initialize submodules")
}

func TestBootstrapCommandRejectsArguments(t *testing.T) {
	command, buildError := newCommandBuilder(memfs.New(), memfs.New(), newScriptedRunner(memfs.New()), commandTestConfiguration()).Build()
	require.NoError(t, buildError)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"unexpected"})
	command.SetContext(context.Background())
	require.EqualError(t, command.Execute(), "bootstrap does not accept positional arguments")
}
