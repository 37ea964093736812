package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	executionEnvironmentContextKeyConstant  = commandContextKey("executionEnvironment")

	continuousIntegrationVariableNameConstant = "CI"
	continuousIntegrationEnabledValueConstant = "true"
	githubWorkspaceVariableNameConstant       = "GITHUB_WORKSPACE"
)

type commandContextKey string

// EnvironmentLookup resolves a process environment variable.
type EnvironmentLookup func(name string) (string, bool)

// ExecutionEnvironment captures the process environment facts read once at startup.
type ExecutionEnvironment struct {
	ContinuousIntegration bool
	WorkspaceOverride     string
}

// ReadExecutionEnvironment inspects CI and GITHUB_WORKSPACE through lookup.
func ReadExecutionEnvironment(lookup EnvironmentLookup) ExecutionEnvironment {
	if lookup == nil {
		return ExecutionEnvironment{}
	}
	environment := ExecutionEnvironment{}
	if value, exists := lookup(continuousIntegrationVariableNameConstant); exists {
		environment.ContinuousIntegration = strings.EqualFold(strings.TrimSpace(value), continuousIntegrationEnabledValueConstant)
	}
	if value, exists := lookup(githubWorkspaceVariableNameConstant); exists {
		environment.WorkspaceOverride = strings.TrimSpace(value)
	}
	return environment
}

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, available := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	return configurationFilePath, available
}

// WithExecutionEnvironment attaches the startup environment facts to the provided context.
func (accessor CommandContextAccessor) WithExecutionEnvironment(parentContext context.Context, environment ExecutionEnvironment) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, executionEnvironmentContextKeyConstant, environment)
}

// ExecutionEnvironment extracts the startup environment facts from the provided context.
func (accessor CommandContextAccessor) ExecutionEnvironment(executionContext context.Context) (ExecutionEnvironment, bool) {
	if executionContext == nil {
		return ExecutionEnvironment{}, false
	}
	environment, available := executionContext.Value(executionEnvironmentContextKeyConstant).(ExecutionEnvironment)
	return environment, available
}
