package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	argumentFlagPrefixConstant              = "-"
	argumentSeparatorConstant               = "--"
	remoteReferencePrefixConstant           = "refs/remotes/"
)

const (
	gitSubmoduleSubcommandNameConstant   = "submodule"
	gitSubmoduleInitActionConstant       = "init"
	gitSubmoduleUpdateActionConstant     = "update"
	gitSubmoduleSyncActionConstant       = "sync"
	gitFetchSubcommandNameConstant       = "fetch"
	gitShowRefSubcommandNameConstant     = "show-ref"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitCheckoutSubcommandNameConstant    = "checkout"
	gitPullSubcommandNameConstant        = "pull"
	gitConfigSubcommandNameConstant      = "config"
	gitSubmoduleAllPathsLabelConstant    = "all submodules"
	gitFetchDefaultRemoteLabelConstant   = "default remote"
	sshBatchModeOptionPrefixConstant     = "BatchMode"
	sshOptionFlagConstant                = "-o"
)

const (
	gitSubmoduleInitStartTemplateConstant              = "Registering submodules in %s"
	gitSubmoduleInitSuccessTemplateConstant            = "Registered submodules in %s"
	gitSubmoduleInitFailureTemplateConstant            = "Failed to register submodules in %s (exit code %d%s)"
	gitSubmoduleInitExecutionFailureTemplateConstant   = "Unable to register submodules in %s: %s"
	gitSubmoduleUpdateStartTemplateConstant            = "Initializing and fetching %s in %s"
	gitSubmoduleUpdateSuccessTemplateConstant          = "Initialized and fetched %s in %s"
	gitSubmoduleUpdateFailureTemplateConstant          = "Failed to initialize %s in %s (exit code %d%s)"
	gitSubmoduleUpdateExecutionFailureTemplateConstant = "Unable to initialize %s in %s: %s"
	gitSubmoduleSyncStartTemplateConstant              = "Synchronizing submodule URLs in %s"
	gitSubmoduleSyncSuccessTemplateConstant            = "Synchronized submodule URLs in %s"
	gitSubmoduleSyncFailureTemplateConstant            = "Failed to synchronize submodule URLs in %s (exit code %d%s)"
	gitSubmoduleSyncExecutionFailureTemplateConstant   = "Unable to synchronize submodule URLs in %s: %s"
	gitFetchStartTemplateConstant                      = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                    = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                    = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant           = "Unable to fetch from %s in %s: %s"
	gitShowRefStartTemplateConstant                    = "Checking %s in %s"
	gitShowRefSuccessTemplateConstant                  = "%s exists in %s"
	gitShowRefFailureTemplateConstant                  = "%s not found in %s (exit code %d%s)"
	gitShowRefExecutionFailureTemplateConstant         = "Unable to check %s in %s: %s"
	gitSymbolicRefStartTemplateConstant                = "Reading %s in %s"
	gitSymbolicRefSuccessTemplateConstant              = "Read %s in %s"
	gitSymbolicRefFailureTemplateConstant              = "Failed to read %s in %s (exit code %d%s)"
	gitSymbolicRefExecutionFailureTemplateConstant     = "Unable to read %s in %s: %s"
	gitCheckoutStartTemplateConstant                   = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant                 = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant                 = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant        = "Unable to switch %s to branch %s: %s"
	gitPullStartTemplateConstant                       = "Pulling %s from %s into %s"
	gitPullSuccessTemplateConstant                     = "Pulled %s from %s into %s"
	gitPullFailureTemplateConstant                     = "Failed to pull %s from %s into %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant            = "Unable to pull %s from %s into %s: %s"
	gitConfigStartTemplateConstant                     = "Updating git configuration (%s)"
	gitConfigSuccessTemplateConstant                   = "Updated git configuration (%s)"
	gitConfigFailureTemplateConstant                   = "Failed to update git configuration (%s) (exit code %d%s)"
	gitConfigExecutionFailureTemplateConstant          = "Unable to update git configuration (%s): %s"
	sshProbeStartTemplateConstant                      = "Probing SSH access to %s"
	sshProbeSuccessTemplateConstant                    = "SSH handshake with %s succeeded"
	sshProbeFailureTemplateConstant                    = "SSH handshake with %s ended with exit code %d%s"
	sshProbeExecutionFailureTemplateConstant           = "Unable to probe SSH access to %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandSSH:
		return formatter.describeSSHMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch arguments[0] {
	case gitSubmoduleSubcommandNameConstant:
		return formatter.describeGitSubmoduleMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		remote := formatter.ensureValue(formatter.argumentAtIndex(formatter.positionalArguments(arguments[1:]), 0))
		if remote == fallbackUnknownValueLabelConstant {
			remote = gitFetchDefaultRemoteLabelConstant
		}
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant, gitFetchFailureTemplateConstant, gitFetchExecutionFailureTemplateConstant},
			remote, workingDirectory)
	case gitShowRefSubcommandNameConstant:
		reference := formatter.ensureValue(shortReference(formatter.argumentAtIndex(formatter.positionalArguments(arguments[1:]), 0)))
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitShowRefStartTemplateConstant, gitShowRefSuccessTemplateConstant, gitShowRefFailureTemplateConstant, gitShowRefExecutionFailureTemplateConstant},
			reference, workingDirectory)
	case gitSymbolicRefSubcommandNameConstant:
		reference := formatter.ensureValue(shortReference(formatter.argumentAtIndex(formatter.positionalArguments(arguments[1:]), 0)))
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitSymbolicRefStartTemplateConstant, gitSymbolicRefSuccessTemplateConstant, gitSymbolicRefFailureTemplateConstant, gitSymbolicRefExecutionFailureTemplateConstant},
			reference, workingDirectory)
	case gitCheckoutSubcommandNameConstant:
		branch := formatter.ensureValue(formatter.argumentAtIndex(formatter.positionalArguments(arguments[1:]), 0))
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitCheckoutStartTemplateConstant, gitCheckoutSuccessTemplateConstant, gitCheckoutFailureTemplateConstant, gitCheckoutExecutionFailureTemplateConstant},
			workingDirectory, branch)
	case gitPullSubcommandNameConstant:
		positional := formatter.positionalArguments(arguments[1:])
		remote := formatter.ensureValue(formatter.argumentAtIndex(positional, 0))
		branch := formatter.ensureValue(formatter.argumentAtIndex(positional, 1))
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitPullStartTemplateConstant, gitPullSuccessTemplateConstant, gitPullFailureTemplateConstant, gitPullExecutionFailureTemplateConstant},
			branch, remote, workingDirectory)
	case gitConfigSubcommandNameConstant:
		setting := strings.Join(formatter.positionalArguments(arguments[1:]), commandArgumentsJoinSeparatorConstant)
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitConfigStartTemplateConstant, gitConfigSuccessTemplateConstant, gitConfigFailureTemplateConstant, gitConfigExecutionFailureTemplateConstant},
			formatter.ensureValue(setting))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitSubmoduleMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	action := formatter.argumentAtIndex(arguments, 1)

	switch action {
	case gitSubmoduleInitActionConstant:
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitSubmoduleInitStartTemplateConstant, gitSubmoduleInitSuccessTemplateConstant, gitSubmoduleInitFailureTemplateConstant, gitSubmoduleInitExecutionFailureTemplateConstant},
			workingDirectory)
	case gitSubmoduleSyncActionConstant:
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitSubmoduleSyncStartTemplateConstant, gitSubmoduleSyncSuccessTemplateConstant, gitSubmoduleSyncFailureTemplateConstant, gitSubmoduleSyncExecutionFailureTemplateConstant},
			workingDirectory)
	case gitSubmoduleUpdateActionConstant:
		target := gitSubmoduleAllPathsLabelConstant
		if scopedPath := formatter.argumentAfterSeparator(arguments); len(scopedPath) > 0 {
			target = scopedPath
		}
		return formatter.selectTemplate(stage, result, failure,
			[]string{gitSubmoduleUpdateStartTemplateConstant, gitSubmoduleUpdateSuccessTemplateConstant, gitSubmoduleUpdateFailureTemplateConstant, gitSubmoduleUpdateExecutionFailureTemplateConstant},
			target, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeSSHMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	destination := formatter.ensureValue(formatter.sshDestination(command.Details.Arguments))
	return formatter.selectTemplate(stage, result, failure,
		[]string{sshProbeStartTemplateConstant, sshProbeSuccessTemplateConstant, sshProbeFailureTemplateConstant, sshProbeExecutionFailureTemplateConstant},
		destination)
}

// selectTemplate renders one of four stage templates. Failure templates receive
// the exit code and standard error suffix; execution failure templates receive
// the failure description.
func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, result ExecutionResult, failure error, templates []string, values ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates[0], values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates[1], values...)
	case messageStageFailure:
		failureValues := append(append([]any{}, values...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates[2], failureValues...)
	default:
		executionValues := append(append([]any{}, values...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates[3], executionValues...)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, strings.Join(commandParts, commandArgumentsJoinSeparatorConstant), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

// positionalArguments drops flags and the flag values of ssh-style "-o" options.
func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, argumentFlagPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func (formatter CommandMessageFormatter) argumentAfterSeparator(arguments []string) string {
	for argumentIndex, argument := range arguments {
		if argument == argumentSeparatorConstant {
			return formatter.argumentAtIndex(arguments, argumentIndex+1)
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) sshDestination(arguments []string) string {
	skipNext := false
	for _, argument := range arguments {
		if skipNext {
			skipNext = false
			continue
		}
		if argument == sshOptionFlagConstant {
			skipNext = true
			continue
		}
		if strings.HasPrefix(argument, argumentFlagPrefixConstant) || strings.HasPrefix(argument, sshBatchModeOptionPrefixConstant) {
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func shortReference(reference string) string {
	return strings.TrimPrefix(strings.TrimSpace(reference), remoteReferencePrefixConstant)
}
