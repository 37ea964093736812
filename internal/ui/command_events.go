package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/wsboot/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "$ %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s exited with code %d"
	commandExecutionFailureMessageTemplateConstant = "%s could not run: %s"
	commandLabelTemplateConstant                   = "%s%s"
	workingDirectorySuffixTemplateConstant         = " (in %s)"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	emptyStringConstant                            = ""
)

// CommandEventFormatter builds terminal lines for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the echo of a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the line for a command that returned a non-zero exit code.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
	return baseMessage + formatter.formatStandardErrorSuffix(result.StandardError)
}

// BuildExecutionFailureMessage formats the line for a command that could not be started.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandEventFormatter) formatWorkingDirectorySuffix(command execshell.ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// CommandEchoObserver mirrors executed commands to a terminal writer.
// Successful completions print nothing; the echo of the start already told the story.
type CommandEchoObserver struct {
	writer    io.Writer
	formatter CommandEventFormatter
	started   *color.Color
	failed    *color.Color
	broken    *color.Color
}

// NewCommandEchoObserver constructs an observer writing to writer.
func NewCommandEchoObserver(writer io.Writer, colorEnabled bool) *CommandEchoObserver {
	echoObserver := &CommandEchoObserver{
		writer:    writer,
		formatter: CommandEventFormatter{},
		started:   color.New(color.Faint),
		failed:    color.New(color.FgYellow),
		broken:    color.New(color.FgRed),
	}
	if !colorEnabled {
		echoObserver.started.DisableColor()
		echoObserver.failed.DisableColor()
		echoObserver.broken.DisableColor()
	}
	return echoObserver
}

// CommandStarted implements execshell.CommandEventObserver.
func (echoObserver *CommandEchoObserver) CommandStarted(command execshell.ShellCommand) {
	if echoObserver == nil || echoObserver.writer == nil {
		return
	}
	echoObserver.started.Fprintln(echoObserver.writer, echoObserver.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (echoObserver *CommandEchoObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if echoObserver == nil || echoObserver.writer == nil || result.ExitCode == 0 {
		return
	}
	echoObserver.failed.Fprintln(echoObserver.writer, echoObserver.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (echoObserver *CommandEchoObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if echoObserver == nil || echoObserver.writer == nil {
		return
	}
	echoObserver.broken.Fprintln(echoObserver.writer, echoObserver.formatter.BuildExecutionFailureMessage(command, failure))
}
