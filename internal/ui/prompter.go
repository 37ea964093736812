package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	choiceOptionTemplateConstant   = "  %d) %s\n"
	choicePromptTemplateConstant   = "%s [1-%d]: "
	invalidChoiceTemplateConstant  = "Please enter a number between 1 and %d.\n"
	noOptionsMessageConstant       = "no options to choose from"
	inputExhaustedMessageConstant  = "input ended before an answer was given"
	affirmativeShortAnswerConstant = "y"
	affirmativeLongAnswerConstant  = "yes"
	negativeShortAnswerConstant    = "n"
	negativeLongAnswerConstant     = "no"
)

// ErrNoOptions indicates a choice was requested from an empty list.
var ErrNoOptions = errors.New(noOptionsMessageConstant)

// ErrInputExhausted indicates the input stream ended before a valid answer.
var ErrInputExhausted = errors.New(inputExhaustedMessageConstant)

// Prompter reads answers to terminal questions from an io.Reader.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter constructs a prompter from the provided reader and writer.
func NewPrompter(input io.Reader, output io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and interprets y/yes and n/no. An empty answer
// selects defaultAnswer; any other answer asks again.
func (prompter *Prompter) Confirm(prompt string, defaultAnswer bool) (bool, error) {
	for {
		response, readError := prompter.ask(prompt)
		if readError != nil {
			return false, readError
		}
		switch strings.ToLower(response) {
		case "":
			return defaultAnswer, nil
		case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
			return true, nil
		case negativeShortAnswerConstant, negativeLongAnswerConstant:
			return false, nil
		}
	}
}

// Choose lists the options numbered from one and returns the zero-based index
// of the selected option.
func (prompter *Prompter) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	for optionIndex, option := range options {
		prompter.write(fmt.Sprintf(choiceOptionTemplateConstant, optionIndex+1, option))
	}
	for {
		response, readError := prompter.ask(fmt.Sprintf(choicePromptTemplateConstant, prompt, len(options)))
		if readError != nil {
			return 0, readError
		}
		selection, parseError := strconv.Atoi(response)
		if parseError == nil && selection >= 1 && selection <= len(options) {
			return selection - 1, nil
		}
		prompter.write(fmt.Sprintf(invalidChoiceTemplateConstant, len(options)))
	}
}

func (prompter *Prompter) ask(prompt string) (string, error) {
	prompter.write(prompt)
	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	if errors.Is(readError, io.EOF) && len(response) == 0 {
		return "", ErrInputExhausted
	}
	return strings.TrimSpace(response), nil
}

func (prompter *Prompter) write(text string) {
	if prompter.writer != nil {
		_, _ = io.WriteString(prompter.writer, text)
	}
}
