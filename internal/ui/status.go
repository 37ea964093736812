package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	sectionTemplateConstant = "\n%s\n"
	itemTemplateConstant    = "  - %s\n"
	hintTemplateConstant    = "  %-36s%s\n"
	hintLabelSuffixConstant = ":"
)

// Hint pairs a short description with the command that accomplishes it.
type Hint struct {
	Description string
	Command     string
}

// StatusPrinter writes colored status lines.
type StatusPrinter struct {
	writer  io.Writer
	section *color.Color
	info    *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
	detail  *color.Color
}

// NewStatusPrinter constructs a printer. Colors are stripped when colorEnabled is false.
func NewStatusPrinter(writer io.Writer, colorEnabled bool) *StatusPrinter {
	printer := &StatusPrinter{
		writer:  writer,
		section: color.New(color.Bold, color.Underline),
		info:    color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		detail:  color.New(color.FgCyan),
	}
	if !colorEnabled {
		for _, palette := range []*color.Color{printer.section, printer.info, printer.success, printer.warning, printer.failure, printer.detail} {
			palette.DisableColor()
		}
	}
	return printer
}

// Section prints an underlined, upper-cased heading preceded by a blank line.
func (printer *StatusPrinter) Section(title string) {
	fmt.Fprintf(printer.writer, sectionTemplateConstant, printer.section.Sprint(strings.ToUpper(title)))
}

// Info prints a neutral progress line.
func (printer *StatusPrinter) Info(format string, arguments ...any) {
	printer.info.Fprintln(printer.writer, fmt.Sprintf(format, arguments...))
}

// Success prints a green line.
func (printer *StatusPrinter) Success(format string, arguments ...any) {
	printer.success.Fprintln(printer.writer, fmt.Sprintf(format, arguments...))
}

// Warning prints a yellow line.
func (printer *StatusPrinter) Warning(format string, arguments ...any) {
	printer.warning.Fprintln(printer.writer, fmt.Sprintf(format, arguments...))
}

// Failure prints a red line.
func (printer *StatusPrinter) Failure(format string, arguments ...any) {
	printer.failure.Fprintln(printer.writer, fmt.Sprintf(format, arguments...))
}

// Items prints a bulleted list.
func (printer *StatusPrinter) Items(items []string) {
	for _, item := range items {
		fmt.Fprintf(printer.writer, itemTemplateConstant, item)
	}
}

// Hints prints a titled block of aligned description/command pairs.
func (printer *StatusPrinter) Hints(title string, hints []Hint) {
	if len(hints) == 0 {
		return
	}
	fmt.Fprintln(printer.writer)
	printer.info.Fprintln(printer.writer, title)
	for _, hint := range hints {
		fmt.Fprintf(printer.writer, hintTemplateConstant, hint.Description+hintLabelSuffixConstant, printer.detail.Sprint(hint.Command))
	}
}
