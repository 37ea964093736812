package ide

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Known IDE names.
const (
	JetBrainsRider = "JetBrains Rider"
	VSCode         = "VSCode"
	Makefile       = "Makefile"
)

// Generator actions.
const (
	ActionRider  = "rider"
	ActionGmake2 = "gmake2"
)

// Build configurations offered for VS Code workspaces.
const (
	BuildConfigDebug   = "Debug"
	BuildConfigRelease = "Release"
)

const (
	riderExecutableConstant       = "rider"
	vscodeExecutableConstant      = "code"
	makeExecutableConstant        = "make"
	selectIDEPromptConstant       = "Select the IDE to generate project files for"
	selectBuildConfigPrompt       = "Select the build configuration"
	chooserMissingMessageConstant = "interactive chooser not configured"
	selectionFailedTemplate       = "unable to read selection: %w"
)

// ErrChooserNotConfigured indicates interactive selection was requested without a chooser.
var ErrChooserNotConfigured = errors.New(chooserMissingMessageConstant)

var knownIDEs = []struct {
	name       string
	executable string
}{
	{name: JetBrainsRider, executable: riderExecutableConstant},
	{name: VSCode, executable: vscodeExecutableConstant},
	{name: Makefile, executable: makeExecutableConstant},
}

// Chooser asks the user to pick one option and returns its index.
type Chooser interface {
	Choose(prompt string, options []string) (int, error)
}

// LookPathFunc resolves an executable on PATH.
type LookPathFunc func(file string) (string, error)

// Detect lists the known IDEs whose executable is on PATH, in a stable order.
// Makefile is always offered so that a selection is possible on bare hosts.
func Detect(lookPath LookPathFunc) []string {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var detected []string
	for _, known := range knownIDEs {
		if _, lookupError := lookPath(known.executable); lookupError == nil {
			detected = append(detected, known.name)
		}
	}
	for _, name := range detected {
		if name == Makefile {
			return detected
		}
	}
	return append(detected, Makefile)
}

// ActionFor maps an IDE to the generator action that produces its project files.
func ActionFor(ideName string) string {
	if strings.EqualFold(strings.TrimSpace(ideName), JetBrainsRider) {
		return ActionRider
	}
	return ActionGmake2
}

// IsVSCode reports whether the selection targets VS Code.
func IsVSCode(ideName string) bool {
	return strings.Contains(strings.ToLower(ideName), strings.ToLower(VSCode))
}

// Options configures a Selector.
type Options struct {
	// NonInteractive returns the defaults without prompting.
	NonInteractive     bool
	DefaultIDE         string
	DefaultBuildConfig string
}

// Selector chooses the IDE and build configuration for a run.
type Selector struct {
	chooser  Chooser
	lookPath LookPathFunc
	options  Options
}

// NewSelector constructs a Selector. A nil lookPath uses exec.LookPath.
func NewSelector(chooser Chooser, lookPath LookPathFunc, options Options) *Selector {
	if len(strings.TrimSpace(options.DefaultIDE)) == 0 {
		options.DefaultIDE = Makefile
	}
	if len(strings.TrimSpace(options.DefaultBuildConfig)) == 0 {
		options.DefaultBuildConfig = BuildConfigDebug
	}
	return &Selector{chooser: chooser, lookPath: lookPath, options: options}
}

// SelectIDE returns the IDE to generate for.
func (selector *Selector) SelectIDE() (string, error) {
	if selector.options.NonInteractive {
		return selector.options.DefaultIDE, nil
	}
	return selector.choose(selectIDEPromptConstant, Detect(selector.lookPath))
}

// SelectBuildConfig returns the build configuration used by editor tasks.
func (selector *Selector) SelectBuildConfig() (string, error) {
	if selector.options.NonInteractive {
		return selector.options.DefaultBuildConfig, nil
	}
	return selector.choose(selectBuildConfigPrompt, []string{BuildConfigDebug, BuildConfigRelease})
}

func (selector *Selector) choose(prompt string, options []string) (string, error) {
	if selector.chooser == nil {
		return "", ErrChooserNotConfigured
	}
	selection, chooseError := selector.chooser.Choose(prompt, options)
	if chooseError != nil {
		return "", fmt.Errorf(selectionFailedTemplate, chooseError)
	}
	return options[selection], nil
}
