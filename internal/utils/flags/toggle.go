// Package flags provides pflag helpers shared by the wsboot commands.
package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue             = "true"
	toggleFalseCanonicalValue            = "false"
	toggleValueTypeConstant              = "bool"
	toggleParseErrorTemplate             = "invalid toggle value %q"
	toggleTruePlaceholderConstant        = "<YES|no>"
	toggleFalsePlaceholderConstant       = "<yes|NO>"
	longFlagPrefixConstant               = "--"
	shortFlagPrefixConstant              = "-"
	flagValueAssignmentConstant          = "="
	argumentsTerminatorConstant          = "--"
	toggleUsageDescribedTemplateConstant = "`%s` %s"
	toggleUsageBareTemplateConstant      = "`%s`"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// toggleRegistry remembers which long names and shorthands are toggles so
// NormalizeToggleArguments can join a detached value to its flag.
type toggleRegistry struct {
	mutex sync.RWMutex
	names map[string]struct{}
}

var registeredToggles = &toggleRegistry{names: map[string]struct{}{}}

func (registry *toggleRegistry) register(names ...string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	for _, name := range names {
		if len(name) > 0 {
			registry.names[name] = struct{}{}
		}
	}
}

func (registry *toggleRegistry) contains(name string) bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	_, exists := registry.names[name]
	return exists
}

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off and 1/0 values.
// A bare flag sets the value to true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{target: target}
	value.store(defaultValue)
	flag := flagSet.VarPF(value, name, shorthand, formatToggleUsage(usage, defaultValue))
	flag.NoOptDefVal = toggleTrueCanonicalValue

	registeredToggles.register(longFlagPrefixConstant+name, optionalShorthand(shorthand))
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for registered
// toggles so pflag does not treat the value as a positional argument.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentsTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}
		if !registeredToggles.contains(current) || index+1 >= len(arguments) {
			normalized = append(normalized, current)
			continue
		}
		candidate := arguments[index+1]
		if _, isLiteral := toggleLiterals[strings.ToLower(strings.TrimSpace(candidate))]; !isLiteral && strings.HasPrefix(candidate, shortFlagPrefixConstant) {
			normalized = append(normalized, current)
			continue
		}
		normalized = append(normalized, current+flagValueAssignmentConstant+candidate)
		index++
	}
	return normalized
}

func optionalShorthand(shorthand string) string {
	if len(shorthand) == 0 {
		return ""
	}
	return shortFlagPrefixConstant + shorthand
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageBareTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageDescribedTemplateConstant, placeholder, trimmedDescription)
}

type toggleValue struct {
	current bool
	target  *bool
}

func (value *toggleValue) store(parsed bool) {
	value.current = parsed
	if value.target != nil {
		*value.target = parsed
	}
}

func (value *toggleValue) Set(rawValue string) error {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalized) == 0 {
		normalized = toggleTrueCanonicalValue
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	value.store(parsed)
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.current {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleValueTypeConstant
}
