package ui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/wsboot/internal/ui"
)

func TestStatusPrinterWritesPlainLinesWithoutColor(testInstance *testing.T) {
	var output bytes.Buffer
	printer := ui.NewStatusPrinter(&output, false)

	printer.Section("initializing submodules")
	printer.Success("Updated %s to branch '%s'.", "vendor/glfw", "main")
	printer.Warning("Branch '%s' not found, using %s", "docking", "master")
	printer.Failure("Failed to update %s", "vendor/glm")
	printer.Items([]string{"cmake", "pkg-config"})
	printer.Hints("helpful hints", []ui.Hint{{Description: "compile application", Command: "make -j"}})

	require.Equal(testInstance, strings.Join([]string{
		"",
		"INITIALIZING SUBMODULES",
		"Updated vendor/glfw to branch 'main'.",
		"Branch 'docking' not found, using master",
		"Failed to update vendor/glm",
		"  - cmake",
		"  - pkg-config",
		"",
		"helpful hints",
		"  compile application:                make -j",
		"",
	}, "\n"), output.String())
}

func TestStatusPrinterSkipsEmptyHints(testInstance *testing.T) {
	var output bytes.Buffer
	ui.NewStatusPrinter(&output, false).Hints("helpful hints", nil)
	require.Empty(testInstance, output.String())
}
