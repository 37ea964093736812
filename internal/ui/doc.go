// Package ui renders bootstrap progress for people at a terminal.
//
// StatusPrinter writes colored section headers and result lines, Prompter asks
// confirmation and numbered-choice questions, and CommandEchoObserver mirrors
// the external commands a run executes. Detailed telemetry keeps flowing
// through the structured logger.
package ui
