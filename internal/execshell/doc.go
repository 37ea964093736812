// Package execshell provides structured helpers for invoking external tools.
//
// CommandRunner is the narrow capability every component depends on: run a
// command with arguments and a working directory, get back the exit code and
// both output streams. OSCommandRunner implements it with os/exec, and
// ShellExecutor layers lifecycle logging and typed failures on top so that git,
// ssh, package manager and build generator invocations stay testable.
package execshell
