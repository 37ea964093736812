// Package bootstrap prepares a freshly cloned workspace for building.
//
// The Orchestrator walks a fixed sequence of states, each guarded by one
// collaborator: host packages, the build generator, the submodule registry
// (switching the manifest to HTTPS when SSH is unusable), per-submodule
// synchronization and finally build file generation. A failure before
// SUBMODULES_SYNCED aborts the run with a StageError; submodule failures are
// recorded in the Report and the run carries on.
//
// CommandBuilder exposes the orchestrator as the "bootstrap" Cobra command.
package bootstrap
