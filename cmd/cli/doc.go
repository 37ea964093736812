// Package cli builds the wsboot command-line interface: the Cobra root
// command with its persistent logging flags, the layered configuration
// (embedded defaults, config file, WSBOOT_ environment variables) and the
// bootstrap subcommand. Interrupts cancel the command context and surface
// as ErrInterrupted.
package cli
