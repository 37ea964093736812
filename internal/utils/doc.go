// Package utils exposes reusable helpers consumed by the CLI and the bootstrap command.
//
// It houses the Viper backed ConfigurationLoader, the zap LoggerFactory and the
// CommandContextAccessor that threads the configuration path and the CI
// environment facts from the root command into subcommands.
package utils
