// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task number).
	UserError = 1

	// ConfigError indicates an invalid configuration (bad base URL, unreadable config file).
	ConfigError = 2

	// BackendError indicates a task server, network or response decoding error.
	BackendError = 3
)
