package remote

import "context"

// Result carries the combined output and exit status of one remote
// command execution.
type Result struct {
	Output   string
	ExitCode int
}

// Runner executes a command on a remote host. A non-nil error means the
// host could not be reached at the transport level for this execution;
// a command that ran and failed surfaces through Result.ExitCode with a
// nil error.
type Runner interface {
	Run(ctx context.Context, host, command string) (Result, error)
}
