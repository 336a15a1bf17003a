// Package executor runs shell commands on managed network devices. Both the
// troubleshooting probes and the remediation playbooks go through the same
// Executor so target access is configured in exactly one place.
package executor

import (
	"context"
	"time"
)

// Result is the outcome of one remote command.
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Executor runs a single command on a remote host. Implementations must honor
// context cancellation and return a non-nil error on connection failure,
// timeout, or non-zero exit.
type Executor interface {
	Run(ctx context.Context, host, command string) (Result, error)
}

// Func adapts a function to the Executor interface.
type Func func(ctx context.Context, host, command string) (Result, error)

func (f Func) Run(ctx context.Context, host, command string) (Result, error) {
	return f(ctx, host, command)
}
