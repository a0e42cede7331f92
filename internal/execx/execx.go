// Package execx provides a small seam around os/exec so that every
// subprocess call site in the application can be mocked in tests.
package execx

import (
	"context"
	"fmt"
	"os/exec"
)

// Commander runs external commands and captures their output.
type Commander interface {
	// Output runs the command and returns its stdout. If the command
	// exits non-zero, the returned error is an *ExitError carrying the
	// exit code and captured stderr.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Code   int
	Stderr string
	err    error
}

func (e *ExitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// RealCommander implements Commander using os/exec.
type RealCommander struct{}

// NewRealCommander creates a new RealCommander.
func NewRealCommander() *RealCommander {
	return &RealCommander{}
}

// Output runs the command with the given context and returns its stdout.
func (c *RealCommander) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return out, &ExitError{
				Code:   exitErr.ExitCode(),
				Stderr: string(exitErr.Stderr),
				err:    err,
			}
		}
		return out, err
	}

	return out, nil
}
