// Package session implements the connect and disconnect operations:
// issue a command through the bridge, enter credentials, then poll the
// connection state until a terminal outcome or budget exhaustion.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tunnelctl/internal/dialog"
	"tunnelctl/internal/tunnelblick"
)

var (
	// ErrConnectFailed indicates the connection reached a terminal
	// disconnect state before establishing.
	ErrConnectFailed = errors.New("connection failed")
	// ErrConnectTimeout indicates the poll budget ran out without a
	// terminal state.
	ErrConnectTimeout = errors.New("timed out waiting for connection")
	// ErrDisconnectTimeout indicates the configuration never reported a
	// disconnect state within the poll budget.
	ErrDisconnectTimeout = errors.New("timed out waiting for disconnection")
)

// Controller is the subset of the Tunnelblick client the session needs.
type Controller interface {
	State(ctx context.Context, name string) tunnelblick.State
	Connect(ctx context.Context, name string) error
	Disconnect(ctx context.Context, name string) error
}

// Options bounds the polling loops. All durations and budgets are
// explicit so tests can run with tiny values.
type Options struct {
	// PollInterval is the pause between status polls.
	PollInterval time.Duration
	// ConnectPolls is the poll budget for establishing a connection.
	ConnectPolls int
	// DisconnectPolls is the poll budget for tearing one down.
	DisconnectPolls int
	// DialogDelay is how long to wait after the connect command before
	// driving the login dialog.
	DialogDelay time.Duration
}

// DefaultOptions returns the production polling parameters.
func DefaultOptions() Options {
	return Options{
		PollInterval:    time.Second,
		ConnectPolls:    30,
		DisconnectPolls: 10,
		DialogDelay:     2 * time.Second,
	}
}

// Session performs connect and disconnect operations against a single
// VPN client instance.
type Session struct {
	controller Controller
	prompter   dialog.Prompter
	opts       Options
}

// New creates a session over the given controller and credential prompter.
func New(controller Controller, prompter dialog.Prompter, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	if opts.ConnectPolls <= 0 {
		opts.ConnectPolls = DefaultOptions().ConnectPolls
	}
	if opts.DisconnectPolls <= 0 {
		opts.DisconnectPolls = DefaultOptions().DisconnectPolls
	}
	if opts.DialogDelay <= 0 {
		opts.DialogDelay = DefaultOptions().DialogDelay
	}
	return &Session{controller: controller, prompter: prompter, opts: opts}
}

// Connect issues the connect command, submits the password through the
// login dialog, then polls until the configuration reports CONNECTED.
//
// Returns nil on CONNECTED, ErrConnectFailed when a terminal disconnect
// token appears first, and ErrConnectTimeout when the poll budget runs
// out. The operation does not guard against redundant invocation; the
// caller decides whether connecting is appropriate.
func (s *Session) Connect(ctx context.Context, name, password string) error {
	if err := s.controller.Connect(ctx, name); err != nil {
		return err
	}

	// Give the login dialog time to appear before driving it.
	if err := sleepCtx(ctx, s.opts.DialogDelay); err != nil {
		return err
	}

	if err := s.prompter.Submit(ctx, password); err != nil {
		// The dialog may not have appeared at all (e.g. cached
		// credentials); the status poll below decides the outcome.
		slog.Warn("Credential entry failed", "configuration", name, "error", err)
	}

	slog.Info("Waiting for VPN connection", "configuration", name)
	for i := 0; i < s.opts.ConnectPolls; i++ {
		state := s.controller.State(ctx, name)
		if state.IsConnected() {
			return nil
		}
		if state.IsDown() {
			return fmt.Errorf("%w: configuration %q reported %s", ErrConnectFailed, name, state)
		}

		slog.Debug("Checking connection status",
			"configuration", name,
			"state", state,
			"poll", i+1,
			"budget", s.opts.ConnectPolls)

		if err := sleepCtx(ctx, s.opts.PollInterval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: configuration %q", ErrConnectTimeout, name)
}

// Disconnect issues the disconnect command and polls until the
// configuration reports a terminal disconnect state.
func (s *Session) Disconnect(ctx context.Context, name string) error {
	if err := s.controller.Disconnect(ctx, name); err != nil {
		return err
	}

	slog.Info("Waiting for VPN disconnection", "configuration", name)
	for i := 0; i < s.opts.DisconnectPolls; i++ {
		if s.controller.State(ctx, name).IsDown() {
			return nil
		}
		if err := sleepCtx(ctx, s.opts.PollInterval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: configuration %q", ErrDisconnectTimeout, name)
}

// sleepCtx sleeps for the given duration unless the context is cancelled
// first, in which case the context error is returned immediately.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
