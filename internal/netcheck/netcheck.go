// Package netcheck probes network reachability before reconnect attempts.
package netcheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tunnelctl/internal/execx"
)

const (
	// DefaultHost is the address probed for reachability.
	DefaultHost = "8.8.8.8"
	// DefaultTimeout bounds how long a single probe may take.
	DefaultTimeout = 5 * time.Second
)

// Prober answers whether the network is currently reachable.
type Prober interface {
	Reachable(ctx context.Context) bool
}

// Ping implements Prober with a single ICMP echo via the ping utility.
// The exit code is the boolean oracle; no retries are performed.
type Ping struct {
	host      string
	timeout   time.Duration
	commander execx.Commander
}

// NewPing creates a Ping prober. Empty host or non-positive timeout fall
// back to the defaults.
func NewPing(host string, timeout time.Duration) *Ping {
	return NewPingWithCommander(host, timeout, execx.NewRealCommander())
}

// NewPingWithCommander creates a Ping prober with a custom commander.
// This is primarily used for testing.
func NewPingWithCommander(host string, timeout time.Duration, commander execx.Commander) *Ping {
	if host == "" {
		host = DefaultHost
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ping{host: host, timeout: timeout, commander: commander}
}

// Reachable sends one echo request and interprets the exit code.
// The -W flag takes milliseconds on macOS.
func (p *Ping) Reachable(ctx context.Context) bool {
	args := []string{
		"-c", "1",
		"-W", fmt.Sprintf("%d", p.timeout.Milliseconds()),
		p.host,
	}

	if _, err := p.commander.Output(ctx, "ping", args...); err != nil {
		slog.Debug("Reachability probe failed", "host", p.host, "error", err)
		return false
	}
	return true
}
