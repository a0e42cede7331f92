// Package monitor implements the long-running connection watchdog:
// poll the VPN state and reconnect with stored credentials when it drops.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tunnelctl/internal/netcheck"
	"tunnelctl/internal/tunnelblick"
)

// StatusSource reports the current connection state of a configuration.
type StatusSource interface {
	State(ctx context.Context, name string) tunnelblick.State
}

// Connector initiates a VPN connection with the given full password.
type Connector interface {
	Connect(ctx context.Context, name, password string) error
}

// PrefixStore retrieves the stored password prefix for a configuration.
type PrefixStore interface {
	Get(configName string) (string, error)
}

// TokenSource supplies a one-time token for each reconnect attempt.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config holds monitor parameters.
type Config struct {
	// ConfigName is the VPN configuration being watched.
	ConfigName string
	// CheckInterval is the pause between status polls.
	CheckInterval time.Duration
	// ErrorCooldown is the pause after a failed cycle before retrying.
	ErrorCooldown time.Duration
}

// DefaultConfig returns the default monitor parameters.
func DefaultConfig(configName string) Config {
	return Config{
		ConfigName:    configName,
		CheckInterval: 30 * time.Second,
		ErrorCooldown: 5 * time.Second,
	}
}

// Monitor watches a single VPN configuration and reconnects on drops.
// All mutable state is held on the struct so multiple monitors can run
// side by side and tests can inspect the counter.
type Monitor struct {
	cfg       Config
	sessionID string

	status    StatusSource
	connector Connector
	prefixes  PrefixStore
	tokens    TokenSource
	prober    netcheck.Prober

	mu         sync.Mutex
	reconnects int
}

// New creates a monitor for the configuration named in cfg.
func New(cfg Config, status StatusSource, connector Connector, prefixes PrefixStore, tokens TokenSource, prober netcheck.Prober) *Monitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultConfig(cfg.ConfigName).CheckInterval
	}
	if cfg.ErrorCooldown <= 0 {
		cfg.ErrorCooldown = DefaultConfig(cfg.ConfigName).ErrorCooldown
	}
	return &Monitor{
		cfg:       cfg,
		sessionID: uuid.NewString(),
		status:    status,
		connector: connector,
		prefixes:  prefixes,
		tokens:    tokens,
		prober:    prober,
	}
}

// ReconnectCount returns how many successful reconnects the monitor has
// performed since the connection was last observed up.
func (m *Monitor) ReconnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnects
}

// Run polls the connection until the context is cancelled. It aborts
// before the first cycle if no password prefix is stored for the
// configuration. Cycle failures are logged and followed by a cooldown;
// only cancellation stops the loop.
func (m *Monitor) Run(ctx context.Context) error {
	prefix, err := m.prefixes.Get(m.cfg.ConfigName)
	if err != nil {
		return fmt.Errorf("no stored credentials for %q (run setup first): %w", m.cfg.ConfigName, err)
	}

	slog.Info("Starting VPN monitor",
		"configuration", m.cfg.ConfigName,
		"session", m.sessionID,
		"check_interval", m.cfg.CheckInterval)

	for {
		if err := m.cycle(ctx, prefix); err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("Error during monitoring", "session", m.sessionID, "error", err)
			if sleepCtx(ctx, m.cfg.ErrorCooldown) != nil {
				break
			}
			continue
		}

		if sleepCtx(ctx, m.cfg.CheckInterval) != nil {
			break
		}
	}

	slog.Info("VPN monitoring stopped", "configuration", m.cfg.ConfigName, "session", m.sessionID)
	return nil
}

// cycle performs one poll-and-maybe-reconnect pass.
func (m *Monitor) cycle(ctx context.Context, prefix string) error {
	state := m.status.State(ctx, m.cfg.ConfigName)

	if state.IsConnected() {
		slog.Info("VPN is connected", "configuration", m.cfg.ConfigName)
		m.mu.Lock()
		m.reconnects = 0
		m.mu.Unlock()
		return nil
	}

	slog.Warn("VPN is disconnected", "configuration", m.cfg.ConfigName, "state", state)

	if !m.prober.Reachable(ctx) {
		slog.Info("No internet connectivity, waiting for network")
		return nil
	}

	slog.Info("Internet connectivity detected, attempting to reconnect")
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	if err := m.connector.Connect(ctx, m.cfg.ConfigName, prefix+token); err != nil {
		if ctx.Err() != nil {
			return err
		}
		slog.Error("Reconnection failed, will try again next cycle",
			"configuration", m.cfg.ConfigName, "error", err)
		return nil
	}

	m.mu.Lock()
	m.reconnects++
	count := m.reconnects
	m.mu.Unlock()

	slog.Info("Reconnected successfully", "configuration", m.cfg.ConfigName, "reconnects", count)
	return nil
}

// sleepCtx sleeps for the given duration unless the context is cancelled
// first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
