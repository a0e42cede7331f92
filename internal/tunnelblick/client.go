package tunnelblick

import (
	"context"
	"fmt"
	"log/slog"

	"tunnelctl/internal/bridge"
)

// DefaultApp is the application name Tunnelblick registers under.
const DefaultApp = "Tunnelblick"

// Client issues scripted commands to the Tunnelblick application.
type Client struct {
	app    string
	runner bridge.Runner
}

// NewClient creates a client for the default Tunnelblick application.
func NewClient(runner bridge.Runner) *Client {
	return NewClientWithApp(runner, DefaultApp)
}

// NewClientWithApp creates a client addressing a specific application
// name. Useful for rebranded Tunnelblick builds.
func NewClientWithApp(runner bridge.Runner, app string) *Client {
	if app == "" {
		app = DefaultApp
	}
	return &Client{app: app, runner: runner}
}

// Configurations returns the names of all VPN configurations known to
// Tunnelblick.
func (c *Client) Configurations(ctx context.Context) ([]string, error) {
	script := fmt.Sprintf(`tell application "%s"
	get name of configurations
end tell`, bridge.Escape(c.app))

	out, err := c.runner.Run(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	return ParseConfigurations(out), nil
}

// State returns the connection state of the named configuration.
// A bridge failure collapses to StateUnknown: an empty reply is
// indistinguishable from "nothing to report", so no error is surfaced.
func (c *Client) State(ctx context.Context, name string) State {
	blob, err := c.properties(ctx)
	if err != nil {
		slog.Warn("Failed to query configuration properties", "configuration", name, "error", err)
		return StateUnknown
	}
	return ParseState(blob, name)
}

// Transfer returns the traffic counters of the named configuration.
func (c *Client) Transfer(ctx context.Context, name string) (Transfer, bool) {
	blob, err := c.properties(ctx)
	if err != nil {
		slog.Warn("Failed to query configuration properties", "configuration", name, "error", err)
		return Transfer{}, false
	}
	return ParseTransfer(blob, name)
}

// Connect asks Tunnelblick to start the named configuration. This only
// issues the command; polling for the outcome is the caller's job.
func (c *Client) Connect(ctx context.Context, name string) error {
	script := fmt.Sprintf(`tell application "%s"
	connect "%s"
end tell`, bridge.Escape(c.app), bridge.Escape(name))

	if _, err := c.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to issue connect command: %w", err)
	}
	return nil
}

// Disconnect asks Tunnelblick to stop the named configuration.
func (c *Client) Disconnect(ctx context.Context, name string) error {
	script := fmt.Sprintf(`tell application "%s"
	disconnect "%s"
end tell`, bridge.Escape(c.app), bridge.Escape(name))

	if _, err := c.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to issue disconnect command: %w", err)
	}
	return nil
}

func (c *Client) properties(ctx context.Context) (string, error) {
	script := fmt.Sprintf(`tell application "%s"
	get properties of configurations
end tell`, bridge.Escape(c.app))

	return c.runner.Run(ctx, script)
}
