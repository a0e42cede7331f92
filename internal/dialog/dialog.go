// Package dialog drives the Tunnelblick login dialog through the macOS
// System Events accessibility layer to submit credentials.
package dialog

import (
	"context"
	"fmt"
	"time"

	"tunnelctl/internal/bridge"
)

// Prompter submits a password into the VPN client's login dialog.
// It is the only piece of the connect pipeline that needs a desktop;
// everything above it is testable against a fake implementation.
type Prompter interface {
	// Submit types the password into the login dialog and confirms it.
	// A nil error means the dialog interaction script ran, not that the
	// credentials were accepted: validation happens via status polling.
	Submit(ctx context.Context, password string) error
}

// Options configures how the login dialog is located and driven.
type Options struct {
	// Process is the application process name owning the dialog.
	Process string
	// WindowTitle is the exact title of the login dialog window.
	WindowTitle string
	// Attempts is how many times the script retries locating the dialog.
	Attempts int
	// Delay is the pause between attempts.
	Delay time.Duration
}

// DefaultOptions returns the dialog options matching a stock
// Tunnelblick installation.
func DefaultOptions() Options {
	return Options{
		Process:     "Tunnelblick",
		WindowTitle: "Tunnelblick: Login Required",
		Attempts:    15,
		Delay:       700 * time.Millisecond,
	}
}

// SystemEvents implements Prompter using a System Events AppleScript.
type SystemEvents struct {
	runner bridge.Runner
	opts   Options
}

// NewSystemEvents creates a Prompter driving the dialog via the bridge.
func NewSystemEvents(runner bridge.Runner, opts Options) *SystemEvents {
	if opts.Process == "" {
		opts.Process = DefaultOptions().Process
	}
	if opts.WindowTitle == "" {
		opts.WindowTitle = DefaultOptions().WindowTitle
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultOptions().Attempts
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultOptions().Delay
	}
	return &SystemEvents{runner: runner, opts: opts}
}

// Submit runs a single osascript invocation containing the retry loop.
// The script swallows per-attempt automation errors and stops early once
// the OK button has been clicked. The password goes into text field 2:
// field 1 holds the username, which Tunnelblick pre-fills.
func (s *SystemEvents) Submit(ctx context.Context, password string) error {
	script := fmt.Sprintf(`tell application "System Events"
	repeat %d times
		try
			tell process "%s"
				if exists window "%s" then
					tell window "%s"
						if exists text field 2 then
							set focused of text field 2 to true
							set value of text field 2 to "%s"
							delay 0.2
							if exists button "OK" then
								click button "OK"
								exit repeat
							end if
						end if
					end tell
				end if
			end tell
		on error
			-- keep trying
		end try
		delay %s
	end repeat
end tell`,
		s.opts.Attempts,
		bridge.Escape(s.opts.Process),
		bridge.Escape(s.opts.WindowTitle),
		bridge.Escape(s.opts.WindowTitle),
		bridge.Escape(password),
		formatDelay(s.opts.Delay),
	)

	if _, err := s.runner.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to drive login dialog: %w", err)
	}
	return nil
}

// formatDelay renders a duration as an AppleScript delay value in seconds.
func formatDelay(d time.Duration) string {
	return fmt.Sprintf("%g", d.Seconds())
}
