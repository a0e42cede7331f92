// Package tunnelblick commands the Tunnelblick application through the
// AppleScript bridge and interprets its configuration property output.
package tunnelblick

import "strings"

// State is a connection state token as reported by Tunnelblick.
// The set is open-ended: tokens other than the known constants are
// passed through unchanged.
type State string

const (
	// StateConnected indicates the tunnel is established.
	StateConnected State = "CONNECTED"
	// StateExiting indicates the tunnel process is shutting down.
	StateExiting State = "EXITING"
	// StateDisconnected indicates no active tunnel.
	StateDisconnected State = "DISCONNECTED"
	// StateUnknown is reported when the bridge produced no usable output.
	StateUnknown State = "UNKNOWN"
	// StateNotFound is reported when the named configuration is absent
	// from the property blob.
	StateNotFound State = "NOT_FOUND"
)

// IsConnected returns true if the state is exactly CONNECTED.
func (s State) IsConnected() bool {
	return s == StateConnected
}

// IsDown returns true if the state contains a terminal disconnect token.
// Tunnelblick emits composite tokens during shutdown, so this is a
// substring match rather than an equality check.
func (s State) IsDown() bool {
	return strings.Contains(string(s), string(StateExiting)) ||
		strings.Contains(string(s), string(StateDisconnected))
}
