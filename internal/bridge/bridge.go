// Package bridge executes AppleScript against the desktop via osascript.
// It is the single channel through which the application commands
// Tunnelblick and drives its dialogs.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tunnelctl/internal/execx"
)

// Runner executes an AppleScript snippet and returns its trimmed output.
type Runner interface {
	// Run executes the script. A *ScriptError is returned when osascript
	// exits non-zero. An empty result with a nil error means the script
	// ran but produced no output; callers must not treat that as failure.
	Run(ctx context.Context, script string) (string, error)
}

// ScriptError reports an AppleScript execution failure.
type ScriptError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ScriptError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("osascript failed (exit %d): %s", e.ExitCode, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("osascript failed: %v", e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Osascript implements Runner by invoking the osascript binary.
type Osascript struct {
	commander execx.Commander
}

// NewOsascript creates a Runner backed by the real osascript binary.
func NewOsascript() *Osascript {
	return &Osascript{commander: execx.NewRealCommander()}
}

// NewOsascriptWithCommander creates a Runner with a custom commander.
// This is primarily used for testing.
func NewOsascriptWithCommander(commander execx.Commander) *Osascript {
	return &Osascript{commander: commander}
}

// Run executes the script via `osascript -e`. No retries happen at this
// layer; callers own any loop-based retrying.
func (o *Osascript) Run(ctx context.Context, script string) (string, error) {
	out, err := o.commander.Output(ctx, "osascript", "-e", script)
	if err != nil {
		var exitErr *execx.ExitError
		if errors.As(err, &exitErr) {
			slog.Warn("AppleScript execution failed",
				"exit_code", exitErr.Code,
				"stderr", strings.TrimSpace(exitErr.Stderr))
			return "", &ScriptError{
				ExitCode: exitErr.Code,
				Stderr:   exitErr.Stderr,
				Err:      err,
			}
		}
		slog.Warn("Failed to invoke osascript", "error", err)
		return "", &ScriptError{Err: err}
	}

	return strings.TrimSpace(string(out)), nil
}

// Escape escapes a string for embedding in an AppleScript double-quoted
// string literal.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
