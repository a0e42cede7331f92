// Package main provides the tunnelctl command, a CLI for managing
// Tunnelblick VPN sessions on macOS.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"tunnelctl/internal/bridge"
	"tunnelctl/internal/config"
	"tunnelctl/internal/dialog"
	"tunnelctl/internal/logging"
	"tunnelctl/internal/prompt"
	"tunnelctl/internal/session"
	"tunnelctl/internal/stats"
	"tunnelctl/internal/tunnelblick"
)

var version = "dev"

// Exit codes per failure class. The shell contract is explicit so
// scripts wrapping tunnelctl can distinguish outcomes.
const (
	exitOK            = 0
	exitGeneral       = 1
	exitOperation     = 2
	exitTimeout       = 3
	exitNotFound      = 4
	exitBridgeFailure = 5
)

// errNotFound marks a configuration name that Tunnelblick does not know.
var errNotFound = errors.New("configuration not found")

func main() {
	logging.SetupFromEnv()

	app := kingpin.New("tunnelctl", "Tunnelblick VPN session manager for macOS.")
	app.Version(version)

	listCmd := app.Command("list", "List all VPN configurations.")

	statusCmd := app.Command("status", "Show status of a VPN configuration.")
	statusName := statusCmd.Arg("name", "Name of the VPN configuration.").Required().String()

	connectCmd := app.Command("connect", "Connect to a VPN configuration.")
	connectName := connectCmd.Arg("name", "Name of the VPN configuration.").Required().String()

	disconnectCmd := app.Command("disconnect", "Disconnect from a VPN configuration.")
	disconnectName := disconnectCmd.Arg("name", "Name of the VPN configuration.").Required().String()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitGeneral)
	}

	runner := bridge.NewOsascript()
	client := tunnelblick.NewClientWithApp(runner, cfg.App)
	prompter := dialog.NewSystemEvents(runner, dialog.Options{
		Process:     cfg.App,
		WindowTitle: cfg.LoginWindowTitle,
		Attempts:    cfg.DialogAttempts,
		Delay:       cfg.DialogDelay(),
	})
	sess := session.New(client, prompter, session.Options{
		ConnectPolls:    cfg.ConnectPolls,
		DisconnectPolls: cfg.DisconnectPolls,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch cmd {
	case listCmd.FullCommand():
		runErr = runList(ctx, client)
	case statusCmd.FullCommand():
		runErr = runStatus(ctx, client, *statusName)
	case connectCmd.FullCommand():
		runErr = runConnect(ctx, client, sess, *connectName)
	case disconnectCmd.FullCommand():
		runErr = runDisconnect(ctx, client, sess, *disconnectName)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", runErr)
		os.Exit(exitCode(runErr))
	}
}

func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func runList(ctx context.Context, client *tunnelblick.Client) error {
	configs, err := client.Configurations(ctx)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Println("No VPN configurations found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE")
	for _, name := range configs {
		fmt.Fprintf(w, "%s\t%s\n", name, client.State(ctx, name))
	}
	return w.Flush()
}

func runStatus(ctx context.Context, client *tunnelblick.Client, name string) error {
	state := client.State(ctx, name)
	if state == tunnelblick.StateNotFound {
		return fmt.Errorf("%w: %q", errNotFound, name)
	}

	fmt.Printf("VPN %q status: %s\n", name, state)

	if transfer, ok := client.Transfer(ctx, name); ok {
		fmt.Printf("  received: %s, sent: %s\n",
			stats.FormatBytes(transfer.BytesIn),
			stats.FormatBytes(transfer.BytesOut))
	}
	return nil
}

func runConnect(ctx context.Context, client *tunnelblick.Client, sess *session.Session, name string) error {
	// Check first so connect stays idempotent from the shell's view.
	if client.State(ctx, name).IsConnected() {
		fmt.Printf("VPN %q is already connected.\n", name)
		return nil
	}

	fmt.Printf("Connecting to VPN: %s\n", name)
	password, err := prompt.Password("Password (prefix + YubiKey token)")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if err := sess.Connect(ctx, name, password); err != nil {
		return err
	}

	fmt.Printf("Successfully connected to VPN %q.\n", name)
	return nil
}

func runDisconnect(ctx context.Context, client *tunnelblick.Client, sess *session.Session, name string) error {
	if client.State(ctx, name).IsDown() {
		fmt.Printf("VPN %q is already disconnected.\n", name)
		return nil
	}

	fmt.Printf("Disconnecting from VPN: %s\n", name)
	if err := sess.Disconnect(ctx, name); err != nil {
		return err
	}

	fmt.Printf("Successfully disconnected from VPN %q.\n", name)
	return nil
}

func exitCode(err error) int {
	var scriptErr *bridge.ScriptError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, session.ErrConnectFailed):
		return exitOperation
	case errors.Is(err, session.ErrConnectTimeout), errors.Is(err, session.ErrDisconnectTimeout):
		return exitTimeout
	case errors.Is(err, errNotFound):
		return exitNotFound
	case errors.As(err, &scriptErr):
		return exitBridgeFailure
	default:
		return exitGeneral
	}
}
