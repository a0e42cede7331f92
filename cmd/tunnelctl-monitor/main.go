// Package main provides the tunnelctl-monitor command, which watches a
// Tunnelblick VPN connection and reconnects it with stored credentials
// when it drops.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"tunnelctl/internal/bridge"
	"tunnelctl/internal/config"
	"tunnelctl/internal/dialog"
	"tunnelctl/internal/keyring"
	"tunnelctl/internal/logging"
	"tunnelctl/internal/monitor"
	"tunnelctl/internal/netcheck"
	"tunnelctl/internal/prompt"
	"tunnelctl/internal/session"
	"tunnelctl/internal/tunnelblick"
)

var version = "dev"

func main() {
	logging.SetupFromEnv()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	app := kingpin.New("tunnelctl-monitor", "VPN connection monitor and auto-reconnect for Tunnelblick.")
	app.Version(version)

	configName := app.Arg("config", "Name of the VPN configuration to monitor.").Required().String()
	checkInterval := app.Flag("check-interval", "How often to check connection status in seconds.").
		Short('i').Default(strconv.Itoa(cfg.CheckIntervalSeconds)).Int()
	setup := app.Flag("setup", "Set up and store VPN credentials.").Short('s').Bool()
	test := app.Flag("test", "Test connection with stored credentials.").Short('t').Bool()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	store := keyring.NewSystemKeyring()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch {
	case *setup:
		runErr = runSetup(store, *configName)
	case *test:
		runErr = runTest(ctx, cfg, store, *configName)
	default:
		runErr = runMonitor(ctx, cfg, store, *configName, *checkInterval)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", runErr)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// runSetup prompts for the password prefix and stores it in the keychain.
func runSetup(store keyring.PrefixStore, name string) error {
	fmt.Printf("Setting up credentials for VPN: %s\n", name)
	fmt.Println("These will be stored securely in your system keychain.")

	prefix, err := prompt.Password("Password prefix")
	if err != nil {
		return err
	}
	if prefix == "" {
		return errors.New("password prefix cannot be empty")
	}

	if err := store.Save(name, prefix); err != nil {
		return err
	}

	fmt.Println("Credentials stored securely in keychain.")
	return nil
}

// runTest performs a single token-prompted connect with the stored prefix.
func runTest(ctx context.Context, cfg *config.Config, store keyring.PrefixStore, name string) error {
	prefix, err := store.Get(name)
	if err != nil {
		return fmt.Errorf("no stored credentials (run --setup first): %w", err)
	}

	fmt.Println("Testing connection with stored credentials...")
	token, err := prompt.Token(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if err := newSession(cfg).Connect(ctx, name, prefix+token); err != nil {
		return fmt.Errorf("test connection failed: %w", err)
	}

	fmt.Println("Test connection successful.")
	return nil
}

// runMonitor starts the reconnect loop until interrupted.
func runMonitor(ctx context.Context, cfg *config.Config, store keyring.PrefixStore, name string, intervalSeconds int) error {
	runner := bridge.NewOsascript()
	client := tunnelblick.NewClientWithApp(runner, cfg.App)

	mon := monitor.New(
		monitor.Config{
			ConfigName:    name,
			CheckInterval: time.Duration(intervalSeconds) * time.Second,
		},
		client,
		newSession(cfg),
		store,
		stdinTokens{},
		netcheck.NewPing(cfg.PingHost, cfg.PingTimeout()),
	)

	fmt.Printf("Starting VPN monitor for %q (interval: %ds). Press Ctrl+C to stop.\n", name, intervalSeconds)
	return mon.Run(ctx)
}

func newSession(cfg *config.Config) *session.Session {
	runner := bridge.NewOsascript()
	client := tunnelblick.NewClientWithApp(runner, cfg.App)
	prompter := dialog.NewSystemEvents(runner, dialog.Options{
		Process:     cfg.App,
		WindowTitle: cfg.LoginWindowTitle,
		Attempts:    cfg.DialogAttempts,
		Delay:       cfg.DialogDelay(),
	})
	return session.New(client, prompter, session.Options{
		ConnectPolls:    cfg.ConnectPolls,
		DisconnectPolls: cfg.DisconnectPolls,
	})
}

// stdinTokens reads one-time tokens interactively from the terminal.
type stdinTokens struct{}

func (stdinTokens) Token(_ context.Context) (string, error) {
	return prompt.Token(os.Stdin, os.Stdout)
}
