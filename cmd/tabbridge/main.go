// Package main provides the tabbridge command: it opens a page in a
// Playwright-driven overlay window and lets you drive the bridge from a
// console or a terminal UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/entrhq/tabbridge/pkg/bridge"
	appconfig "github.com/entrhq/tabbridge/pkg/config"
	"github.com/entrhq/tabbridge/pkg/console"
	"github.com/entrhq/tabbridge/pkg/logging"
	"github.com/entrhq/tabbridge/pkg/transport/browser"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	URL          string
	Origin       string
	Color        string
	UserAgent    string
	CustomHeader string
	RunFile      string
	Settings     string
	Headless     bool
	Install      bool
	TUI          bool
	Debug        bool
	ShowVersion  bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("tabbridge v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		cancel()
		log.Printf("tabbridge: %v", err)
		os.Exit(1)
	}
	cancel()
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.URL, "url", "", "Page to open on start")
	flag.StringVar(&cfg.Origin, "origin", "", "Request a message channel for this origin after opening")
	flag.StringVar(&cfg.Color, "color", "", "Toolbar color as #RRGGBB or #AARRGGBB")
	flag.StringVar(&cfg.UserAgent, "user-agent", "", "User agent passed to the page")
	flag.StringVar(&cfg.CustomHeader, "header", "", "Custom header value passed to the page")
	flag.StringVar(&cfg.RunFile, "config", "", "Path to a run file (YAML)")
	flag.StringVar(&cfg.Settings, "settings", "", "Path to the settings store (default ~/.tabbridge/config.json)")
	flag.BoolVar(&cfg.Headless, "headless", false, "Run Chromium without a window")
	flag.BoolVar(&cfg.Install, "install", false, "Install the Playwright driver and browsers first")
	flag.BoolVar(&cfg.TUI, "tui", false, "Use the full-screen terminal UI")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tabbridge - overlay browser bridge\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tabbridge [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabbridge -url https://example.com/game -origin https://example.com\n")
		fmt.Fprintf(os.Stderr, "  tabbridge -config session.yaml -tui\n")
	}

	flag.Parse()
	return cfg
}

func run(ctx context.Context, cli *CLIConfig) error {
	plan, err := loadPlan(cli)
	if err != nil {
		return fmt.Errorf("failed to load run file: %w", err)
	}

	if err := appconfig.Initialize(cli.Settings); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	bcfg := plan.apply(appconfig.BridgeConfig(appconfig.Global()))
	if cli.Debug {
		bcfg.DebugLogging = true
	}

	// Falls back to stderr when the log file cannot be opened
	logger, _ := logging.NewLogger("tabbridge")
	defer logger.Close()
	logger.SetDebug(bcfg.DebugLogging)

	transport := browser.NewTransport(
		browser.WithHeadless(plan.Headless),
		browser.WithInstall(cli.Install),
		browser.WithScheme(bcfg.Scheme),
		browser.WithLogger(logger.With("browser")),
	)
	if err := transport.Start(); err != nil {
		logger.Warnf("Overlay window unavailable, pages open in the system browser: %v", err)
	}
	defer transport.Shutdown()

	queue := console.NewQueue(console.DefaultQueueSize)
	color := isatty.IsTerminal(os.Stdout.Fd())

	b, err := bridge.New(transport,
		bridge.WithConfig(bcfg),
		bridge.WithObserver(console.NewFeed(queue.Push, color)),
		bridge.WithLauncher(browser.NewSystemLauncher()),
		bridge.WithLogger(logger.With("bridge")),
	)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}
	b.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Bridge shutdown: %v", err)
		}
	}()

	session := b.NewSession()
	defer session.Release()
	commander := console.NewCommander(b, session)

	if err := plan.start(ctx, commander, queue); err != nil {
		return err
	}

	if cli.TUI {
		return console.RunTUI(ctx, commander, queue)
	}
	err = console.NewConsole(commander, queue).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
