package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mobilityiq/mobilityiq/internal/duckdb"
	"github.com/mobilityiq/mobilityiq/internal/model"
	"github.com/mobilityiq/mobilityiq/internal/planner"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/socketrpc"
	"github.com/mobilityiq/mobilityiq/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var socketPath string
	var logFile string
	var local bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/mobilityiq/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override socket path to connect to the mobilityiq service")
	flag.StringVar(&logFile, "log-file", "", "write debug logs to this file")
	flag.BoolVar(&local, "local", false, "run with an embedded service instead of connecting to one")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("MobilityIQ CLI - Planning Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if local {
		cfg.Local = true
	}

	if err := runTUI(cfg, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig, logFile string) error {
	log, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	configDir := filepath.Join(os.Getenv("HOME"), ".config", "mobilityiq")
	if err := tui.InitializeSkin(cfg.Skin, configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load skin '%s': %v (using default)\n", cfg.Skin, err)
	}

	var backend model.PlannerAPI
	if cfg.Local {
		store, err := duckdb.NewStore(log.Named("duckdb"))
		if err != nil {
			return fmt.Errorf("failed to initialize catalog: %w", err)
		}
		defer store.Close()
		backend = planner.NewService(session.NewState(), store, report.NewExporter(0), log.Named("planner"))
	} else {
		client, err := socketrpc.Dial(cfg.SocketPath)
		if err != nil {
			return fmt.Errorf("cannot connect to mobilityiq service at %s: %w\nIs the mobilityiq service running? Start it with: mobilityiq serve (or run with --local)", cfg.SocketPath, err)
		}
		defer client.Close()
		backend = client
	}

	app := tui.NewApp(backend, tui.Options{
		Interval:      cfg.UpdateInterval,
		ReverseScroll: cfg.ReverseScrollWheel,
		UploadDir:     cfg.UploadDir,
		Version:       version,
		User:          cfg.User,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// newLogger returns a no-op logger unless path is set; the terminal belongs
// to the TUI.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log, nil
}
