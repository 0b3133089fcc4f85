package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mobilityiq/mobilityiq/internal/duckdb"
	"github.com/mobilityiq/mobilityiq/internal/httpserver"
	"github.com/mobilityiq/mobilityiq/internal/planner"
	"github.com/mobilityiq/mobilityiq/internal/report"
	"github.com/mobilityiq/mobilityiq/internal/session"
	"github.com/mobilityiq/mobilityiq/internal/socketrpc"
	"github.com/mobilityiq/mobilityiq/internal/upload"
)

const shutdownTimeout = 10 * time.Second

// runServer starts the planning service with the HTTP API and the socket
// server, and blocks until SIGINT or SIGTERM.
func runServer(cfg appConfig, log *zap.Logger) error {
	store, err := duckdb.NewStore(log.Named("duckdb"), cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	defer store.Close()

	svc := planner.NewService(session.NewState(), store, report.NewExporter(cfg.ExportLog), log.Named("planner"))

	if cfg.Preload {
		if err := preloadUpload(svc, cfg.UploadDir, cfg.QueryTimeout); err != nil {
			log.Warn("preload upload failed", zap.String("dir", cfg.UploadDir), zap.Error(err))
		}
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, svc, log.Named("http"))
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	sockServer := socketrpc.NewServer(cfg.SocketPath, svc, log.Named("socket"))
	socketUp := true
	if err := sockServer.Start(); err != nil {
		socketUp = false
		log.Warn("failed to start socket server", zap.String("path", cfg.SocketPath), zap.Error(err))
	} else {
		defer sockServer.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(shutdownTimeout)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(cfg, socketUp)
	log.Info("service started",
		zap.Bool("api", cfg.APIEnabled),
		zap.String("api_addr", cfg.APIAddr),
		zap.String("socket", cfg.SocketPath),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("server: errgroup exited with error", zap.Error(err))
	}

	log.Info("service stopped")
	return nil
}

// preloadUpload reads the three network files from dir and hands them to
// the service as if they had been uploaded from the dashboard.
func preloadUpload(svc *planner.Service, dir string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	d, err := upload.ReadDir(ctx, dir)
	if err != nil {
		return err
	}
	_, err = svc.AcceptUpload(d)
	return err
}

func cleanupSocket(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

func printStartupBanner(cfg appConfig, socketUp bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")
	status := func(on bool) string {
		if on {
			return check
		}
		return dot
	}

	lines := []string{
		"",
		"    " + cyan.Bold(true).Render("MobilityIQ") + " " + dim.Render("v"+version),
		"    " + dim.Render("Transit Planning Service"),
		"",
	}
	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "", bold.Render("    Gateway"), "")

	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", status(socketUp), cyan.Render(shortenPath(cfg.SocketPath))))

	lines = append(lines, "", bold.Render("    Config"), "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Preload        %s", status(cfg.Preload), dim.Render(shortenPath(cfg.UploadDir))))

	lines = append(lines,
		"",
		separator,
		"",
		"    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"),
		"",
	)

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
