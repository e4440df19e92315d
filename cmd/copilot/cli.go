package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/overmind-labs/sc2copilot/internal/config"
	apperrors "github.com/overmind-labs/sc2copilot/internal/errors"
	"github.com/overmind-labs/sc2copilot/internal/histlog"
	"github.com/overmind-labs/sc2copilot/internal/notify"
	"github.com/overmind-labs/sc2copilot/internal/ocrclient"
	"github.com/overmind-labs/sc2copilot/internal/orchestrator"
	"github.com/overmind-labs/sc2copilot/internal/reminder"
	"github.com/overmind-labs/sc2copilot/internal/reminder/commander"
	"github.com/overmind-labs/sc2copilot/internal/screen"
	"github.com/overmind-labs/sc2copilot/internal/server"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:           "copilot",
		Usage:          "StarCraft II co-op assistant",
		Version:        Version,
		DefaultCommand: "run",
		Commands: []*cli.Command{
			runCmd(),
			historyCmd(),
			regionsCmd(),
			commandersCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runCmd starts the capture loop and the HTTP/WebSocket server.
func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Start watching the game and serving the overlay API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
}

func run(cfg *config.Config) error {
	regions := screen.DefaultRegions(cfg.ScreenWidth, cfg.ScreenHeight)
	frames := screen.NewCapturer(regions)

	ocr, err := ocrclient.New(ocrclient.Options{TessdataPrefix: cfg.TesseractPath})
	if err != nil {
		return err
	}
	defer func() { _ = ocr.Close() }()

	toggle := notify.NewSwitchable(notify.NewRetrying(notify.NewDesktop()), cfg.NotificationsOn)

	engineOpts := []reminder.Option{}

	tips, err := commander.Load(cfg.CommanderDataPath)
	if err != nil {
		slog.Warn("commander data unavailable, tips disabled", "path", cfg.CommanderDataPath, "error", err)
	} else {
		engineOpts = append(engineOpts, reminder.WithTips(tips))
	}

	if cfg.HistoryDBPath != "" {
		store, err := histlog.Open(cfg.HistoryDBPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		engineOpts = append(engineOpts, reminder.WithSink(store))
	}

	engine := reminder.NewEngine(orchestrator.EngineConfig(cfg), toggle, engineOpts...)
	mgr := orchestrator.NewManager(cfg, frames, ocr, engine, toggle)
	srv := server.New(mgr)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr.Start(ctx)

	httpServer := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     srv.Handler(),
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("copilot server starting", "http", cfg.HTTPAddr, "mode", cfg.Mode, "commander", cfg.Commander)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	mgr.Stop()
	slog.Info("shutdown complete")
	return nil
}

// historyCmd prints recent advisories from the durable history store.
func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print recent advisories from the history database",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 50, Usage: "Max advisories to print"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.HistoryDBPath == "" {
				return apperrors.New(apperrors.CodeConfigInvalid, "SC2COPILOT_HISTORY_DB_PATH is not set")
			}

			store, err := histlog.Open(cfg.HistoryDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			advisories, err := store.Recent(c.Int("limit"))
			if err != nil {
				return err
			}
			return outputJSON(advisories)
		},
	}
}

// regionsCmd prints the capture rectangles for a screen resolution.
func regionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "regions",
		Usage: "Print capture regions scaled to a resolution",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: 1920, Usage: "Screen width in pixels"},
			&cli.IntFlag{Name: "height", Value: 1080, Usage: "Screen height in pixels"},
		},
		Action: func(c *cli.Context) error {
			return outputJSON(screen.DefaultRegions(c.Int("width"), c.Int("height")))
		},
	}
}

// commandersCmd lists the commanders with tip data.
func commandersCmd() *cli.Command {
	return &cli.Command{
		Name:  "commanders",
		Usage: "List commanders with tip data",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Value: "data/commanders.json", Usage: "Path to commander data"},
		},
		Action: func(c *cli.Context) error {
			tips, err := commander.Load(c.String("data"))
			if err != nil {
				return err
			}
			return outputJSON(tips.Commanders())
		},
	}
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
