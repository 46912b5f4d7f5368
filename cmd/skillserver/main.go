package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skillsys/internal/config"
	"github.com/udisondev/skillsys/internal/data"
	"github.com/udisondev/skillsys/internal/db"
	"github.com/udisondev/skillsys/internal/ecs"
	"github.com/udisondev/skillsys/internal/gameserver"
	"github.com/udisondev/skillsys/internal/watcher"
)

const ConfigPath = "config/skillserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		reportFatal(err)
		os.Exit(1)
	}
}

func reportFatal(err error) {
	slog.Error("fatal", "error", err)
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("SKILLSYS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSkillServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("skill server starting", "config", cfgPath, "log_level", cfg.LogLevel, "prototypes", cfg.PrototypesDir)

	protos := data.NewPrototypeManager(cfg.PrototypesDir)
	if err := protos.Load(ctx); err != nil {
		return fmt.Errorf("loading prototypes: %w", err)
	}

	var store gameserver.SkillStateStore
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		store = db.NewSkillStateRepository(database.Pool())
	}

	server := gameserver.NewServer(protos, store, func(uid ecs.EntityID, pkt []byte) {
		slog.Debug("skill state packet ready", "entity", uid, "bytes", len(pkt))
	})
	server.Initialize()
	defer server.Shutdown()

	g, gctx := errgroup.WithContext(ctx)

	// nil channel: without the watcher the event loop never reloads.
	var changes <-chan struct{}
	if cfg.WatchTemplates {
		w, err := watcher.New(watcher.Config{Dir: cfg.PrototypesDir, Debounce: cfg.ReloadDebounce})
		if err != nil {
			return fmt.Errorf("creating prototype watcher: %w", err)
		}
		changes = w.Changes()
		g.Go(func() error {
			slog.Info("watching prototypes", "dir", cfg.PrototypesDir, "debounce", cfg.ReloadDebounce)
			return w.Run(gctx)
		})
	}

	g.Go(func() error {
		slog.Info("starting event loop")
		if err := server.Run(gctx, changes); err != nil {
			return fmt.Errorf("event loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		for range cfg.SpawnEntities {
			uid, err := server.SpawnEntity(gctx)
			if err != nil {
				return nil // shutting down
			}
			slog.Info("spawned entity", "entity", uid)
		}
		return nil
	})

	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
