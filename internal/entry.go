// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/othala/internal/collection"
	"github.com/starford/othala/internal/events"
	"github.com/starford/othala/internal/hook"
	"github.com/starford/othala/internal/watch"
)

// Run opens the configured collection and streams its change events as
// JSON lines on stdout until the context is cancelled or a shutdown
// signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.collection == "" {
		return fmt.Errorf("collection name is required")
	}

	cfg := app.config

	// Structured JSON logging on stderr; stdout carries the event stream.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("base", cfg.Storage.Base),
		slog.String("collection", app.collection),
		slog.String("fileext", cfg.Storage.Fileext),
		slog.String("log_level", cfg.App.LogLevel.String()))

	path, err := collection.EnsureDir(cfg.Storage.Base, app.collection)
	if err != nil {
		return fmt.Errorf("bootstrap collection: %w", err)
	}

	var colOpts []collection.Option
	if h := hook.NewCommand(cfg.Hook.Command, logger); h != nil {
		colOpts = append(colOpts, collection.WithHook(h))
	}
	col, err := collection.Open(path, cfg.Storage.Fileext, cfg.Storage.Encoding, colOpts...)
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}

	broker := events.NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the collection directory.
	g.Go(func() error {
		return watch.Watch(gCtx, col, logger, broker)
	})

	// Print events to stdout.
	g.Go(func() error {
		sub := broker.Subscribe()
		defer broker.Unsubscribe(sub)
		enc := json.NewEncoder(os.Stdout)
		for {
			select {
			case <-gCtx.Done():
				return nil
			case ev, ok := <-sub:
				if !ok {
					return nil
				}
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("encode event: %w", err)
				}
			}
		}
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watch stopped")
	return nil
}
