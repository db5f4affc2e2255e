package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindcanvas/internal/config"
	"mindcanvas/internal/editor"
	"mindcanvas/internal/handler"
	"mindcanvas/internal/hub"
	"mindcanvas/internal/overlay"
	"mindcanvas/internal/service"
	"mindcanvas/internal/session"
	"mindcanvas/internal/watcher"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if dbPath != "" {
				a.cfg.Database.Path = dbPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := a.logger
	cfg := a.cfg
	log.Info("starting mindcanvas", zap.String("version", version), zap.String("config", a.cfgFile))

	mode, err := editor.ParseExportMode(cfg.Editor.ExportMode)
	if err != nil {
		return err
	}

	eventBus := service.NewEventBus()
	svc, closeDB, err := a.openService(eventBus)
	if err != nil {
		return err
	}
	defer closeDB()

	if cfg.Database.Seed != "" {
		if err := a.seed(ctx, svc, cfg.Database.Seed); err != nil {
			return err
		}
	}

	sseHub := hub.New(log)
	go sseHub.Run(ctx)
	sseHub.Forward(ctx, eventBus)

	debugOverlay := overlay.New(cfg.Debug.Overlay, log)

	sessions := session.NewManager(svc, session.Config{
		IdleTTL:         cfg.Sessions.IdleTTL.Duration(),
		CleanupInterval: cfg.Sessions.CleanupInterval.Duration(),
		Width:           cfg.Editor.Width,
		Height:          cfg.Editor.Height,
		ExportMode:      mode,
		Debounce:        cfg.Editor.Debounce.Duration(),
		Interval:        cfg.Editor.SaveInterval.Duration(),
	}, debugOverlay, eventBus, log)

	if cfg.Debug.WatchConfig && a.cfgFile != "" {
		w := watcher.New(func(path string) {
			reloadConfig(path, debugOverlay, eventBus, log)
		}, log, a.cfgFile)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	router := handler.NewRouter(handler.Routes{
		Mindmaps:   handler.NewMindmapHandler(svc, log),
		Sessions:   handler.NewSessionHandler(sessions, debugOverlay, eventBus, log),
		Events:     sseHub,
		CORSOrigin: cfg.Server.CORSOrigin,
		Logger:     log,
	})

	// No WriteTimeout: it would cut SSE streams
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", zap.Error(err))
	}
	sessions.Shutdown(shutdownCtx)

	log.Info("server stopped")
	return nil
}

// reloadConfig applies the live-reloadable settings of a changed config file
func reloadConfig(path string, ov *overlay.Service, bus *service.EventBus, log *zap.Logger) {
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
		return
	}

	ov.SetEnabled(cfg.Debug.Overlay)
	log.Info("config reloaded", zap.String("path", path), zap.Bool("debug_overlay", cfg.Debug.Overlay))
	bus.Publish(service.Event{
		Type: service.EventConfigReloaded,
		Payload: map[string]interface{}{
			"path":          path,
			"debug_overlay": cfg.Debug.Overlay,
		},
	})
}
