package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/folio/internal/browse"
	"github.com/ppiankov/folio/internal/config"
	"github.com/ppiankov/folio/internal/metrics"
	"github.com/ppiankov/folio/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog HTTP server",
	RunE:  serveAction,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides server.listen)")
}

func serveAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	log := newLogger(cfg)

	m := metrics.New()
	client, err := newNotionClient(cfg, m.ObserveUpstream)
	if err != nil {
		return err
	}
	svc, err := newListing(cfg, client)
	if err != nil {
		return err
	}

	sessions, db, err := openSessions(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	srv, err := server.New(svc, server.Options{
		Addr:         cfg.Server.Listen,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
		SiteTitle:    cfg.Server.SiteTitle,
		StaticDir:    cfg.Server.StaticDir,
		Sessions:     sessions,
		Metrics:      m,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if db != nil {
		go pruneSessions(ctx, db, cfg.Session.TTL.Duration, log)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.Duration)
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// pruneSessions drops stale sessions once per ttl/4 until ctx ends.
func pruneSessions(ctx context.Context, db *browse.SQLiteStore, ttl time.Duration, log *slog.Logger) {
	interval := max(ttl/4, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PruneOlderThan(ctx, ttl)
			if err != nil {
				log.Warn("prune sessions", "error", err)
				continue
			}
			if n > 0 {
				log.Info("pruned sessions", "count", n)
			}
		}
	}
}
