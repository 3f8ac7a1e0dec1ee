package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpContracts "github.com/sawpanic/selicinsights/internal/http"
	httpserver "github.com/sawpanic/selicinsights/internal/interfaces/http"
	"github.com/sawpanic/selicinsights/internal/interfaces/http/handlers"
	"github.com/sawpanic/selicinsights/internal/persistence"
	"github.com/sawpanic/selicinsights/internal/series"
	"github.com/sawpanic/selicinsights/internal/source"
	"github.com/sawpanic/selicinsights/internal/stream"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		Long:  "Serves the dashboard, the JSON API, /health, /metrics and live updates on /ws",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := httpserver.NewMetricsRegistry()

	rt, err := openRuntime(ctx, cfg, metrics.ObserveBreaker)
	if err != nil {
		return err
	}
	defer rt.Close()

	store := source.NewStore(rt.source, metrics.ObserveRefresh)
	if _, err := store.Refresh(ctx); err != nil {
		return fmt.Errorf("initial data load failed: %w", err)
	}

	hub := stream.NewHub(httpserver.CheckOrigin, metrics.SetStreamClients)
	defer hub.Close()

	publish := func(ds series.Dataset) {
		snap := httpContracts.NewSnapshot(store.SourceName(), ds, time.Now())
		if err := hub.Publish(snap); err != nil {
			log.Warn().Err(err).Msg("Failed to publish snapshot")
		}
	}
	initial, _ := store.Snapshot()
	publish(initial)
	unsubscribe := store.Subscribe(publish)
	defer unsubscribe()

	var dbHealth persistence.RepositoryHealth
	if rt.db.IsEnabled() {
		dbHealth = rt.db.Health()
	}

	srv, err := httpserver.NewServer(cfg.Server, httpserver.Options{
		Deps: handlers.Deps{
			Store:    store,
			DBHealth: dbHealth,
			Clients:  hub.Clients,
			Version:  version,
		},
		Metrics: metrics,
		Hub:     hub,
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if cfg.Source.Kind != source.KindEmbedded {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Run(ctx, cfg.Source.RefreshInterval)
		}()
	}
	if f, ok := rt.source.(*source.File); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.Watch(ctx, func() {
				if _, err := store.Refresh(ctx); err != nil {
					log.Warn().Err(err).Str("path", f.Path()).Msg("Reload after file change failed")
				}
			})
			if err != nil {
				log.Warn().Err(err).Msg("File watcher stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	}

	// Hijacked WebSocket connections are not tracked by http.Server.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	wg.Wait()
	<-errCh
	return err
}
