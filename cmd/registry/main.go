// Command registry serves the groundwater well registry HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/well-registry/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/well-registry/internal/adapter/kafka"
	"github.com/couchcryptid/well-registry/internal/adapter/nwis"
	"github.com/couchcryptid/well-registry/internal/adapter/postgres"
	"github.com/couchcryptid/well-registry/internal/auth"
	"github.com/couchcryptid/well-registry/internal/config"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/lookup"
	"github.com/couchcryptid/well-registry/internal/observability"
	"github.com/couchcryptid/well-registry/internal/registry"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("registry exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	store, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	var aquifers *lookup.LocalAquifers
	if cfg.LocalAquiferPath != "" {
		if aquifers, err = lookup.OpenLocalAquifers(cfg.LocalAquiferPath); err != nil {
			return err
		}
		logger.Info("local aquifer lookup loaded", "path", cfg.LocalAquiferPath, "entries", aquifers.Len())
	}

	opts := registry.Options{
		Fetcher:     nwis.NewClient(cfg.NWISEndpoint, cfg.NWISTimeout, logger, metrics),
		Aquifers:    aquifers,
		NWISAgency:  cfg.NWISAgencyCode,
		PageSizeMax: cfg.PageSizeMax,
	}

	// Change events are feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts.Publisher = publisher
		metrics.EventPublishEnabled.Set(1)
		logger.Info("change events enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("change events disabled")
	}

	svc := registry.New(store, opts, logger, metrics)
	verifier := auth.NewVerifier(cfg.AuthJWTSecret, cfg.SuperuserEmails)
	api := httpadapter.NewHandler(svc, verifier, domain.NewAgencyGroups(cfg.AgencyGroups), logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, store, api, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
