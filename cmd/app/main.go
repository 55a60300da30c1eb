package main

import (
	"context"
	"lodging/config"
	"lodging/di"
	"lodging/helper"
	"lodging/shared/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const otelShutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	app := di.InitializeApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return app.HTTP.Serve(ctx)
	})

	group.Go(func() error {
		return app.Sweeper.Run(ctx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		group.Go(func() error {
			return app.Payment.Run(ctx)
		})
	} else {
		log.Warn().Msg("Kafka brokers are not configured, payment consumer disabled")
	}

	err := group.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()

	if shutdownErr := app.Otel.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("Failed to flush traces")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped with error")
	}

	log.Info().Msg("Service stopped")
}
