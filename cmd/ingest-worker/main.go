package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/userjourney-io/journeylog-backend/internal/ingest"
	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/pkg/config"
	"github.com/userjourney-io/journeylog-backend/pkg/db"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
	"github.com/userjourney-io/journeylog-backend/pkg/metrics"
	"github.com/userjourney-io/journeylog-backend/pkg/pubsub"
	"github.com/userjourney-io/journeylog-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "ingest-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "ingest-worker"

	logg = logger.New(logger.Options{
		ServiceName: "ingest-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.JourneySubscription()
	if subscription == nil {
		requireResource(ctx, logg, "journey subscription", errors.New("subscription not configured"))
	}

	ingestMetrics := metrics.NewIngestMetrics(prometheus.DefaultRegisterer)
	recorder := ingest.NewRecorder(journal.NewRepository(dbClient.DB()), ingestMetrics, logg)

	consumer, err := ingest.NewConsumer(subscription, recorder, redisClient, cfg.Ingest.DedupTTL, logg)
	requireResource(ctx, logg, "ingest consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "ingest worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "ingest worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
