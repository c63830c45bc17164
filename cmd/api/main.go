package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/userjourney-io/journeylog-backend/api/routes"
	"github.com/userjourney-io/journeylog-backend/internal/ingest"
	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/internal/orders"
	"github.com/userjourney-io/journeylog-backend/internal/reports"
	"github.com/userjourney-io/journeylog-backend/pkg/config"
	"github.com/userjourney-io/journeylog-backend/pkg/db"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
	"github.com/userjourney-io/journeylog-backend/pkg/metrics"
	"github.com/userjourney-io/journeylog-backend/pkg/migrate"
	"github.com/userjourney-io/journeylog-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	registry := prometheus.NewRegistry()
	reportMetrics := metrics.NewReportMetrics(registry)
	ingestMetrics := metrics.NewIngestMetrics(registry)

	journalRepo := journal.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	reportCache := reports.NewCache(redisClient, cfg.Reports.CacheTTL, logg)
	reportsService := reports.NewService(journalRepo, ordersRepo, reportCache, reportMetrics, cfg.Reports.PageSize, logg)
	recorder := ingest.NewRecorder(journalRepo, ingestMetrics, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, reportsService, recorder, registry),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(runCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		err = multierr.Append(err, redisClient.Close())
		err = multierr.Append(err, dbClient.Close())
		if err != nil {
			logg.Error(runCtx, "shutdown finished with errors", err)
			os.Exit(1)
		}
		logg.Info(runCtx, "api server stopped")
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
