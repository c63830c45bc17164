package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/userjourney-io/journeylog-backend/api/controllers"
	"github.com/userjourney-io/journeylog-backend/api/middleware"
	"github.com/userjourney-io/journeylog-backend/internal/ingest"
	"github.com/userjourney-io/journeylog-backend/internal/reports"
	"github.com/userjourney-io/journeylog-backend/pkg/config"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	reportsService *reports.Service,
	recorder *ingest.Recorder,
	metricsGatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Get("/journey", controllers.UserJourneyReport(reportsService, logg))
			r.Get("/returning-buyers", controllers.ReturningBuyersReport(reportsService, logg))
			r.Get("/conversion", controllers.ConversionReport(reportsService, logg))
			r.Get("/orders", controllers.AllOrdersReport(reportsService, logg))
		})
		r.Post("/events", controllers.RecordEvent(recorder, logg))
	})

	return r
}
