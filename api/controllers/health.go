package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/userjourney-io/journeylog-backend/api/responses"
	"github.com/userjourney-io/journeylog-backend/pkg/config"
	pkgerrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
)

const envHeader = "X-JourneyLog-Env"

// Pinger is the health-check surface shared by the datastore clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, cacheP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]Pinger{
			"db":    dbP,
			"cache": cacheP,
		}
		for name, pinger := range checks {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" not ready").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
