package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/userjourney-io/journeylog-backend/api/responses"
	"github.com/userjourney-io/journeylog-backend/internal/ingest"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
)

const maxEventBody = 64 << 10

// RecordEvent accepts a journey event for ingestion. The response is
// always 202: recording is fire-and-forget, so callers never learn about
// (or wait on) storage problems. Only an unreadable or invalid payload
// is rejected.
func RecordEvent(recorder *ingest.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		envelope, err := ingest.ParseEnvelope(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recorder.Record(r.Context(), envelope.Input(time.Now()))
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}
