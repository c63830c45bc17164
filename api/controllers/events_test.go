package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userjourney-io/journeylog-backend/internal/ingest"
	"github.com/userjourney-io/journeylog-backend/internal/journal"
)

func TestRecordEventAccepted(t *testing.T) {
	db := setupControllerDB(t)
	journalRepo := journal.NewRepository(db)
	recorder := ingest.NewRecorder(journalRepo, nil, nil)

	body := `{"user_id":7,"product_id":42,"product_name":"Trail Pack","action":"added_to_cart"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	resp := httptest.NewRecorder()
	RecordEvent(recorder, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusAccepted, resp.Code)

	count, err := journalRepo.Count(req.Context(), journal.Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecordEventAcceptsAnonymousVisitor(t *testing.T) {
	db := setupControllerDB(t)
	journalRepo := journal.NewRepository(db)
	recorder := ingest.NewRecorder(journalRepo, nil, nil)

	body := `{"product_id":42,"product_name":"Trail Pack","action":"viewed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	resp := httptest.NewRecorder()
	RecordEvent(recorder, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusAccepted, resp.Code)

	count, err := journalRepo.Count(req.Context(), journal.Filters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRecordEventRejectsInvalidPayload(t *testing.T) {
	db := setupControllerDB(t)
	recorder := ingest.NewRecorder(journal.NewRepository(db), nil, nil)

	cases := map[string]string{
		"not json":       `{"user_id":`,
		"negative user":  `{"user_id":-1,"product_id":42,"action":"viewed"}`,
		"unknown action": `{"user_id":7,"product_id":42,"action":"refunded"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
			resp := httptest.NewRecorder()
			RecordEvent(recorder, nil).ServeHTTP(resp, req)

			require.Equal(t, http.StatusBadRequest, resp.Code)
			code, _ := decodeErrorEnvelope(t, resp)
			assert.Equal(t, "VALIDATION_ERROR", code)
		})
	}
}

func TestHealthLive(t *testing.T) {
	cfg := newHealthConfig()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, cfg.App.Env, resp.Header().Get("X-JourneyLog-Env"))
}
