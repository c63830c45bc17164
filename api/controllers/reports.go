package controllers

import (
	"net/http"

	"github.com/userjourney-io/journeylog-backend/api/responses"
	"github.com/userjourney-io/journeylog-backend/internal/reports"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
)

// UserJourneyReport serves the paginated journey event log.
func UserJourneyReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := reports.ParseFilters(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.UserJourney(r.Context(), criteria)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReturningBuyersReport serves users with more than one recorded event.
func ReturningBuyersReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := reports.ParseFilters(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ReturningBuyers(r.Context(), criteria)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ConversionReport serves the filtered event list with funnel counts.
func ConversionReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := reports.ParseFilters(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Conversion(r.Context(), criteria)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// AllOrdersReport serves the paginated order list with page totals.
func AllOrdersReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := reports.ParseFilters(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.AllOrders(r.Context(), criteria)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
