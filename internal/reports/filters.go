package reports

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/internal/orders"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
)

// DateLayout is the wire format for report date filters.
const DateLayout = "2006-01-02"

// Query parameter names form a stable external contract; renaming any of
// them breaks saved dashboard links.
const (
	ParamUserID          = "user_id"
	ParamStartDate       = "start_date"
	ParamEndDate         = "end_date"
	ParamCheckedOut      = "checked_out"
	ParamOrderStatus     = "order_status"
	ParamIncludeRefunded = "include_refunded"
	ParamJourneyPage     = "journey_page"
	ParamRBPage          = "rb_page"
	ParamCAPage          = "ca_page"
	ParamAOPage          = "ao_page"
)

// FilterCriteria is the parsed filter state shared by every report.
type FilterCriteria struct {
	UserID          *int64
	Start           *time.Time
	End             *time.Time
	Checkout        enums.CheckoutFilter
	OrderStatus     *enums.OrderStatus
	IncludeRefunded bool

	JourneyPage         int
	ReturningBuyersPage int
	ConversionPage      int
	OrdersPage          int
}

// ParseFilters validates and normalizes the raw query values once, at the
// boundary. Malformed numeric input fails instead of silently coercing to
// zero, so a typo in user_id can never turn into an unfiltered report.
func ParseFilters(values url.Values) (FilterCriteria, error) {
	criteria := FilterCriteria{Checkout: enums.CheckoutFilterAll}

	if raw := strings.TrimSpace(values.Get(ParamUserID)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return criteria, invalidParam(ParamUserID, raw, "must be a positive integer")
		}
		criteria.UserID = &id
	}

	if raw := strings.TrimSpace(values.Get(ParamStartDate)); raw != "" {
		day, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return criteria, invalidParam(ParamStartDate, raw, "expected YYYY-MM-DD")
		}
		criteria.Start = &day
	}

	if raw := strings.TrimSpace(values.Get(ParamEndDate)); raw != "" {
		day, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return criteria, invalidParam(ParamEndDate, raw, "expected YYYY-MM-DD")
		}
		// End of the named day, so the range is inclusive on both sides.
		end := day.Add(24*time.Hour - time.Nanosecond)
		criteria.End = &end
	}

	if criteria.Start != nil && criteria.End != nil && criteria.End.Before(*criteria.Start) {
		return criteria, invalidParam(ParamEndDate, values.Get(ParamEndDate), "end_date is before start_date")
	}

	checkout, err := enums.ParseCheckoutFilter(strings.TrimSpace(values.Get(ParamCheckedOut)))
	if err != nil {
		return criteria, invalidParam(ParamCheckedOut, values.Get(ParamCheckedOut), "must be all, checked_out or not_checked_out")
	}
	criteria.Checkout = checkout

	if raw := strings.TrimSpace(values.Get(ParamOrderStatus)); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return criteria, invalidParam(ParamOrderStatus, raw, "unknown order status")
		}
		criteria.OrderStatus = &status
	}

	if values.Has(ParamIncludeRefunded) {
		raw := strings.TrimSpace(values.Get(ParamIncludeRefunded))
		if raw == "" {
			// A bare flag means on, matching checkbox-style callers.
			criteria.IncludeRefunded = true
		} else {
			include, err := strconv.ParseBool(raw)
			if err != nil {
				return criteria, invalidParam(ParamIncludeRefunded, raw, "must be a boolean")
			}
			criteria.IncludeRefunded = include
		}
	}

	for _, page := range []struct {
		param  string
		target *int
	}{
		{ParamJourneyPage, &criteria.JourneyPage},
		{ParamRBPage, &criteria.ReturningBuyersPage},
		{ParamCAPage, &criteria.ConversionPage},
		{ParamAOPage, &criteria.OrdersPage},
	} {
		value, err := parsePage(values, page.param)
		if err != nil {
			return criteria, err
		}
		*page.target = value
	}

	return criteria, nil
}

func parsePage(values url.Values, param string) (int, error) {
	raw := strings.TrimSpace(values.Get(param))
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(param, raw, "must be an integer")
	}
	if page <= 0 {
		return 1, nil
	}
	return page, nil
}

func invalidParam(param, value, reason string) error {
	return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid %s", param)).
		WithDetails(map[string]any{
			"param":  param,
			"value":  value,
			"reason": reason,
		})
}

// journalFilters projects the criteria onto the journey event store.
func (c FilterCriteria) journalFilters() journal.Filters {
	return journal.Filters{
		UserID:   c.UserID,
		Start:    c.Start,
		End:      c.End,
		Checkout: c.Checkout,
	}
}

// orderFilters projects the criteria onto the order source.
func (c FilterCriteria) orderFilters() orders.Filters {
	return orders.Filters{
		CustomerID:      c.UserID,
		Start:           c.Start,
		End:             c.End,
		Status:          c.OrderStatus,
		IncludeRefunded: c.IncludeRefunded,
	}
}

// Fingerprint returns a stable cache key component for the criteria.
func (c FilterCriteria) Fingerprint() string {
	var b strings.Builder
	if c.UserID != nil {
		fmt.Fprintf(&b, "u=%d;", *c.UserID)
	}
	if c.Start != nil {
		fmt.Fprintf(&b, "s=%d;", c.Start.UnixNano())
	}
	if c.End != nil {
		fmt.Fprintf(&b, "e=%d;", c.End.UnixNano())
	}
	fmt.Fprintf(&b, "co=%s;", c.Checkout)
	if c.OrderStatus != nil {
		fmt.Fprintf(&b, "os=%s;", *c.OrderStatus)
	}
	fmt.Fprintf(&b, "ir=%t;jp=%d;rp=%d;cp=%d;ap=%d",
		c.IncludeRefunded, c.JourneyPage, c.ReturningBuyersPage, c.ConversionPage, c.OrdersPage)
	return b.String()
}
