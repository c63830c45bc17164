package reports

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/internal/orders"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	"github.com/userjourney-io/journeylog-backend/pkg/pagination"
)

// Report names, used for cache keys and metric labels.
const (
	ReportJourney         = "journey"
	ReportReturningBuyers = "returning_buyers"
	ReportConversion      = "conversion"
	ReportAllOrders       = "all_orders"
)

// NoDataSummary is returned when a report matched nothing.
const NoDataSummary = "no data"

// JourneyReport is the paginated event log plus the top purchaser headline.
type JourneyReport struct {
	Rows         []journal.Event        `json:"rows"`
	TotalCount   int64                  `json:"total_count"`
	Page         pagination.PageInfo    `json:"page"`
	TopPurchaser *orders.PurchaserStats `json:"top_purchaser,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
}

// ReturningBuyersReport lists users with more than one recorded event.
type ReturningBuyersReport struct {
	Rows       []journal.UserActivity `json:"rows"`
	TotalCount int64                  `json:"total_count"`
	Page       pagination.PageInfo    `json:"page"`
	Summary    string                 `json:"summary,omitempty"`
}

// ConversionReport is the filtered event list with per-action funnel counts
// over the same window.
type ConversionReport struct {
	Rows       []journal.Event      `json:"rows"`
	TotalCount int64                `json:"total_count"`
	Page       pagination.PageInfo  `json:"page"`
	Funnel     journal.ActionCounts `json:"funnel"`
	Summary    string               `json:"summary,omitempty"`
}

// OrderRow is one order as presented by the all-orders report.
type OrderRow struct {
	OrderID      int64             `json:"order_id"`
	CustomerID   int64             `json:"customer_id"`
	BillingName  string            `json:"billing_name"`
	BillingEmail string            `json:"billing_email"`
	Status       enums.OrderStatus `json:"status"`
	Notes        string            `json:"notes"`
	Total        decimal.Decimal   `json:"total"`
	PlacedAt     time.Time         `json:"placed_at"`
}

// OrderTotals sums the rows on the returned page only.
type OrderTotals struct {
	TotalSpent    decimal.Decimal `json:"total_spent"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	NetTotal      decimal.Decimal `json:"net_total"`
}

// AllOrdersReport is the paginated order list with page totals.
type AllOrdersReport struct {
	Rows       []OrderRow          `json:"rows"`
	TotalCount int64               `json:"total_count"`
	Page       pagination.PageInfo `json:"page"`
	Totals     OrderTotals         `json:"totals"`
	Summary    string              `json:"summary,omitempty"`
}
