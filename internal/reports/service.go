package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/internal/orders"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	"github.com/userjourney-io/journeylog-backend/pkg/logger"
	"github.com/userjourney-io/journeylog-backend/pkg/metrics"
	"github.com/userjourney-io/journeylog-backend/pkg/pagination"
)

// Service assembles the four reports. It is stateless: the same criteria
// against the same store always produce the same result, which is what
// makes the cache layer safe.
type Service struct {
	journal  journal.Repository
	orders   orders.Repository
	cache    *Cache
	metrics  *metrics.ReportMetrics
	pageSize int
	logg     *logger.Logger
}

// NewService wires the report assembler. cache and reportMetrics may be nil.
func NewService(
	journalRepo journal.Repository,
	ordersRepo orders.Repository,
	cache *Cache,
	reportMetrics *metrics.ReportMetrics,
	pageSize int,
	logg *logger.Logger,
) *Service {
	return &Service{
		journal:  journalRepo,
		orders:   ordersRepo,
		cache:    cache,
		metrics:  reportMetrics,
		pageSize: pagination.NormalizePageSize(pageSize),
		logg:     logg,
	}
}

// UserJourney returns the paginated event log with the top purchaser headline.
func (s *Service) UserJourney(ctx context.Context, criteria FilterCriteria) (*JourneyReport, error) {
	ctx = s.reportCtx(ctx, ReportJourney)

	var cached JourneyReport
	if s.fromCache(ctx, ReportJourney, criteria, &cached) {
		return &cached, nil
	}

	started := time.Now()

	filters := criteria.journalFilters()
	total, err := s.journal.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(total, s.pageSize, criteria.JourneyPage)
	rows, err := s.journal.List(ctx, filters, page.PageSize, pagination.Offset(page.CurrentPage, page.PageSize))
	if err != nil {
		return nil, err
	}

	// The headline always names the top purchaser across every order,
	// refunds included, regardless of how the event list is narrowed.
	top, err := s.orders.TopPurchaser(ctx, orders.Filters{IncludeRefunded: true})
	if err != nil {
		return nil, err
	}

	report := &JourneyReport{
		Rows:         rows,
		TotalCount:   total,
		Page:         page,
		TopPurchaser: top,
	}
	if len(rows) == 0 {
		report.Summary = NoDataSummary
	}

	s.finish(ctx, ReportJourney, criteria, report, started)
	return report, nil
}

// ReturningBuyers returns users who generated more than one event.
func (s *Service) ReturningBuyers(ctx context.Context, criteria FilterCriteria) (*ReturningBuyersReport, error) {
	ctx = s.reportCtx(ctx, ReportReturningBuyers)

	var cached ReturningBuyersReport
	if s.fromCache(ctx, ReportReturningBuyers, criteria, &cached) {
		return &cached, nil
	}

	started := time.Now()

	filters := criteria.journalFilters()
	total, err := s.journal.ReturningBuyersCount(ctx, filters)
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(total, s.pageSize, criteria.ReturningBuyersPage)
	rows, err := s.journal.ReturningBuyers(ctx, filters, page.PageSize, pagination.Offset(page.CurrentPage, page.PageSize))
	if err != nil {
		return nil, err
	}

	report := &ReturningBuyersReport{
		Rows:       rows,
		TotalCount: total,
		Page:       page,
	}
	if len(rows) == 0 {
		report.Summary = NoDataSummary
	}

	s.finish(ctx, ReportReturningBuyers, criteria, report, started)
	return report, nil
}

// Conversion returns the filtered event list with funnel counts over the
// same window.
func (s *Service) Conversion(ctx context.Context, criteria FilterCriteria) (*ConversionReport, error) {
	ctx = s.reportCtx(ctx, ReportConversion)

	var cached ConversionReport
	if s.fromCache(ctx, ReportConversion, criteria, &cached) {
		return &cached, nil
	}

	started := time.Now()

	filters := criteria.journalFilters()
	total, err := s.journal.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(total, s.pageSize, criteria.ConversionPage)
	rows, err := s.journal.List(ctx, filters, page.PageSize, pagination.Offset(page.CurrentPage, page.PageSize))
	if err != nil {
		return nil, err
	}

	// Funnel counts ignore the checkout split so the three stages stay
	// comparable even when the list is narrowed to one action.
	funnelFilters := filters
	funnelFilters.Checkout = enums.CheckoutFilterAll
	funnel, err := s.journal.CountsByAction(ctx, funnelFilters)
	if err != nil {
		return nil, err
	}

	report := &ConversionReport{
		Rows:       rows,
		TotalCount: total,
		Page:       page,
		Funnel:     funnel,
	}
	if len(rows) == 0 {
		report.Summary = NoDataSummary
	}

	s.finish(ctx, ReportConversion, criteria, report, started)
	return report, nil
}

// AllOrders returns the paginated order list with page-local totals.
func (s *Service) AllOrders(ctx context.Context, criteria FilterCriteria) (*AllOrdersReport, error) {
	ctx = s.reportCtx(ctx, ReportAllOrders)

	var cached AllOrdersReport
	if s.fromCache(ctx, ReportAllOrders, criteria, &cached) {
		return &cached, nil
	}

	started := time.Now()

	filters := criteria.orderFilters()
	total, err := s.orders.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	page := pagination.Paginate(total, s.pageSize, criteria.OrdersPage)
	rows, err := s.orders.List(ctx, filters, page.PageSize, pagination.Offset(page.CurrentPage, page.PageSize))
	if err != nil {
		return nil, err
	}

	report := &AllOrdersReport{
		Rows:       make([]OrderRow, 0, len(rows)),
		TotalCount: total,
		Page:       page,
		Totals:     sumOrderPage(rows),
	}
	for _, order := range rows {
		report.Rows = append(report.Rows, OrderRow{
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			BillingName:  order.BillingName(),
			BillingEmail: order.BillingEmail,
			Status:       order.Status,
			Notes:        order.CustomerNote,
			Total:        order.Total,
			PlacedAt:     order.PlacedAt,
		})
	}
	if len(rows) == 0 {
		report.Summary = NoDataSummary
	}

	s.finish(ctx, ReportAllOrders, criteria, report, started)
	return report, nil
}

// sumOrderPage totals the visible page, splitting refunded orders out of
// spend the same way the storefront does.
func sumOrderPage(rows []orders.Order) OrderTotals {
	totals := OrderTotals{
		TotalSpent:    decimal.Zero,
		TotalRefunded: decimal.Zero,
		NetTotal:      decimal.Zero,
	}
	for _, order := range rows {
		if order.Status == enums.OrderStatusRefunded {
			totals.TotalRefunded = totals.TotalRefunded.Add(order.Total)
		} else {
			totals.TotalSpent = totals.TotalSpent.Add(order.Total)
		}
	}
	totals.NetTotal = totals.TotalSpent.Sub(totals.TotalRefunded)
	return totals
}

func (s *Service) reportCtx(ctx context.Context, report string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithReport(ctx, report)
}

func (s *Service) fromCache(ctx context.Context, report string, criteria FilterCriteria, target any) bool {
	payload, ok := s.cache.fetch(ctx, report, criteria.Fingerprint())
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discarding undecodable cached report")
		}
		return false
	}
	s.metrics.IncCacheHit(report)
	return true
}

func (s *Service) finish(ctx context.Context, report string, criteria FilterCriteria, result any, started time.Time) {
	s.metrics.IncCacheMiss(report)
	s.metrics.ObserveDuration(report, time.Since(started))

	payload, err := json.Marshal(result)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "report not cacheable")
		}
		return
	}
	s.cache.store(ctx, report, criteria.Fingerprint(), payload)
}
