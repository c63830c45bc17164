package reports

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/userjourney-io/journeylog-backend/internal/journal"
	"github.com/userjourney-io/journeylog-backend/internal/orders"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS journey_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL DEFAULT '',
  product_tags TEXT NOT NULL DEFAULT '',
  product_categories TEXT NOT NULL DEFAULT '',
  action TEXT NOT NULL,
  occurred_at DATETIME NOT NULL,
  created_at DATETIME
);`
	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customer_id INTEGER NOT NULL,
  status TEXT NOT NULL,
  total NUMERIC NOT NULL DEFAULT 0,
  billing_first_name TEXT NOT NULL DEFAULT '',
  billing_last_name TEXT NOT NULL DEFAULT '',
  billing_email TEXT NOT NULL DEFAULT '',
  customer_note TEXT NOT NULL DEFAULT '',
  placed_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(events).Error)
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(`DELETE FROM journey_events`).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

func newTestService(t *testing.T, pageSize int) (*Service, journal.Repository, orders.Repository) {
	t.Helper()

	db := setupReportsTestDB(t)
	journalRepo := journal.NewRepository(db)
	ordersRepo := orders.NewRepository(db)
	return NewService(journalRepo, ordersRepo, nil, nil, pageSize, nil), journalRepo, ordersRepo
}

func seedEvent(t *testing.T, repo journal.Repository, userID, productID int64, action enums.JourneyAction, at time.Time) {
	t.Helper()

	_, err := repo.Append(context.Background(), &journal.Event{
		UserID:     userID,
		ProductID:  productID,
		Action:     action,
		OccurredAt: at,
	})
	require.NoError(t, err)
}

func seedOrder(t *testing.T, repo orders.Repository, customerID int64, status enums.OrderStatus, total string, placed time.Time) {
	t.Helper()

	_, err := repo.Create(context.Background(), &orders.Order{
		CustomerID: customerID,
		Status:     status,
		Total:      decimal.RequireFromString(total),
		PlacedAt:   placed,
	})
	require.NoError(t, err)
}

func mustParse(t *testing.T, values url.Values) FilterCriteria {
	t.Helper()

	criteria, err := ParseFilters(values)
	require.NoError(t, err)
	return criteria
}

func TestUserJourneyEmptyStore(t *testing.T) {
	svc, _, _ := newTestService(t, 10)

	report, err := svc.UserJourney(context.Background(), mustParse(t, url.Values{}))
	require.NoError(t, err)

	assert.Empty(t, report.Rows)
	assert.Equal(t, int64(0), report.TotalCount)
	assert.Equal(t, 0, report.Page.TotalPages)
	assert.False(t, report.Page.HasMultiplePages)
	assert.Nil(t, report.TopPurchaser)
	assert.Equal(t, NoDataSummary, report.Summary)
}

func TestUserJourneyWithTopPurchaser(t *testing.T) {
	svc, journalRepo, ordersRepo := newTestService(t, 10)
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	seedEvent(t, journalRepo, 1, 100, enums.JourneyActionViewed, base)
	seedEvent(t, journalRepo, 2, 101, enums.JourneyActionPurchased, base.Add(time.Hour))

	seedOrder(t, ordersRepo, 2, enums.OrderStatusCompleted, "30.00", base)
	seedOrder(t, ordersRepo, 2, enums.OrderStatusCompleted, "20.00", base.Add(time.Hour))
	seedOrder(t, ordersRepo, 1, enums.OrderStatusCompleted, "99.00", base)

	report, err := svc.UserJourney(ctx, mustParse(t, url.Values{}))
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, int64(2), report.Rows[0].UserID)
	assert.Equal(t, int64(2), report.TotalCount)
	assert.Equal(t, 1, report.Page.TotalPages)
	assert.Empty(t, report.Summary)

	require.NotNil(t, report.TopPurchaser)
	assert.Equal(t, int64(2), report.TopPurchaser.CustomerID)
	assert.Equal(t, int64(2), report.TopPurchaser.OrderCount)
	assert.True(t, report.TopPurchaser.TotalSpent.Equal(decimal.RequireFromString("50.00")))
}

func TestUserJourneyTopPurchaserSpansAllOrders(t *testing.T) {
	svc, journalRepo, ordersRepo := newTestService(t, 10)
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	seedEvent(t, journalRepo, 1, 100, enums.JourneyActionViewed, base)

	// Customer 5's orders were both refunded; they still lead the headline.
	seedOrder(t, ordersRepo, 5, enums.OrderStatusRefunded, "60.00", base)
	seedOrder(t, ordersRepo, 5, enums.OrderStatusRefunded, "40.00", base.Add(time.Hour))
	seedOrder(t, ordersRepo, 6, enums.OrderStatusCompleted, "10.00", base)

	report, err := svc.UserJourney(ctx, mustParse(t, url.Values{}))
	require.NoError(t, err)
	require.NotNil(t, report.TopPurchaser)
	assert.Equal(t, int64(5), report.TopPurchaser.CustomerID)
	assert.Equal(t, int64(2), report.TopPurchaser.OrderCount)

	// Narrowing the event list does not narrow the headline.
	values := url.Values{}
	values.Set(ParamUserID, "1")
	values.Set(ParamStartDate, "2025-08-10")
	values.Set(ParamEndDate, "2025-08-10")
	narrowed, err := svc.UserJourney(ctx, mustParse(t, values))
	require.NoError(t, err)
	require.NotNil(t, narrowed.TopPurchaser)
	assert.Equal(t, int64(5), narrowed.TopPurchaser.CustomerID)
}

func TestUserJourneyPagination(t *testing.T) {
	svc, journalRepo, _ := newTestService(t, 2)
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedEvent(t, journalRepo, int64(i+1), 100, enums.JourneyActionViewed, base.Add(time.Duration(i)*time.Minute))
	}

	values := url.Values{}
	values.Set(ParamJourneyPage, "2")
	report, err := svc.UserJourney(ctx, mustParse(t, values))
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, int64(3), report.Rows[0].UserID)
	assert.Equal(t, 3, report.Page.TotalPages)
	assert.True(t, report.Page.HasMultiplePages)

	// A page past the end keeps its number and comes back empty.
	values.Set(ParamJourneyPage, "99")
	beyond, err := svc.UserJourney(ctx, mustParse(t, values))
	require.NoError(t, err)
	assert.Empty(t, beyond.Rows)
	assert.Equal(t, 99, beyond.Page.CurrentPage)
	assert.Equal(t, 3, beyond.Page.TotalPages)
	assert.Equal(t, NoDataSummary, beyond.Summary)
}

func TestReturningBuyersReport(t *testing.T) {
	svc, journalRepo, _ := newTestService(t, 10)
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedEvent(t, journalRepo, 7, 100, enums.JourneyActionViewed, base.Add(time.Duration(i)*time.Minute))
	}
	seedEvent(t, journalRepo, 7, 100, enums.JourneyActionPurchased, base.Add(time.Hour))
	seedEvent(t, journalRepo, 9, 101, enums.JourneyActionViewed, base)

	report, err := svc.ReturningBuyers(ctx, mustParse(t, url.Values{}))
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(7), report.Rows[0].UserID)
	assert.Equal(t, int64(4), report.Rows[0].EventCount)
	assert.Equal(t, int64(1), report.TotalCount)
	assert.Empty(t, report.Summary)

	emptySvc, _, _ := newTestService(t, 10)
	empty, err := emptySvc.ReturningBuyers(ctx, mustParse(t, url.Values{}))
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
	assert.Equal(t, NoDataSummary, empty.Summary)
}

func TestConversionDateRangeAndFunnel(t *testing.T) {
	svc, journalRepo, _ := newTestService(t, 10)
	ctx := context.Background()

	inside := time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC)
	outside := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	seedEvent(t, journalRepo, 1, 100, enums.JourneyActionViewed, inside)
	seedEvent(t, journalRepo, 1, 100, enums.JourneyActionAddedToCart, inside.Add(time.Minute))
	seedEvent(t, journalRepo, 1, 100, enums.JourneyActionPurchased, inside.Add(2*time.Minute))
	seedEvent(t, journalRepo, 2, 101, enums.JourneyActionViewed, outside)

	values := url.Values{}
	values.Set(ParamStartDate, "2025-08-01")
	values.Set(ParamEndDate, "2025-08-31")

	report, err := svc.Conversion(ctx, mustParse(t, values))
	require.NoError(t, err)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, int64(3), report.TotalCount)
	assert.Equal(t, int64(1), report.Funnel.Viewed)
	assert.Equal(t, int64(1), report.Funnel.AddedToCart)
	assert.Equal(t, int64(1), report.Funnel.Purchased)

	// Narrowing to checked-out trims the list but not the funnel.
	values.Set(ParamCheckedOut, "checked_out")
	narrowed, err := svc.Conversion(ctx, mustParse(t, values))
	require.NoError(t, err)
	require.Len(t, narrowed.Rows, 1)
	assert.Equal(t, enums.JourneyActionPurchased, narrowed.Rows[0].Action)
	assert.Equal(t, int64(1), narrowed.TotalCount)
	assert.Equal(t, int64(1), narrowed.Funnel.Viewed)
	assert.Equal(t, int64(1), narrowed.Funnel.AddedToCart)
	assert.Equal(t, int64(1), narrowed.Funnel.Purchased)
}

func TestAllOrdersRefundHandlingAndTotals(t *testing.T) {
	svc, _, ordersRepo := newTestService(t, 10)
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	seedOrder(t, ordersRepo, 1, enums.OrderStatusCompleted, "25.00", base)
	seedOrder(t, ordersRepo, 2, enums.OrderStatusRefunded, "10.00", base.Add(time.Minute))
	seedOrder(t, ordersRepo, 3, enums.OrderStatusCompleted, "15.00", base.Add(2*time.Minute))

	report, err := svc.AllOrders(ctx, mustParse(t, url.Values{}))
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, int64(2), report.TotalCount)
	assert.True(t, report.Totals.TotalSpent.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, report.Totals.TotalRefunded.IsZero())
	assert.True(t, report.Totals.NetTotal.Equal(decimal.RequireFromString("40.00")))

	values := url.Values{}
	values.Set(ParamIncludeRefunded, "true")
	withRefunds, err := svc.AllOrders(ctx, mustParse(t, values))
	require.NoError(t, err)

	require.Len(t, withRefunds.Rows, 3)
	assert.True(t, withRefunds.Totals.TotalSpent.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, withRefunds.Totals.TotalRefunded.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, withRefunds.Totals.NetTotal.Equal(decimal.RequireFromString("30.00")))
}

func TestAllOrdersStatusAndUserFilters(t *testing.T) {
	svc, _, ordersRepo := newTestService(t, 10)
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	seedOrder(t, ordersRepo, 1, enums.OrderStatusCompleted, "25.00", base)
	seedOrder(t, ordersRepo, 1, enums.OrderStatusProcessing, "30.00", base.Add(time.Minute))
	seedOrder(t, ordersRepo, 2, enums.OrderStatusCompleted, "45.00", base.Add(2*time.Minute))

	values := url.Values{}
	values.Set(ParamUserID, "1")
	values.Set(ParamOrderStatus, "processing")

	report, err := svc.AllOrders(ctx, mustParse(t, values))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, int64(1), report.Rows[0].CustomerID)
	assert.Equal(t, enums.OrderStatusProcessing, report.Rows[0].Status)

	empty, err := svc.AllOrders(ctx, mustParse(t, map[string][]string{ParamUserID: {"77"}}))
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
	assert.Equal(t, NoDataSummary, empty.Summary)
}
