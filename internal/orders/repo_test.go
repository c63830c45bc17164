package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

func createTestOrder(t *testing.T, repo Repository, customerID int64, status enums.OrderStatus, total string, placed time.Time) *Order {
	t.Helper()

	order, err := repo.Create(context.Background(), &Order{
		CustomerID:       customerID,
		Status:           status,
		Total:            decimal.RequireFromString(total),
		BillingFirstName: "Test",
		BillingLastName:  "Customer",
		BillingEmail:     "customer@example.com",
		PlacedAt:         placed,
	})
	require.NoError(t, err)
	return order
}

func TestCreateValidation(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &Order{CustomerID: 0, Status: enums.OrderStatusCompleted, PlacedAt: time.Now()})
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeValidation, typed.Code())

	_, err = repo.Create(ctx, &Order{CustomerID: 1, Status: "shipped", PlacedAt: time.Now()})
	require.Error(t, err)

	_, err = repo.Create(ctx, &Order{
		CustomerID: 1,
		Status:     enums.OrderStatusCompleted,
		Total:      decimal.RequireFromString("-10.00"),
		PlacedAt:   time.Now(),
	})
	require.Error(t, err)
}

func TestListFiltersAndOrdering(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	createTestOrder(t, repo, 1, enums.OrderStatusCompleted, "25.00", base)
	createTestOrder(t, repo, 2, enums.OrderStatusProcessing, "40.00", base.Add(time.Hour))
	createTestOrder(t, repo, 1, enums.OrderStatusRefunded, "15.00", base.Add(2*time.Hour))
	createTestOrder(t, repo, 3, enums.OrderStatusCompleted, "60.00", base.Add(3*time.Hour))

	// Refunded orders drop out by default.
	rows, err := repo.List(ctx, Filters{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].CustomerID)

	all, err := repo.List(ctx, Filters{IncludeRefunded: true}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, enums.OrderStatusRefunded, all[1].Status)

	status := enums.OrderStatusProcessing
	byStatus, err := repo.List(ctx, Filters{Status: &status}, 0, 0)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, int64(2), byStatus[0].CustomerID)

	// An explicit status filter wins over the refund exclusion.
	refunded := enums.OrderStatusRefunded
	refundedRows, err := repo.List(ctx, Filters{Status: &refunded}, 0, 0)
	require.NoError(t, err)
	require.Len(t, refundedRows, 1)

	customerID := int64(1)
	mine, err := repo.List(ctx, Filters{CustomerID: &customerID, IncludeRefunded: true}, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	start := base.Add(30 * time.Minute)
	end := base.Add(90 * time.Minute)
	window, err := repo.Count(ctx, Filters{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Equal(t, int64(1), window)
}

func TestListPagination(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createTestOrder(t, repo, int64(i+1), enums.OrderStatusCompleted, "10.00", base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.List(ctx, Filters{}, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, int64(5), first[0].CustomerID)

	second, err := repo.List(ctx, Filters{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, int64(3), second[0].CustomerID)

	beyond, err := repo.List(ctx, Filters{}, 2, 20)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestTopPurchaser(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	none, err := repo.TopPurchaser(ctx, Filters{})
	require.NoError(t, err)
	assert.Nil(t, none)

	base := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	createTestOrder(t, repo, 1, enums.OrderStatusCompleted, "10.00", base)
	createTestOrder(t, repo, 1, enums.OrderStatusCompleted, "20.00", base.Add(time.Minute))
	createTestOrder(t, repo, 2, enums.OrderStatusCompleted, "100.00", base.Add(2*time.Minute))

	top, err := repo.TopPurchaser(ctx, Filters{})
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, int64(1), top.CustomerID)
	assert.Equal(t, int64(2), top.OrderCount)
	assert.True(t, top.TotalSpent.Equal(decimal.RequireFromString("30.00")))

	// Count ties break on spend.
	createTestOrder(t, repo, 2, enums.OrderStatusCompleted, "5.00", base.Add(3*time.Minute))
	top, err = repo.TopPurchaser(ctx, Filters{})
	require.NoError(t, err)
	require.NotNil(t, top)
	assert.Equal(t, int64(2), top.CustomerID)
	assert.True(t, top.TotalSpent.Equal(decimal.RequireFromString("105.00")))
}

func TestBillingName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Order{BillingFirstName: "Ada", BillingLastName: "Lovelace"}.BillingName())
	assert.Equal(t, "Ada", Order{BillingFirstName: "Ada"}.BillingName())
	assert.Equal(t, "Lovelace", Order{BillingLastName: "Lovelace"}.BillingName())
}
