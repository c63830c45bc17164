package orders

import (
	"context"

	apperrors "github.com/userjourney-io/journeylog-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository is the storage surface for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) (*Order, error)
	List(ctx context.Context, filters Filters, limit, offset int) ([]Order, error)
	Count(ctx context.Context, filters Filters) (int64, error)
	TopPurchaser(ctx context.Context, filters Filters) (*PurchaserStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *Order) (*Order, error) {
	if order == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "order is required")
	}
	if order.CustomerID <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "customer_id must be positive")
	}
	if !order.Status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown order status")
	}
	if order.Total.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "total cannot be negative")
	}

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "creating order")
	}
	return order, nil
}

func (r *repository) List(ctx context.Context, filters Filters, limit, offset int) ([]Order, error) {
	var rows []Order
	q := filters.apply(r.db.WithContext(ctx).Model(&Order{})).
		Order("placed_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing orders")
	}
	return rows, nil
}

func (r *repository) Count(ctx context.Context, filters Filters) (int64, error) {
	var total int64
	q := filters.apply(r.db.WithContext(ctx).Model(&Order{}))
	if err := q.Count(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.CodeDependency, err, "counting orders")
	}
	return total, nil
}

func (r *repository) TopPurchaser(ctx context.Context, filters Filters) (*PurchaserStats, error) {
	var row PurchaserStats
	q := filters.apply(r.db.WithContext(ctx).Model(&Order{})).
		Select("customer_id, COUNT(*) AS order_count, SUM(total) AS total_spent").
		Group("customer_id").
		Order("order_count DESC, total_spent DESC, customer_id ASC").
		Limit(1)
	result := q.Scan(&row)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, result.Error, "finding top purchaser")
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}
