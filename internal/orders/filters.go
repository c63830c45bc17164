package orders

import (
	"time"

	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	"gorm.io/gorm"
)

// Filters narrows order queries. Zero-value fields are ignored.
// Refunded orders are excluded unless IncludeRefunded is set, matching
// how the storefront reports revenue.
type Filters struct {
	CustomerID      *int64
	Start           *time.Time
	End             *time.Time
	Status          *enums.OrderStatus
	IncludeRefunded bool
}

func (f Filters) apply(q *gorm.DB) *gorm.DB {
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Start != nil {
		q = q.Where("placed_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("placed_at <= ?", *f.End)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	} else if !f.IncludeRefunded {
		q = q.Where("status <> ?", enums.OrderStatusRefunded)
	}
	return q
}
