package journal

import (
	"time"

	"github.com/userjourney-io/journeylog-backend/pkg/enums"
	"gorm.io/gorm"
)

// Filters narrows journey event queries. Zero-value fields are ignored.
// List and Count share the same predicate application so page contents
// and totals can never disagree.
type Filters struct {
	UserID   *int64
	Start    *time.Time
	End      *time.Time
	Checkout enums.CheckoutFilter
}

func (f Filters) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Start != nil {
		q = q.Where("occurred_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("occurred_at <= ?", *f.End)
	}

	// The checkout split keys off the recorded action: a completed
	// checkout shows up as a purchase, an abandoned one as a cart add.
	switch f.Checkout {
	case enums.CheckoutFilterCheckedOut:
		q = q.Where("action = ?", enums.JourneyActionPurchased)
	case enums.CheckoutFilterNotCheckedOut:
		q = q.Where("action = ?", enums.JourneyActionAddedToCart)
	}

	return q
}
