package journal

import (
	"time"

	"github.com/userjourney-io/journeylog-backend/pkg/enums"
)

// Event is a single append-only journey log entry. Product fields are
// denormalized at write time so reports never need a product lookup.
// UserID 0 marks an anonymous visitor; ProductID 0 an event with no
// product context.
type Event struct {
	ID                int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64               `gorm:"not null" json:"user_id"`
	ProductID         int64               `gorm:"not null" json:"product_id"`
	ProductName       string              `json:"product_name"`
	ProductTags       string              `json:"product_tags"`
	ProductCategories string              `json:"product_categories"`
	Action            enums.JourneyAction `gorm:"type:text;not null" json:"action"`
	OccurredAt        time.Time           `gorm:"not null" json:"occurred_at"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// TableName maps the model to the journey_events table.
func (Event) TableName() string {
	return "journey_events"
}

// UserActivity is an aggregated per-user event count.
type UserActivity struct {
	UserID     int64 `json:"user_id"`
	EventCount int64 `json:"event_count"`
}

// ActionCounts holds per-action totals over a filtered window.
type ActionCounts struct {
	Viewed      int64 `json:"viewed"`
	AddedToCart int64 `json:"added_to_cart"`
	Purchased   int64 `json:"purchased"`
}
