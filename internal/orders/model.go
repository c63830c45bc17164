package orders

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/userjourney-io/journeylog-backend/pkg/enums"
)

// Order is a customer order as recorded by the storefront.
type Order struct {
	ID               int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID       int64             `gorm:"not null" json:"customer_id"`
	Status           enums.OrderStatus `gorm:"type:text;not null" json:"status"`
	Total            decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"total"`
	BillingFirstName string            `json:"billing_first_name"`
	BillingLastName  string            `json:"billing_last_name"`
	BillingEmail     string            `json:"billing_email"`
	CustomerNote     string            `json:"customer_note"`
	PlacedAt         time.Time         `gorm:"not null" json:"placed_at"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName maps the model to the orders table.
func (Order) TableName() string {
	return "orders"
}

// BillingName joins the billing name parts for display.
func (o Order) BillingName() string {
	switch {
	case o.BillingFirstName == "":
		return o.BillingLastName
	case o.BillingLastName == "":
		return o.BillingFirstName
	default:
		return o.BillingFirstName + " " + o.BillingLastName
	}
}

// PurchaserStats is the aggregated purchase profile of one customer.
type PurchaserStats struct {
	CustomerID int64           `json:"customer_id"`
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}
