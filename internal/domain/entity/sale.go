package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a store-scoped sale. Creation reserves each line's quantity
// against the store ledger; completion converts the reservation into an
// on-hand decrement. Payments are outside this service.
type Sale struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	StoreID     string          `json:"store_id"`
	SaleNumber  string          `json:"sale_number"`
	Status      SaleStatus      `json:"status"`
	Total       decimal.Decimal `json:"total"`
	CreatedBy   string          `json:"created_by"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Items []SaleItem `json:"items,omitempty"`
}

// SaleItem is one product line of a sale.
type SaleItem struct {
	ID        string          `json:"id"`
	SaleID    string          `json:"sale_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}
