// Package sales records catalog-backed product sales in the shared
// product_sales table.
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSale is a recorded sale of a single catalog product.
type ProductSale struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	SKU             string          `json:"sku"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RegisterSaleRequest identifies the product by SKU or id, never both.
// UnitPrice overrides the catalog price when set.
type RegisterSaleRequest struct {
	SKU             string   `json:"sku"`
	ProductID       int64    `json:"product_id" validate:"omitempty,gt=0"`
	Quantity        int      `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	CustomerPhone   string   `json:"customer_phone" validate:"required"`
	CustomerAddress string   `json:"customer_address" validate:"required,min=5"`
}
