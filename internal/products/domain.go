// Package products exposes the catalog: lookup by SKU or id and the
// active-product listing consumed by sales and search indexing.
package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price carries the list price used when a
// sale does not override unit_price.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
