// Package search fronts the Azure AI Search product index: hybrid
// text+vector queries, SKU lookups and index maintenance.
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Document is a product as stored in the search index. Embedding is only
// populated on upload.
type Document struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SKU           string    `json:"sku"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	Embedding     []float32 `json:"embedding,omitempty"`
}

// Result is a scored index hit.
type Result struct {
	Document
	Score float64 `json:"score"`
}

// TextQuery carries a free-text product search with optional filters.
type TextQuery struct {
	Text     string
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
	Category string
	Top      int
}

// StoreIDFromName derives the stable store identifier: the first 16 hex
// characters of the SHA-256 of the trimmed, lowercased store name.
func StoreIDFromName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
