package purchases

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ClientDetails is the structured client document persisted in the
// client_json column of client-detail tables. The JSON keys follow the
// column's established document format.
type ClientDetails struct {
	Address  string  `json:"direccion"`
	City     string  `json:"ciudad"`
	Document string  `json:"cedula"`
	FullName string  `json:"nombre_completo"`
	Phone    string  `json:"celular"`
	Email    *string `json:"correo"`
}

// ValidatedPurchase is the outcome of validation: a payload normalized for
// persistence. Products holds the canonical JSON array of line items.
type ValidatedPurchase struct {
	Shape       Shape
	TotalAmount decimal.Decimal
	Products    json.RawMessage

	// client-detail shape
	ClientPhone string
	Client      *ClientDetails

	// flat-customer shape
	CustomerPhone   string
	CustomerAddress string
}

// Record is a purchase row as read from storage.
type Record struct {
	ID          int64
	TotalAmount decimal.Decimal
	Products    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// client-detail shape
	ClientPhone string
	ClientJSON  json.RawMessage

	// flat-customer shape
	CustomerPhone   string
	CustomerAddress string
}

// PersistedPurchase is the caller-facing form of a record: timestamps
// normalized to ISO-8601 and the resolved table attached for
// observability.
type PersistedPurchase struct {
	ID              int64           `json:"id"`
	TotalAmount     float64         `json:"total_amount"`
	ClientPhone     string          `json:"client_phone,omitempty"`
	ClientJSON      json.RawMessage `json:"client_json,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	CustomerAddress string          `json:"customer_address,omitempty"`
	Products        json.RawMessage `json:"products"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	Table           string          `json:"table"`
}

func (r Record) toPersisted(table string) PersistedPurchase {
	return PersistedPurchase{
		ID:              r.ID,
		TotalAmount:     r.TotalAmount.InexactFloat64(),
		ClientPhone:     r.ClientPhone,
		ClientJSON:      r.ClientJSON,
		CustomerPhone:   r.CustomerPhone,
		CustomerAddress: r.CustomerAddress,
		Products:        r.Products,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
		Table:           table,
	}
}
