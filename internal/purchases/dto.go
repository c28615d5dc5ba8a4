package purchases

import "encoding/json"

// SaveRequest is the inbound save_purchase payload before validation.
// Products carries the raw line items: either a JSON array or a JSON
// string containing the encoded array; both forms are accepted and
// normalized identically.
//
// Which fields are required depends on the shape of the resolved store:
// client-detail stores need the client_* identity fields, flat-customer
// stores need customer_phone and customer_address plus a caller-supplied
// total_amount (0.0 is valid and signals "compute externally").
type SaveRequest struct {
	TotalAmount float64 `json:"total_amount"`

	ClientPhone    string `json:"client_phone"`
	ClientFullName string `json:"client_full_name"`
	ClientDocument string `json:"client_document"`
	ClientAddress  string `json:"client_address"`
	ClientCity     string `json:"client_city"`
	ClientEmail    string `json:"client_email"`

	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`

	Products json.RawMessage `json:"products"`
}
