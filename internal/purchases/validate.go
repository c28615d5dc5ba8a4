package purchases

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/colombiang/sales-mcp/internal/shared"
)

// rawItem is the loosely-typed view of a line item used for checking.
// Fields stay raw so integer-versus-string product ids can be told apart.
type rawItem struct {
	ProductID json.RawMessage `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
	UnitPrice json.RawMessage `json:"unit_price"`
}

// Validate checks the payload against the table shape and returns the
// normalized purchase. Pure function: no I/O, no mutation of req. The
// first violation rejects the whole batch, reporting the offending item
// index and field.
func Validate(shape Shape, req SaveRequest) (*ValidatedPurchase, error) {
	products, items, err := normalizeProducts(req.Products)
	if err != nil {
		return nil, err
	}

	out := &ValidatedPurchase{Shape: shape, Products: products}

	switch shape {
	case ShapeClientDetail:
		if err := validateClientFields(req, out); err != nil {
			return nil, err
		}
		total := decimal.Zero
		for i, item := range items {
			lineTotal, err := validateClientDetailItem(i, item)
			if err != nil {
				return nil, err
			}
			total = total.Add(lineTotal)
		}
		out.TotalAmount = total.Round(2)

	case ShapeFlatCustomer:
		if strings.TrimSpace(req.CustomerPhone) == "" {
			return nil, shared.NewValidationError("customer_phone", "is required")
		}
		if strings.TrimSpace(req.CustomerAddress) == "" {
			return nil, shared.NewValidationError("customer_address", "is required")
		}
		out.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
		out.CustomerAddress = strings.TrimSpace(req.CustomerAddress)

		total, err := monetaryValue("total_amount", req.TotalAmount)
		if err != nil {
			return nil, err
		}
		out.TotalAmount = total

		for i, item := range items {
			if err := validateFlatCustomerItem(i, item); err != nil {
				return nil, err
			}
		}

	default:
		return nil, shared.NewConfigurationError("unknown table shape %q", shape)
	}

	return out, nil
}

// normalizeProducts accepts a JSON array of items or a JSON string that
// encodes one, and returns the compacted array plus its parsed items.
func normalizeProducts(raw json.RawMessage) (json.RawMessage, []rawItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, shared.NewValidationError("products", "is required")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, nil, shared.NewValidationError("products", "is not valid JSON")
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 {
			return nil, nil, shared.NewValidationError("products", "is required")
		}
	}

	var items []rawItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, nil, shared.NewValidationError("products", "must be a JSON array of line items")
	}
	if len(items) == 0 {
		return nil, nil, shared.NewValidationError("products", "must not be empty")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, nil, shared.NewValidationError("products", "is not valid JSON")
	}
	return compact.Bytes(), items, nil
}

func validateClientFields(req SaveRequest, out *ValidatedPurchase) error {
	required := []struct {
		field string
		value string
	}{
		{"client_phone", req.ClientPhone},
		{"client_full_name", req.ClientFullName},
		{"client_document", req.ClientDocument},
		{"client_address", req.ClientAddress},
		{"client_city", req.ClientCity},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return shared.NewValidationError(f.field, "is required")
		}
	}

	out.ClientPhone = strings.TrimSpace(req.ClientPhone)
	out.Client = &ClientDetails{
		Address:  strings.TrimSpace(req.ClientAddress),
		City:     strings.TrimSpace(req.ClientCity),
		Document: strings.TrimSpace(req.ClientDocument),
		FullName: strings.TrimSpace(req.ClientFullName),
		Phone:    out.ClientPhone,
	}
	if email := strings.ToLower(strings.TrimSpace(req.ClientEmail)); email != "" {
		out.Client.Email = &email
	}
	return nil
}

// validateClientDetailItem checks a client-detail line item and returns
// its monetary total (unit_price * quantity).
func validateClientDetailItem(index int, item rawItem) (decimal.Decimal, error) {
	var productID string
	if item.ProductID == nil || json.Unmarshal(item.ProductID, &productID) != nil {
		return decimal.Zero, shared.NewItemValidationError(index, "product_id", "must be a string")
	}
	if strings.TrimSpace(productID) == "" {
		return decimal.Zero, shared.NewItemValidationError(index, "product_id", "must not be empty")
	}

	quantity, err := integerValue(index, "quantity", item.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if quantity <= 0 {
		return decimal.Zero, shared.NewItemValidationError(index, "quantity", "must be greater than 0")
	}

	if item.UnitPrice == nil {
		return decimal.Zero, shared.NewItemValidationError(index, "unit_price", "is required")
	}
	price, err := decimal.NewFromString(string(bytes.TrimSpace(item.UnitPrice)))
	if err != nil {
		return decimal.Zero, shared.NewItemValidationError(index, "unit_price", "must be a number")
	}
	if price.IsNegative() {
		return decimal.Zero, shared.NewItemValidationError(index, "unit_price", "must not be negative")
	}
	if exceedsTwoDecimals(price) {
		return decimal.Zero, shared.NewItemValidationError(index, "unit_price", "must have at most 2 decimal places")
	}

	return price.Mul(decimal.NewFromInt(quantity)), nil
}

func validateFlatCustomerItem(index int, item rawItem) error {
	productID, err := integerValue(index, "product_id", item.ProductID)
	if err != nil {
		return err
	}
	if productID <= 0 {
		return shared.NewItemValidationError(index, "product_id", "must be greater than 0")
	}

	quantity, err := integerValue(index, "quantity", item.Quantity)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.NewItemValidationError(index, "quantity", "must be greater than 0")
	}
	return nil
}

func integerValue(index int, field string, raw json.RawMessage) (int64, error) {
	if raw == nil {
		return 0, shared.NewItemValidationError(index, field, "is required")
	}
	d, err := decimal.NewFromString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0, shared.NewItemValidationError(index, field, "must be an integer")
	}
	if !d.IsInteger() {
		return 0, shared.NewItemValidationError(index, field, "must be an integer")
	}
	return d.IntPart(), nil
}

// monetaryValue rejects values finer than 2 decimal places rather than
// silently truncating them; accepted values are quantized half-up.
func monetaryValue(field string, value float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(value)
	if d.IsNegative() {
		return decimal.Zero, shared.NewValidationError(field, "must not be negative")
	}
	if exceedsTwoDecimals(d) {
		return decimal.Zero, shared.NewValidationError(field, "must have at most 2 decimal places")
	}
	return d.Round(2), nil
}

func exceedsTwoDecimals(d decimal.Decimal) bool {
	return !d.Equal(d.Truncate(2))
}
