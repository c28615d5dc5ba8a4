// Package purchases implements per-store purchase persistence: tenant to
// table resolution, payload validation across the two supported table
// shapes, and parameterized inserts and reads against tenant tables.
package purchases

import (
	"regexp"
	"strings"

	"github.com/colombiang/sales-mcp/internal/shared"
)

// Shape identifies the column layout of a tenant's purchase table.
type Shape string

const (
	// ShapeClientDetail stores the client as a structured JSON document
	// (address, city, document, full name, phone, optional email).
	ShapeClientDetail Shape = "client_detail"
	// ShapeFlatCustomer stores the customer phone and address as flat
	// columns.
	ShapeFlatCustomer Shape = "flat_customer"
)

// StoreBinding couples a physical table with its shape.
type StoreBinding struct {
	Table string
	Shape Shape
}

// tableNamePattern is the allow-list for physical table identifiers. The
// registry is the only source of table names reaching SQL text, and every
// entry must match this pattern at construction time.
var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Registry maps normalized store ids to their table bindings. Read-only
// after construction; safe for concurrent use.
type Registry struct {
	stores map[string]StoreBinding
}

// NewRegistry builds a registry from the given bindings. Keys are
// normalized (trimmed, lowercased); bindings with invalid table names or
// unknown shapes are rejected.
func NewRegistry(stores map[string]StoreBinding) (*Registry, error) {
	normalized := make(map[string]StoreBinding, len(stores))
	for key, binding := range stores {
		k := strings.ToLower(strings.TrimSpace(key))
		if k == "" {
			return nil, shared.NewConfigurationError("store id must not be empty")
		}
		if !tableNamePattern.MatchString(binding.Table) {
			return nil, shared.NewConfigurationError("invalid table name for store %q", k)
		}
		if binding.Shape != ShapeClientDetail && binding.Shape != ShapeFlatCustomer {
			return nil, shared.NewConfigurationError("unknown shape %q for store %q", binding.Shape, k)
		}
		normalized[k] = binding
	}
	return &Registry{stores: normalized}, nil
}

// DefaultRegistry returns the static production mapping. There is no
// fallback entry: unknown store ids fail closed.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(map[string]StoreBinding{
		"4f22df54942898f1": {Table: "ventas_mauricio", Shape: ShapeFlatCustomer},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve maps a store id to its table binding. The id is trimmed and
// lowercased before lookup; unknown ids yield a ConfigurationError and
// callers must not proceed to persistence.
func (r *Registry) Resolve(storeID string) (StoreBinding, error) {
	key := strings.ToLower(strings.TrimSpace(storeID))
	binding, ok := r.stores[key]
	if !ok {
		return StoreBinding{}, shared.NewConfigurationError("no table configured for store %q", key)
	}
	return binding, nil
}
