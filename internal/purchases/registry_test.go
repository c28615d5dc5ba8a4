package purchases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colombiang/sales-mcp/internal/shared"
)

func TestResolveNormalizesStoreID(t *testing.T) {
	registry, err := NewRegistry(map[string]StoreBinding{
		"4f22df54942898f1": {Table: "ventas_mauricio", Shape: ShapeFlatCustomer},
	})
	require.NoError(t, err)

	for _, id := range []string{"4f22df54942898f1", "  4f22df54942898f1  ", "4F22DF54942898F1"} {
		binding, err := registry.Resolve(id)
		require.NoError(t, err, "id %q", id)
		assert.Equal(t, "ventas_mauricio", binding.Table)
		assert.Equal(t, ShapeFlatCustomer, binding.Shape)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	registry := DefaultRegistry()

	first, err := registry.Resolve("4f22df54942898f1")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := registry.Resolve("4f22df54942898f1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolveUnknownStoreFailsClosed(t *testing.T) {
	registry := DefaultRegistry()

	_, err := registry.Resolve("unknown")
	require.Error(t, err)

	var cfgErr *shared.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 400, cfgErr.StatusCode())
}

func TestNewRegistryRejectsBadBindings(t *testing.T) {
	cases := []struct {
		name   string
		stores map[string]StoreBinding
	}{
		{"empty key", map[string]StoreBinding{" ": {Table: "ventas", Shape: ShapeFlatCustomer}}},
		{"injection in table", map[string]StoreBinding{"s1": {Table: "ventas; DROP TABLE users", Shape: ShapeFlatCustomer}}},
		{"uppercase table", map[string]StoreBinding{"s1": {Table: "Ventas", Shape: ShapeFlatCustomer}}},
		{"unknown shape", map[string]StoreBinding{"s1": {Table: "ventas", Shape: Shape("wide")}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.stores)
			assert.Error(t, err)
		})
	}
}
