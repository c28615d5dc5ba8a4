package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colombiang/sales-mcp/internal/shared"
)

func TestAzureSearchRequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotBody searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		assert.Equal(t, apiVersion, r.URL.Query().Get("api-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{{
				"@search.score": 2.5,
				"id":            "1",
				"name":          "iPhone 15 Pro",
				"sku":           "IPH15PRO",
			}},
		})
	}))
	t.Cleanup(srv.Close)

	client := NewAzureClient(srv.URL, "products-index", "secret", 5*time.Second)
	results, err := client.Search(context.Background(), "celular", "price le 5000000", 5, []float32{0.1})
	require.NoError(t, err)

	assert.Equal(t, "/indexes/products-index/docs/search", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "celular", gotBody.Search)
	assert.Equal(t, "price le 5000000", gotBody.Filter)
	require.Len(t, gotBody.VectorQueries, 1)
	assert.Equal(t, "embedding", gotBody.VectorQueries[0].Fields)
	assert.Equal(t, 5, gotBody.VectorQueries[0].K)

	require.Len(t, results, 1)
	assert.Equal(t, 2.5, results[0].Score)
	assert.Equal(t, "IPH15PRO", results[0].SKU)
}

func TestAzureUploadBatch(t *testing.T) {
	var gotPath string
	var gotBody indexBatch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	t.Cleanup(srv.Close)

	client := NewAzureClient(srv.URL, "products-index", "secret", 5*time.Second)
	err := client.Upload(context.Background(), []Document{{ID: "1", SKU: "IPH15PRO"}})
	require.NoError(t, err)

	assert.Equal(t, "/indexes/products-index/docs/index", gotPath)
	require.Len(t, gotBody.Value, 1)
	assert.Equal(t, "mergeOrUpload", gotBody.Value[0].Action)
}

func TestAzureUploadEmptyIsNoop(t *testing.T) {
	client := NewAzureClient("http://127.0.0.1:1", "products-index", "secret", time.Second)
	require.NoError(t, client.Upload(context.Background(), nil))
}

func TestAzureUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client := NewAzureClient(srv.URL, "products-index", "wrong", 5*time.Second)
	_, err := client.Search(context.Background(), "celular", "", 5, nil)
	var traErr *shared.TransportError
	require.ErrorAs(t, err, &traErr)
	assert.Equal(t, shared.TransportUpstream, traErr.Kind)
}
