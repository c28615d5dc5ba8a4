package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/shared"
)

type fakeIndex struct {
	searches   int
	lastText   string
	lastFilter string
	lastTop    int
	lastVector []float32
	results    []Result
	uploaded   []Document
}

func (f *fakeIndex) Search(ctx context.Context, text, filter string, top int, vector []float32) ([]Result, error) {
	f.searches++
	f.lastText = text
	f.lastFilter = filter
	f.lastTop = top
	f.lastVector = vector
	return f.results, nil
}

func (f *fakeIndex) Upload(ctx context.Context, docs []Document) error {
	f.uploaded = append(f.uploaded, docs...)
	return nil
}

type fakeEmbedder struct {
	calls  int
	err    error
	vector []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = f.vector
	}
	return out, nil
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestStoreIDFromName(t *testing.T) {
	assert.Equal(t, "a17a754b51b2a822", StoreIDFromName("  Tienda Mauricio "))
	assert.Equal(t, "a17a754b51b2a822", StoreIDFromName("tienda mauricio"))
	assert.Equal(t, "4776bc42c4c22324", StoreIDFromName("Demo Store"))
}

func TestBuildFilter(t *testing.T) {
	assert.Empty(t, buildFilter(TextQuery{}))
	assert.Equal(t, "price ge 100", buildFilter(TextQuery{MinPrice: floatPtr(100)}))
	assert.Equal(t, "price le 50000", buildFilter(TextQuery{MaxPrice: floatPtr(50000)}))
	assert.Equal(t, "stock_quantity gt 0", buildFilter(TextQuery{InStock: boolPtr(true)}))
	assert.Equal(t, "stock_quantity eq 0", buildFilter(TextQuery{InStock: boolPtr(false)}))
	assert.Equal(t,
		"price ge 100 and price le 50000 and stock_quantity gt 0 and category eq 'phones'",
		buildFilter(TextQuery{MinPrice: floatPtr(100), MaxPrice: floatPtr(50000), InStock: boolPtr(true), Category: "phones"}))
	assert.Equal(t, "category eq 'women''s'", buildFilter(TextQuery{Category: "women's"}))
}

func TestSearchByTextRequiresQuery(t *testing.T) {
	svc := NewService(&fakeIndex{}, nil, nil, discard())

	_, _, err := svc.SearchByText(context.Background(), TextQuery{Text: "   "})
	var valErr *shared.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestSearchByTextHybridWhenEmbedderPresent(t *testing.T) {
	index := &fakeIndex{results: []Result{{Score: 1.5}}}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	svc := NewService(index, embedder, nil, discard())

	results, searchType, err := svc.SearchByText(context.Background(), TextQuery{Text: "celular barato", Top: 3})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hybrid", searchType)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, []float32{0.1, 0.2}, index.lastVector)
	assert.Equal(t, "celular barato", index.lastText)
	assert.Equal(t, 3, index.lastTop)
}

func TestSearchByTextAppliesPriceAndStockFilters(t *testing.T) {
	index := &fakeIndex{}
	svc := NewService(index, nil, nil, discard())

	_, _, err := svc.SearchByText(context.Background(), TextQuery{
		Text:     "celular",
		MinPrice: floatPtr(100000),
		InStock:  boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "price ge 100000 and stock_quantity gt 0", index.lastFilter)
}

func TestSearchByTextDegradesWithoutEmbedder(t *testing.T) {
	index := &fakeIndex{}
	svc := NewService(index, nil, nil, discard())

	_, searchType, err := svc.SearchByText(context.Background(), TextQuery{Text: "celular"})
	require.NoError(t, err)
	assert.Equal(t, "lexical", searchType)
	assert.Nil(t, index.lastVector)
	assert.Equal(t, defaultTop, index.lastTop)
}

func TestSearchByTextDegradesOnEmbedderFailure(t *testing.T) {
	index := &fakeIndex{}
	embedder := &fakeEmbedder{err: shared.NewTransportError(shared.TransportTimeout, "timed out", nil)}
	svc := NewService(index, embedder, nil, discard())

	_, searchType, err := svc.SearchByText(context.Background(), TextQuery{Text: "celular"})
	require.NoError(t, err)
	assert.Equal(t, "lexical", searchType)
	assert.Nil(t, index.lastVector)
	assert.Equal(t, 1, index.searches)
}

func TestSearchByTextCachesResults(t *testing.T) {
	index := &fakeIndex{results: []Result{{Score: 2.0}}}
	svc := NewService(index, nil, testCache(t), discard())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		results, _, err := svc.SearchByText(ctx, TextQuery{Text: "celular"})
		require.NoError(t, err)
		require.Len(t, results, 1)
	}
	assert.Equal(t, 1, index.searches, "second query served from cache")
}

func TestSearchBySKU(t *testing.T) {
	index := &fakeIndex{results: []Result{{Document: Document{SKU: "IPH15PRO"}, Score: 3.0}}}
	svc := NewService(index, nil, nil, discard())

	result, err := svc.SearchBySKU(context.Background(), "  iph15pro ")
	require.NoError(t, err)
	assert.Equal(t, "IPH15PRO", result.SKU)
	assert.Equal(t, "sku eq 'IPH15PRO'", index.lastFilter)
	assert.Empty(t, index.lastText)
}

func TestSearchBySKUNotFound(t *testing.T) {
	svc := NewService(&fakeIndex{}, nil, nil, discard())

	_, err := svc.SearchBySKU(context.Background(), "NOPE")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestIndexProductsUploadsAndInvalidatesCache(t *testing.T) {
	index := &fakeIndex{results: []Result{{Score: 1.0}}}
	embedder := &fakeEmbedder{vector: []float32{0.5}}
	cache := testCache(t)
	svc := NewService(index, embedder, cache, discard())
	ctx := context.Background()

	// warm the cache
	_, _, err := svc.SearchByText(ctx, TextQuery{Text: "celular"})
	require.NoError(t, err)
	require.Equal(t, 1, index.searches)

	count, err := svc.IndexProducts(ctx, []products.Product{{
		ID:    1,
		Name:  "iPhone 15 Pro",
		SKU:   "IPH15PRO",
		Price: decimal.NewFromInt(4599900),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, index.uploaded, 1)
	assert.Equal(t, "1", index.uploaded[0].ID)
	assert.Equal(t, []float32{0.5}, index.uploaded[0].Embedding)

	// version bump makes the cached entry unreachable
	_, _, err = svc.SearchByText(ctx, TextQuery{Text: "celular"})
	require.NoError(t, err)
	assert.Equal(t, 2, index.searches)
}

func TestIndexProductsEmptyInput(t *testing.T) {
	svc := NewService(&fakeIndex{}, nil, nil, discard())

	count, err := svc.IndexProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
