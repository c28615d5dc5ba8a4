package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/search"
)

type staticCatalog struct {
	items []products.Product
	err   error
}

func (c *staticCatalog) ListActive(ctx context.Context, limit, offset int) ([]products.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	if offset >= len(c.items) {
		return []products.Product{}, nil
	}
	end := offset + limit
	if end > len(c.items) {
		end = len(c.items)
	}
	return c.items[offset:end], nil
}

type countingIndex struct {
	mu       sync.Mutex
	uploaded int
	err      error
}

func (i *countingIndex) Search(ctx context.Context, text, filter string, top int, vector []float32) ([]search.Result, error) {
	return nil, nil
}

func (i *countingIndex) Upload(ctx context.Context, docs []search.Document) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return i.err
	}
	i.uploaded += len(docs)
	return nil
}

func catalogOf(n int) *staticCatalog {
	items := make([]products.Product, n)
	for i := range items {
		items[i] = products.Product{
			ID:    int64(i + 1),
			Name:  "Product " + strconv.Itoa(i+1),
			SKU:   "SKU" + strconv.Itoa(i+1),
			Price: decimal.NewFromInt(1000),
		}
	}
	return &staticCatalog{items: items}
}

func newReindexer(catalog CatalogPort, index search.IndexPort) *Reindexer {
	logger := slog.New(slog.DiscardHandler)
	return NewReindexer(catalog, search.NewService(index, nil, nil, logger), logger)
}

func TestReindexRunIndexesEverything(t *testing.T) {
	index := &countingIndex{}
	r := newReindexer(catalogOf(250), index)

	total, err := r.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 250, total)
	assert.Equal(t, 250, index.uploaded)
}

func TestReindexRunEmptyCatalog(t *testing.T) {
	index := &countingIndex{}
	r := newReindexer(catalogOf(0), index)

	total, err := r.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, index.uploaded)
}

func TestReindexRunPropagatesCatalogFailure(t *testing.T) {
	catalog := &staticCatalog{err: errors.New("connection refused")}
	r := newReindexer(catalog, &countingIndex{})

	_, err := r.Run(context.Background(), 100)
	assert.Error(t, err)
}

func TestReindexRunPropagatesUploadFailure(t *testing.T) {
	index := &countingIndex{err: errors.New("index unavailable")}
	r := newReindexer(catalogOf(10), index)

	_, err := r.Run(context.Background(), 100)
	assert.Error(t, err)
}

func TestReindexTaskPayloadRoundTrip(t *testing.T) {
	task, err := NewReindexTask(ReindexPayload{BatchSize: 25})
	require.NoError(t, err)
	assert.Equal(t, TaskReindexProducts, task.Type())
	assert.JSONEq(t, `{"batch_size":25}`, string(task.Payload()))
}
