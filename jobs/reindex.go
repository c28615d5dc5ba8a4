// Package jobs runs background work over Asynq: rebuilding the product
// search index from the catalog.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/search"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReindexProducts rebuilds the product search index.
	TaskReindexProducts = "search:reindex_products"

	reindexBatchSize = 100
	reindexWorkers   = 4
)

// ReindexPayload contains options for the reindex job.
type ReindexPayload struct {
	BatchSize int `json:"batch_size,omitempty"`
}

// NewReindexTask builds a reindex task.
func NewReindexTask(payload ReindexPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReindexProducts, body, asynq.Queue(QueueDefault)), nil
}

// CatalogPort is the product listing surface the reindexer reads.
type CatalogPort interface {
	ListActive(ctx context.Context, limit, offset int) ([]products.Product, error)
}

// Reindexer streams the active catalog into the search index in
// batches, embedding and uploading batches concurrently.
type Reindexer struct {
	catalog CatalogPort
	search  *search.Service
	logger  *slog.Logger
}

// NewReindexer constructs a Reindexer.
func NewReindexer(catalog CatalogPort, searchSvc *search.Service, logger *slog.Logger) *Reindexer {
	return &Reindexer{catalog: catalog, search: searchSvc, logger: logger}
}

// Handle processes TaskReindexProducts tasks.
func (r *Reindexer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	total, err := r.Run(ctx, payload.BatchSize)
	if err != nil {
		return err
	}
	r.logger.Info("product reindex finished", slog.Int("indexed", total))
	return nil
}

// Run pages through the active catalog and pushes every batch into the
// index. It returns the number of products indexed.
func (r *Reindexer) Run(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = reindexBatchSize
	}

	batches := make(chan []products.Product)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(batches)
		for offset := 0; ; offset += batchSize {
			page, err := r.catalog.ListActive(ctx, batchSize, offset)
			if err != nil {
				return err
			}
			if len(page) == 0 {
				return nil
			}
			select {
			case batches <- page:
			case <-ctx.Done():
				return ctx.Err()
			}
			if len(page) < batchSize {
				return nil
			}
		}
	})

	counts := make(chan int, reindexWorkers)
	for i := 0; i < reindexWorkers; i++ {
		group.Go(func() error {
			for batch := range batches {
				n, err := r.search.IndexProducts(ctx, batch)
				if err != nil {
					return err
				}
				counts <- n
			}
			return nil
		})
	}

	done := make(chan int)
	go func() {
		total := 0
		for n := range counts {
			total += n
		}
		done <- total
	}()

	err := group.Wait()
	close(counts)
	total := <-done
	if err != nil {
		return total, err
	}
	return total, nil
}
