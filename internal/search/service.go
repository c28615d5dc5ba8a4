package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/shared"
)

const (
	defaultTop = 5
	maxTop     = 50

	searchTypeHybrid  = "hybrid"
	searchTypeLexical = "lexical"
)

// IndexPort is the slice of the Azure client the service uses.
type IndexPort interface {
	Search(ctx context.Context, text, filter string, top int, vector []float32) ([]Result, error)
	Upload(ctx context.Context, docs []Document) error
}

// Service answers product searches. With an embedder it runs hybrid
// text+vector queries; without one it degrades to lexical search.
type Service struct {
	index    IndexPort
	embedder EmbedderPort
	cache    *Cache
	logger   *slog.Logger
}

// NewService builds a Service instance. embedder and cache may be nil.
func NewService(index IndexPort, embedder EmbedderPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{index: index, embedder: embedder, cache: cache, logger: logger}
}

// SearchByText runs a filtered product search. Results are served from
// the versioned cache when present. The returned search type is "hybrid"
// when a vector query was attached, "lexical" otherwise.
func (s *Service) SearchByText(ctx context.Context, query TextQuery) ([]Result, string, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, "", shared.NewValidationError("query", "is required")
	}
	top := shared.ClampLimit(query.Top, defaultTop, maxTop)
	filter := buildFilter(query)

	searchType := searchTypeLexical
	if s.embedder != nil {
		searchType = searchTypeHybrid
	}
	keyParts := []string{"search", "text", text, filter, strconv.Itoa(top)}
	results, err := s.cache.FetchResults(ctx, keyParts, func(ctx context.Context) ([]Result, error) {
		var vector []float32
		if s.embedder != nil {
			vectors, err := s.embedder.Embed(ctx, []string{text})
			if err != nil {
				s.logger.Warn("embedding failed, falling back to lexical search",
					slog.Any("error", err))
				searchType = searchTypeLexical
			} else if len(vectors) == 1 {
				vector = vectors[0]
			}
		} else {
			s.logger.Warn("no embedder configured, running lexical search only")
		}
		return s.index.Search(ctx, text, filter, top, vector)
	})
	return results, searchType, err
}

// SearchBySKU looks up a single product by exact SKU.
func (s *Service) SearchBySKU(ctx context.Context, sku string) (*Result, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewValidationError("sku", "is required")
	}
	filter := fmt.Sprintf("sku eq '%s'", strings.ReplaceAll(sku, "'", "''"))

	keyParts := []string{"search", "sku", sku}
	results, err := s.cache.FetchResults(ctx, keyParts, func(ctx context.Context) ([]Result, error) {
		return s.index.Search(ctx, "", filter, 1, nil)
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, shared.ErrNotFound
	}
	return &results[0], nil
}

// IndexProducts pushes catalog rows into the index and invalidates
// cached results. Embeddings are attached when an embedder is
// configured.
func (s *Service) IndexProducts(ctx context.Context, items []products.Product) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	docs := make([]Document, len(items))
	texts := make([]string, len(items))
	for i, p := range items {
		docs[i] = Document{
			ID:            strconv.FormatInt(p.ID, 10),
			Name:          p.Name,
			Description:   p.Description,
			SKU:           p.SKU,
			Category:      p.Category,
			Price:         p.Price.InexactFloat64(),
			StockQuantity: p.StockQuantity,
		}
		texts[i] = strings.TrimSpace(p.Name + ". " + p.Description)
	}
	if s.embedder != nil {
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, err
		}
		for i := range docs {
			docs[i].Embedding = vectors[i]
		}
	}
	if err := s.index.Upload(ctx, docs); err != nil {
		return 0, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump after reindex failed", slog.Any("error", err))
	}
	return len(docs), nil
}

// buildFilter renders the OData filter for the optional constraints.
func buildFilter(query TextQuery) string {
	clauses := []string{}
	if query.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price ge %s",
			strconv.FormatFloat(*query.MinPrice, 'f', -1, 64)))
	}
	if query.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price le %s",
			strconv.FormatFloat(*query.MaxPrice, 'f', -1, 64)))
	}
	if query.InStock != nil {
		if *query.InStock {
			clauses = append(clauses, "stock_quantity gt 0")
		} else {
			clauses = append(clauses, "stock_quantity eq 0")
		}
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		clauses = append(clauses, fmt.Sprintf("category eq '%s'",
			strings.ReplaceAll(category, "'", "''")))
	}
	return strings.Join(clauses, " and ")
}
