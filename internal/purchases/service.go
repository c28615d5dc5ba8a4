package purchases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/colombiang/sales-mcp/internal/shared"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service orchestrates resolve, validate and persist for per-store
// purchases. It performs no retries: configuration and validation
// failures are client errors, and storage failures are surfaced once so
// retry policy stays with the caller.
type Service struct {
	registry *Registry
	repo     Repository
	logger   *slog.Logger
}

// NewService constructs the purchase service.
func NewService(registry *Registry, repo Repository, logger *slog.Logger) *Service {
	return &Service{registry: registry, repo: repo, logger: logger}
}

// Save validates and persists a purchase for the given store, returning
// the stored row with normalized timestamps and the resolved table name.
// No database I/O happens for unknown stores or invalid payloads.
func (s *Service) Save(ctx context.Context, storeID string, req SaveRequest) (*PersistedPurchase, error) {
	binding, err := s.registry.Resolve(storeID)
	if err != nil {
		return nil, err
	}

	purchase, err := Validate(binding.Shape, req)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.Insert(ctx, binding, purchase)
	if err != nil {
		if errors.Is(err, ErrNoRow) {
			s.logger.Error("purchase insert read-back returned no row",
				slog.String("store_id", storeID))
			return nil, shared.NewPersistenceError("insert succeeded but read-back failed", err)
		}
		s.logger.Error("purchase insert failed",
			slog.String("store_id", storeID), slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to save purchase", err)
	}

	persisted := record.toPersisted(binding.Table)
	return &persisted, nil
}

// List returns purchases for the store ordered by id descending. Limit is
// clamped into [1, 200] with a default of 50; offset is clamped to >= 0.
// An empty result is a valid outcome, not an error.
func (s *Service) List(ctx context.Context, storeID string, limit, offset int) ([]PersistedPurchase, error) {
	binding, err := s.registry.Resolve(storeID)
	if err != nil {
		return nil, err
	}

	limit = shared.ClampLimit(limit, defaultListLimit, maxListLimit)
	offset = shared.ClampOffset(offset)

	records, err := s.repo.List(ctx, binding, limit, offset)
	if err != nil {
		s.logger.Error("purchase list failed",
			slog.String("store_id", storeID), slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to read purchases", err)
	}

	persisted := make([]PersistedPurchase, len(records))
	for i, rec := range records {
		persisted[i] = rec.toPersisted(binding.Table)
	}
	return persisted, nil
}
