package purchases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colombiang/sales-mcp/internal/shared"
)

type fakeRepository struct {
	nextID    int64
	records   map[string][]Record
	insertErr error
	listErr   error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextID: 1, records: make(map[string][]Record)}
}

func (f *fakeRepository) Insert(ctx context.Context, binding StoreBinding, purchase *ValidatedPurchase) (Record, error) {
	if f.insertErr != nil {
		return Record{}, f.insertErr
	}
	now := time.Date(2024, 5, 10, 15, 4, 5, 0, time.UTC)
	rec := Record{
		ID:              f.nextID,
		TotalAmount:     purchase.TotalAmount,
		Products:        purchase.Products,
		CreatedAt:       now,
		UpdatedAt:       now,
		ClientPhone:     purchase.ClientPhone,
		CustomerPhone:   purchase.CustomerPhone,
		CustomerAddress: purchase.CustomerAddress,
	}
	if purchase.Client != nil {
		clientJSON, err := json.Marshal(purchase.Client)
		if err != nil {
			return Record{}, err
		}
		rec.ClientJSON = clientJSON
	}
	f.nextID++
	// prepend: reads come back in descending id order
	f.records[binding.Table] = append([]Record{rec}, f.records[binding.Table]...)
	return rec, nil
}

func (f *fakeRepository) List(ctx context.Context, binding StoreBinding, limit, offset int) ([]Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	all := f.records[binding.Table]
	if offset >= len(all) {
		return []Record{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func newTestService(repo Repository) *Service {
	registry, err := NewRegistry(map[string]StoreBinding{
		"4f22df54942898f1": {Table: "ventas_mauricio", Shape: ShapeFlatCustomer},
		"client-detail":    {Table: "ventas_detalle", Shape: ShapeClientDetail},
	})
	if err != nil {
		panic(err)
	}
	return NewService(registry, repo, slog.New(slog.DiscardHandler))
}

func TestSaveFlatCustomerScenario(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	got, err := svc.Save(context.Background(), "4f22df54942898f1", flatCustomerRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "+573204259649", got.CustomerPhone)
	assert.Equal(t, "Calle 123 #45-67", got.CustomerAddress)
	assert.InDelta(t, 12345.67, got.TotalAmount, 0.0001)
	assert.Equal(t, "ventas_mauricio", got.Table)

	for _, ts := range []string{got.CreatedAt, got.UpdatedAt} {
		parsed, err := time.Parse(time.RFC3339, ts)
		require.NoError(t, err)
		assert.False(t, parsed.IsZero())
	}
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestSaveClientDetailAnnotatesTable(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	got, err := svc.Save(context.Background(), "client-detail", clientDetailRequest())
	require.NoError(t, err)

	assert.Equal(t, "ventas_detalle", got.Table)
	assert.Equal(t, "+573204259649", got.ClientPhone)
	assert.JSONEq(t, `{
		"direccion": "Calle 123 #45-67",
		"ciudad": "Bogotá",
		"cedula": "1234567890",
		"nombre_completo": "Juan Pérez",
		"celular": "+573204259649",
		"correo": "juan.perez@example.com"
	}`, string(got.ClientJSON))
}

func TestSaveUnknownStoreDoesNoIO(t *testing.T) {
	repo := newFakeRepository()
	repo.insertErr = errors.New("must not be called")
	svc := newTestService(repo)

	_, err := svc.Save(context.Background(), "unknown", flatCustomerRequest())
	var cfgErr *shared.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 400, cfgErr.StatusCode())
	assert.Empty(t, repo.records)
}

func TestSaveInvalidPayloadDoesNoIO(t *testing.T) {
	repo := newFakeRepository()
	repo.insertErr = errors.New("must not be called")
	svc := newTestService(repo)

	req := flatCustomerRequest()
	req.Products = json.RawMessage(`[{"product_id":0,"quantity":1}]`)

	_, err := svc.Save(context.Background(), "4f22df54942898f1", req)
	var valErr *shared.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, repo.records)
}

func TestSaveStorageFailureIsWrappedAndSanitized(t *testing.T) {
	repo := newFakeRepository()
	repo.insertErr = errors.New(`insert into "ventas_mauricio" failed`)
	svc := newTestService(repo)

	_, err := svc.Save(context.Background(), "4f22df54942898f1", flatCustomerRequest())
	var perErr *shared.PersistenceError
	require.ErrorAs(t, err, &perErr)
	assert.Equal(t, 500, perErr.StatusCode())
	assert.NotContains(t, perErr.Error(), "ventas_mauricio")
}

func TestSaveReadBackFailureIsReported(t *testing.T) {
	repo := newFakeRepository()
	repo.insertErr = ErrNoRow
	svc := newTestService(repo)

	_, err := svc.Save(context.Background(), "4f22df54942898f1", flatCustomerRequest())
	var perErr *shared.PersistenceError
	require.ErrorAs(t, err, &perErr)
	assert.Equal(t, "insert succeeded but read-back failed", perErr.Error())
}

func TestListReturnsNewestFirstAndPaginates(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Save(ctx, "4f22df54942898f1", flatCustomerRequest())
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "4f22df54942898f1", 50, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, int64(1), all[2].ID)

	first, err := svc.List(ctx, "4f22df54942898f1", 1, 0)
	require.NoError(t, err)
	second, err := svc.List(ctx, "4f22df54942898f1", 1, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, int64(3), first[0].ID)
	assert.Equal(t, int64(2), second[0].ID)

	again, err := svc.List(ctx, "4f22df54942898f1", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, all, again, "reads are idempotent without intervening writes")
}

func TestListClampsArguments(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Save(ctx, "4f22df54942898f1", flatCustomerRequest())
	require.NoError(t, err)

	rows, err := svc.List(ctx, "4f22df54942898f1", -5, -10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestListUnknownStoreFails(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.List(context.Background(), "unknown", 10, 0)
	var cfgErr *shared.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestListEmptyStoreReturnsEmptySlice(t *testing.T) {
	svc := newTestService(newFakeRepository())

	rows, err := svc.List(context.Background(), "4f22df54942898f1", 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMonetaryRoundTrip(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	req := flatCustomerRequest()
	req.TotalAmount = 100.00
	saved, err := svc.Save(ctx, "4f22df54942898f1", req)
	require.NoError(t, err)
	assert.Equal(t, "100", decimal.NewFromFloat(saved.TotalAmount).String())

	req.TotalAmount = 100.005
	_, err = svc.Save(ctx, "4f22df54942898f1", req)
	var valErr *shared.ValidationError
	require.ErrorAs(t, err, &valErr)
}
