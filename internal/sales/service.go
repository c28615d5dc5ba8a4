package sales

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/colombiang/sales-mcp/internal/products"
	"github.com/colombiang/sales-mcp/internal/shared"
	"github.com/colombiang/sales-mcp/internal/users"
)

// CatalogPort is the product lookup surface the sales flow needs.
type CatalogPort interface {
	GetBySKU(ctx context.Context, sku string) (*products.Product, error)
	GetByID(ctx context.Context, id int64) (*products.Product, error)
}

// RepositoryPort defines data access methods for sales.
type RepositoryPort interface {
	Insert(ctx context.Context, sale *ProductSale) (ProductSale, error)
	ListRecent(ctx context.Context, limit, offset int) ([]ProductSale, error)
}

// Service registers product sales against the catalog.
type Service struct {
	catalog  CatalogPort
	repo     RepositoryPort
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService builds a Service instance.
func NewService(catalog CatalogPort, repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{catalog: catalog, repo: repo, validate: validator.New(), logger: logger}
}

// Register validates the request, resolves the product, prices the sale
// and persists it. The product must be identified by exactly one of sku
// or product_id and must be active; unit_price falls back to the catalog
// price when not provided.
func (s *Service) Register(ctx context.Context, req RegisterSaleRequest) (*ProductSale, error) {
	hasSKU := strings.TrimSpace(req.SKU) != ""
	hasID := req.ProductID != 0
	if hasSKU == hasID {
		return nil, shared.NewValidationError("", "exactly one of sku or product_id is required")
	}
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, shared.NewValidationError(strings.ToLower(fe.Field()),
				"failed on the %q rule", fe.Tag())
		}
		return nil, shared.NewValidationError("", "invalid request")
	}
	phone := users.NormalizePhone(req.CustomerPhone)
	if len(phone) < 10 {
		return nil, shared.NewValidationError("customer_phone", "must contain at least 10 digits")
	}

	product, err := s.lookupProduct(ctx, req, hasSKU)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewValidationError("product", "product %q is not active", product.SKU)
	}

	unitPrice := product.Price
	if req.UnitPrice != nil {
		unitPrice = decimal.NewFromFloat(*req.UnitPrice)
		if unitPrice.IsNegative() {
			return nil, shared.NewValidationError("unit_price", "must not be negative")
		}
		if !unitPrice.Equal(unitPrice.Truncate(2)) {
			return nil, shared.NewValidationError("unit_price", "must not exceed two decimal places")
		}
	}
	total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)

	sale := &ProductSale{
		ProductID:       product.ID,
		ProductName:     product.Name,
		SKU:             product.SKU,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		TotalAmount:     total,
		CustomerPhone:   phone,
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
	}
	stored, err := s.repo.Insert(ctx, sale)
	if err != nil {
		s.logger.Error("sale insert failed",
			slog.String("sku", product.SKU), slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to register sale", err)
	}
	return &stored, nil
}

func (s *Service) lookupProduct(ctx context.Context, req RegisterSaleRequest, bySKU bool) (*products.Product, error) {
	var product *products.Product
	var err error
	if bySKU {
		product, err = s.catalog.GetBySKU(ctx, req.SKU)
	} else {
		product, err = s.catalog.GetByID(ctx, req.ProductID)
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("product lookup failed", slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to read product", err)
	}
	return product, nil
}

// ListRecent returns recent sales with clamped pagination.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]ProductSale, error) {
	limit = shared.ClampLimit(limit, 50, 200)
	offset = shared.ClampOffset(offset)
	out, err := s.repo.ListRecent(ctx, limit, offset)
	if err != nil {
		s.logger.Error("sale list failed", slog.Any("error", err))
		return nil, shared.NewPersistenceError("failed to list sales", err)
	}
	return out, nil
}
