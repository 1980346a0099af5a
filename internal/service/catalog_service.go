package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kivo/internal/domain"
	"kivo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput carries the fields of a product create request
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

// UpdateProductPatch carries the patchable product fields, nil meaning
// "leave unchanged"
type UpdateProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	ImageURL    *string
}

// CatalogService owns product records and their invariants: positive price,
// non-negative stock, category defaulting
type CatalogService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdateProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	LowStock(ctx context.Context) ([]*domain.Product, error)
}

type catalogService struct {
	productRepo       repository.ProductRepository
	lowStockThreshold int
	now               func() time.Time
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, lowStockThreshold int, now func() time.Time) CatalogService {
	if now == nil {
		now = time.Now
	}
	return &catalogService{
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
		now:               now,
	}
}

// Create validates and persists a new product
func (s *catalogService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" || input.Description == "" {
		return nil, domain.NewValidationError(domain.ReasonIncomplete)
	}
	if !input.Price.IsPositive() {
		return nil, domain.NewValidationError(domain.ReasonInvalidPrice)
	}
	if input.Stock < 0 {
		return nil, domain.NewValidationError(domain.ReasonInvalidStock)
	}

	category := input.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	now := s.now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    category,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies a patch to an existing product, re-validating price and
// stock invariants on the patched values
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, patch UpdateProductPatch) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domain.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		if !patch.Price.IsPositive() {
			return nil, domain.NewValidationError(domain.ReasonInvalidPrice)
		}
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, domain.NewValidationError(domain.ReasonInvalidStock)
		}
		product.Stock = *patch.Stock
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		product.ImageURL = *patch.ImageURL
	}
	product.UpdatedAt = s.now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domain.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product. Promotions referencing it are removed by the
// cascade constraint.
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.NewNotFoundError("product")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// Get retrieves a product by id
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domain.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// List retrieves products matching the filter, newest first
func (s *catalogService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// LowStock retrieves products below the configured stock threshold
func (s *catalogService) LowStock(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.LowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}
