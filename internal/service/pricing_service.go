package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kivo/internal/domain"
	"kivo/internal/pricing"
	"kivo/internal/repository"

	"github.com/google/uuid"
)

// PricingService composes catalog reads with promotion evaluation into
// display-ready prices. The evaluation instant is taken from the injected
// clock at call time, never from a stored flag.
type PricingService struct {
	productRepo   repository.ProductRepository
	promotionRepo repository.PromotionRepository
	now           func() time.Time
}

// NewPricingService creates a new PricingService
func NewPricingService(
	productRepo repository.ProductRepository,
	promotionRepo repository.PromotionRepository,
	now func() time.Time,
) *PricingService {
	if now == nil {
		now = time.Now
	}
	return &PricingService{
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		now:           now,
	}
}

// PricedCatalog lists products matching the filter, each priced against the
// promotions active at the same instant
func (s *PricingService) PricedCatalog(ctx context.Context, filter repository.ProductFilter) ([]pricing.ProductPricing, error) {
	now := s.now()

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	active, err := s.promotionRepo.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active promotions: %w", err)
	}

	promotions := make([]*domain.Promotion, 0, len(active))
	for _, p := range active {
		promotions = append(promotions, &p.Promotion)
	}

	return pricing.ForCatalog(products, promotions, now), nil
}

// PricedProduct returns the display pricing of a single product together
// with all of its currently active promotions
func (s *PricingService) PricedProduct(ctx context.Context, id uuid.UUID) (pricing.ProductPricing, []*domain.Promotion, error) {
	now := s.now()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return pricing.ProductPricing{}, nil, domain.NewNotFoundError("product")
		}
		return pricing.ProductPricing{}, nil, fmt.Errorf("failed to load product: %w", err)
	}

	promotions, err := s.promotionRepo.ListByProduct(ctx, id)
	if err != nil {
		return pricing.ProductPricing{}, nil, fmt.Errorf("failed to list product promotions: %w", err)
	}

	active := domain.FilterActive(promotions, now)
	return pricing.ForProduct(product, active, now), active, nil
}
