package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kivo/internal/domain"
	"kivo/internal/repository"

	"github.com/google/uuid"
)

// CreatePromotionInput carries the fields of a promotion create request.
// All fields are required.
type CreatePromotionInput struct {
	Title           string
	ProductID       uuid.UUID
	DiscountPercent int
	StartsAt        time.Time
	EndsAt          time.Time
}

// UpdatePromotionPatch carries the patchable promotion fields. Nil means
// "leave unchanged". The product reference is not patchable; a promotion
// stays attached to the product it was created for.
type UpdatePromotionPatch struct {
	Title           *string
	DiscountPercent *int
	StartsAt        *time.Time
	EndsAt          *time.Time
}

// PromotionService validates and commits promotion writes. It assumes the
// caller has already been authenticated as an admin; the admin gate lives in
// the middleware layer.
type PromotionService interface {
	Create(ctx context.Context, input CreatePromotionInput, createdBy uuid.UUID) (*domain.PromotionWithProduct, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePromotionPatch) (*domain.PromotionWithProduct, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PromotionWithProduct, error)
	List(ctx context.Context) ([]*domain.PromotionWithProduct, error)
	ListActive(ctx context.Context) ([]*domain.PromotionWithProduct, error)
	ListActiveForProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Promotion, error)
}

type promotionService struct {
	promotionRepo repository.PromotionRepository
	productRepo   repository.ProductRepository
	now           func() time.Time
}

// NewPromotionService creates a new instance of PromotionService. The clock
// is injected so tests can pin the evaluation instant.
func NewPromotionService(
	promotionRepo repository.PromotionRepository,
	productRepo repository.ProductRepository,
	now func() time.Time,
) PromotionService {
	if now == nil {
		now = time.Now
	}
	return &promotionService{
		promotionRepo: promotionRepo,
		productRepo:   productRepo,
		now:           now,
	}
}

// Create validates and persists a new promotion. Checks run in a fixed
// order: completeness, discount range, product existence, date ordering,
// expiry against the current instant.
func (s *promotionService) Create(ctx context.Context, input CreatePromotionInput, createdBy uuid.UUID) (*domain.PromotionWithProduct, error) {
	if input.Title == "" || input.ProductID == uuid.Nil || input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return nil, domain.NewValidationError(domain.ReasonIncomplete)
	}

	if input.DiscountPercent < 1 || input.DiscountPercent > 100 {
		return nil, domain.NewValidationError(domain.ReasonDiscountOutOfRange)
	}

	exists, err := s.productRepo.Exists(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError("product")
	}

	now := s.now()

	// startsAt == endsAt is rejected as well; the window must be non-empty
	if !input.StartsAt.Before(input.EndsAt) {
		return nil, domain.NewValidationError(domain.ReasonStartAfterEnd)
	}

	// endsAt == now counts as already expired
	if !input.EndsAt.After(now) {
		return nil, domain.NewValidationError(domain.ReasonAlreadyExpired)
	}

	promotion := &domain.Promotion{
		ID:              uuid.New(),
		Title:           input.Title,
		ProductID:       input.ProductID,
		DiscountPercent: input.DiscountPercent,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
		CreatedBy:       createdBy,
		CreatedAt:       now,
	}

	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		// The product may have been deleted between the existence check and
		// the insert; the foreign key constraint reports that race.
		if errors.Is(err, repository.ErrProductReferenceBroken) {
			return nil, domain.NewNotFoundError("product")
		}
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}

	return s.promotionRepo.FindByID(ctx, promotion.ID)
}

// Update applies a patch to an existing promotion. Date ordering is always
// re-validated against the merged result of patch and stored record, so
// patching a single endpoint cannot produce an inverted window.
func (s *promotionService) Update(ctx context.Context, id uuid.UUID, patch UpdatePromotionPatch) (*domain.PromotionWithProduct, error) {
	existing, err := s.promotionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return nil, domain.NewNotFoundError("promotion")
		}
		return nil, fmt.Errorf("failed to load promotion: %w", err)
	}

	merged := existing.Promotion
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.DiscountPercent != nil {
		if *patch.DiscountPercent < 1 || *patch.DiscountPercent > 100 {
			return nil, domain.NewValidationError(domain.ReasonDiscountOutOfRange)
		}
		merged.DiscountPercent = *patch.DiscountPercent
	}
	if patch.StartsAt != nil {
		merged.StartsAt = *patch.StartsAt
	}
	if patch.EndsAt != nil {
		merged.EndsAt = *patch.EndsAt
	}

	if !merged.StartsAt.Before(merged.EndsAt) {
		return nil, domain.NewValidationError(domain.ReasonStartAfterEnd)
	}

	if err := s.promotionRepo.Update(ctx, &merged); err != nil {
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return nil, domain.NewNotFoundError("promotion")
		}
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}

	return s.promotionRepo.FindByID(ctx, id)
}

// Delete removes a promotion. Deleting an id that no longer exists reports
// a not-found error rather than success.
func (s *promotionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.promotionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return domain.NewNotFoundError("promotion")
		}
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	return nil
}

// Get retrieves a promotion with its product summary
func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*domain.PromotionWithProduct, error) {
	promotion, err := s.promotionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPromotionNotFound) {
			return nil, domain.NewNotFoundError("promotion")
		}
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return promotion, nil
}

// List retrieves all promotions, newest first
func (s *promotionService) List(ctx context.Context) ([]*domain.PromotionWithProduct, error) {
	promotions, err := s.promotionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promotions, nil
}

// ListActive retrieves promotions active at the current instant
func (s *promotionService) ListActive(ctx context.Context) ([]*domain.PromotionWithProduct, error) {
	promotions, err := s.promotionRepo.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active promotions: %w", err)
	}
	return promotions, nil
}

// ListActiveForProduct retrieves the promotions of a product that are active
// right now, highest discount first
func (s *promotionService) ListActiveForProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Promotion, error) {
	promotions, err := s.promotionRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product promotions: %w", err)
	}
	return domain.FilterActive(promotions, s.now()), nil
}
