package service

import (
	"context"
	"strings"
	"time"

	"kivo/internal/domain"
	"kivo/internal/repository"

	"github.com/google/uuid"
)

// In-memory repositories used across the service tests

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	// promotions deleted via cascade are recorded here when linked
	promotionRepo *mockPromotionRepository
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	// Mirror the ON DELETE CASCADE constraint
	if m.promotionRepo != nil {
		for pid, p := range m.promotionRepo.promotions {
			if p.ProductID == id {
				delete(m.promotionRepo.promotions, pid)
			}
		}
	}
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.products[id]
	return ok, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products := []*domain.Product{}
	search := strings.ToLower(filter.Search)
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		copied := *p
		products = append(products, &copied)
	}
	return products, nil
}

func (m *mockProductRepository) LowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if p.Stock < threshold {
			copied := *p
			products = append(products, &copied)
		}
	}
	return products, nil
}

type mockPromotionRepository struct {
	promotions  map[uuid.UUID]*domain.Promotion
	productRepo *mockProductRepository
	// failCreateWithBrokenReference simulates the product being deleted
	// between the service's existence check and the insert
	failCreateWithBrokenReference bool
}

func newMockPromotionRepository(productRepo *mockProductRepository) *mockPromotionRepository {
	repo := &mockPromotionRepository{
		promotions:  make(map[uuid.UUID]*domain.Promotion),
		productRepo: productRepo,
	}
	if productRepo != nil {
		productRepo.promotionRepo = repo
	}
	return repo
}

func (m *mockPromotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	if m.failCreateWithBrokenReference {
		return repository.ErrProductReferenceBroken
	}
	copied := *promotion
	m.promotions[promotion.ID] = &copied
	return nil
}

func (m *mockPromotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
	existing, ok := m.promotions[promotion.ID]
	if !ok {
		return repository.ErrPromotionNotFound
	}
	updated := *promotion
	updated.ProductID = existing.ProductID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	m.promotions[promotion.ID] = &updated
	return nil
}

func (m *mockPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.promotions[id]; !ok {
		return repository.ErrPromotionNotFound
	}
	delete(m.promotions, id)
	return nil
}

func (m *mockPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PromotionWithProduct, error) {
	promotion, ok := m.promotions[id]
	if !ok {
		return nil, repository.ErrPromotionNotFound
	}
	return m.join(promotion), nil
}

func (m *mockPromotionRepository) List(ctx context.Context) ([]*domain.PromotionWithProduct, error) {
	joined := []*domain.PromotionWithProduct{}
	for _, p := range m.promotions {
		joined = append(joined, m.join(p))
	}
	return joined, nil
}

func (m *mockPromotionRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.PromotionWithProduct, error) {
	joined := []*domain.PromotionWithProduct{}
	for _, p := range m.promotions {
		if p.ActiveAt(now) {
			joined = append(joined, m.join(p))
		}
	}
	return joined, nil
}

func (m *mockPromotionRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Promotion, error) {
	promotions := []*domain.Promotion{}
	for _, p := range m.promotions {
		if p.ProductID == productID {
			copied := *p
			promotions = append(promotions, &copied)
		}
	}
	return promotions, nil
}

func (m *mockPromotionRepository) join(promotion *domain.Promotion) *domain.PromotionWithProduct {
	joined := &domain.PromotionWithProduct{Promotion: *promotion}
	if m.productRepo != nil {
		if product, ok := m.productRepo.products[promotion.ProductID]; ok {
			joined.Product = product.Summary()
		}
	}
	return joined
}
