package service

import (
	"context"
	"errors"
	"testing"

	"kivo/internal/domain"
	"kivo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func setupCatalogService(t *testing.T) (CatalogService, *mockProductRepository) {
	t.Helper()
	productRepo := newMockProductRepository()
	return NewCatalogService(productRepo, 5, fixedClock), productRepo
}

func validProductInput() CreateProductInput {
	return CreateProductInput{
		Name:        "Pour-over Kettle",
		Description: "Gooseneck spout, 1L",
		Price:       decimal.RequireFromString("39.90"),
		Stock:       8,
		Category:    "kitchen",
	}
}

func TestCreateProduct(t *testing.T) {
	svc, _ := setupCatalogService(t)

	created, err := svc.Create(context.Background(), validProductInput())
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("created product should be assigned an id")
	}
	if created.Category != "kitchen" {
		t.Errorf("category = %q, want kitchen", created.Category)
	}
	if !created.CreatedAt.Equal(testNow) {
		t.Errorf("created_at = %v, want %v", created.CreatedAt, testNow)
	}
}

func TestCreateProductDefaultsCategory(t *testing.T) {
	svc, _ := setupCatalogService(t)

	input := validProductInput()
	input.Category = ""

	created, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if created.Category != domain.DefaultCategory {
		t.Errorf("category = %q, want %q", created.Category, domain.DefaultCategory)
	}
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(in *CreateProductInput)
		wantReason string
	}{
		{
			name:       "missing name",
			mutate:     func(in *CreateProductInput) { in.Name = "" },
			wantReason: domain.ReasonIncomplete,
		},
		{
			name:       "missing description",
			mutate:     func(in *CreateProductInput) { in.Description = "" },
			wantReason: domain.ReasonIncomplete,
		},
		{
			name:       "zero price",
			mutate:     func(in *CreateProductInput) { in.Price = decimal.Zero },
			wantReason: domain.ReasonInvalidPrice,
		},
		{
			name:       "negative price",
			mutate:     func(in *CreateProductInput) { in.Price = decimal.RequireFromString("-1.00") },
			wantReason: domain.ReasonInvalidPrice,
		},
		{
			name:       "negative stock",
			mutate:     func(in *CreateProductInput) { in.Stock = -1 },
			wantReason: domain.ReasonInvalidStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupCatalogService(t)

			input := validProductInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), input)

			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", validationErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := setupCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProductInput())
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	newPrice := decimal.RequireFromString("44.90")
	newStock := 3
	updated, err := svc.Update(ctx, created.ID, UpdateProductPatch{
		Price: &newPrice,
		Stock: &newStock,
	})
	if err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}

	if !updated.Price.Equal(newPrice) {
		t.Errorf("price = %s, want %s", updated.Price, newPrice)
	}
	if updated.Stock != 3 {
		t.Errorf("stock = %d, want 3", updated.Stock)
	}
	if updated.Name != created.Name {
		t.Error("unpatched name should be unchanged")
	}
}

func TestUpdateProductRejectsInvalidPatch(t *testing.T) {
	svc, _ := setupCatalogService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validProductInput())
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	badPrice := decimal.Zero
	_, err = svc.Update(ctx, created.ID, UpdateProductPatch{Price: &badPrice})
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Reason != domain.ReasonInvalidPrice {
		t.Errorf("expected invalid_price, got %v", err)
	}

	badStock := -5
	_, err = svc.Update(ctx, created.ID, UpdateProductPatch{Stock: &badStock})
	if !errors.As(err, &validationErr) || validationErr.Reason != domain.ReasonInvalidStock {
		t.Errorf("expected invalid_stock, got %v", err)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _ := setupCatalogService(t)

	name := "renamed"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateProductPatch{Name: &name})

	var notFoundErr *domain.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFoundErr.Resource != "product" {
		t.Errorf("resource = %q, want product", notFoundErr.Resource)
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, _ := setupCatalogService(t)

	err := svc.Delete(context.Background(), uuid.New())

	var notFoundErr *domain.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLowStockUsesConfiguredThreshold(t *testing.T) {
	svc, _ := setupCatalogService(t)
	ctx := context.Background()

	stocks := []int{0, 4, 5, 20}
	for _, stock := range stocks {
		input := validProductInput()
		input.Stock = stock
		if _, err := svc.Create(ctx, input); err != nil {
			t.Fatalf("failed to create product with stock %d: %v", stock, err)
		}
	}

	low, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("expected low stock listing to succeed, got %v", err)
	}

	// Threshold is 5, strictly below counts
	if len(low) != 2 {
		t.Fatalf("low stock count = %d, want 2", len(low))
	}
	for _, p := range low {
		if p.Stock >= 5 {
			t.Errorf("product with stock %d should not be in the low stock list", p.Stock)
		}
	}
}

func TestListProductsFilter(t *testing.T) {
	svc, _ := setupCatalogService(t)
	ctx := context.Background()

	fixtures := []CreateProductInput{
		{Name: "Espresso Machine", Description: "19 bar", Price: decimal.RequireFromString("250.00"), Stock: 3, Category: "home"},
		{Name: "Pour-over Kettle", Description: "Gooseneck", Price: decimal.RequireFromString("39.90"), Stock: 8, Category: "kitchen"},
		{Name: "Burr Grinder", Description: "Conical burrs for espresso", Price: decimal.RequireFromString("89.00"), Stock: 5, Category: "kitchen"},
	}
	for _, input := range fixtures {
		if _, err := svc.Create(ctx, input); err != nil {
			t.Fatalf("failed to create %q: %v", input.Name, err)
		}
	}

	kitchen, err := svc.List(ctx, repository.ProductFilter{Category: "kitchen"})
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(kitchen) != 2 {
		t.Errorf("kitchen products = %d, want 2", len(kitchen))
	}

	// Search matches name or description, case-insensitively
	matched, err := svc.List(ctx, repository.ProductFilter{Search: "espresso"})
	if err != nil {
		t.Fatalf("expected search to succeed, got %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("espresso matches = %d, want 2", len(matched))
	}
}
