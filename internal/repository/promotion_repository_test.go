package repository

import (
	"context"
	"testing"
	"time"

	"kivo/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func insertTestPromotion(t *testing.T, productID, createdBy uuid.UUID, percent int, startsAt, endsAt time.Time) *domain.Promotion {
	t.Helper()
	promotion := &domain.Promotion{
		ID:              uuid.New(),
		Title:           "seeded",
		ProductID:       productID,
		DiscountPercent: percent,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now().UTC(),
	}
	repo := NewPromotionRepository(testDB)
	if err := repo.Create(context.Background(), promotion); err != nil {
		t.Fatalf("failed to insert promotion: %v", err)
	}
	return promotion
}

func TestPromotionFindByIDJoinsProduct(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)
	ctx := context.Background()

	admin := insertTestProfile(t)
	product := insertTestProduct(t, "Espresso Machine", "250.00", "home", 3)
	now := time.Now().UTC()
	created := insertTestPromotion(t, product.ID, admin.ID, 25, now, now.Add(24*time.Hour))

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to find promotion: %v", err)
	}

	if found.Title != "seeded" {
		t.Errorf("title = %q, want seeded", found.Title)
	}
	if found.DiscountPercent != 25 {
		t.Errorf("discount = %d, want 25", found.DiscountPercent)
	}
	if found.Product.ID != product.ID {
		t.Error("joined product id should match")
	}
	if found.Product.Name != product.Name {
		t.Errorf("joined product name = %q, want %q", found.Product.Name, product.Name)
	}
	if !found.Product.Price.Equal(product.Price) {
		t.Errorf("joined product price = %s, want %s", found.Product.Price, product.Price)
	}
}

func TestPromotionCreateBrokenReference(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)

	admin := insertTestProfile(t)
	now := time.Now().UTC()

	promotion := &domain.Promotion{
		ID:              uuid.New(),
		Title:           "orphan",
		ProductID:       uuid.New(),
		DiscountPercent: 25,
		StartsAt:        now,
		EndsAt:          now.Add(24 * time.Hour),
		CreatedBy:       admin.ID,
		CreatedAt:       now,
	}

	if err := repo.Create(context.Background(), promotion); err != ErrProductReferenceBroken {
		t.Errorf("create with missing product = %v, want ErrProductReferenceBroken", err)
	}
}

func TestProperty_ListActiveMatchesWindowBounds(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)
	ctx := context.Background()

	admin := insertTestProfile(t)
	product := insertTestProduct(t, "Espresso Machine", "250.00", "home", 3)
	reference := time.Now().UTC().Truncate(time.Microsecond)

	properties := gopter.NewProperties(nil)

	properties.Property("a promotion is listed as active iff the reference instant is inside its window", prop.ForAll(
		func(startOffsetHours int, durationHours int) bool {
			startsAt := reference.Add(time.Duration(startOffsetHours) * time.Hour)
			endsAt := startsAt.Add(time.Duration(durationHours) * time.Hour)

			promotion := insertTestPromotion(t, product.ID, admin.ID, 10, startsAt, endsAt)
			defer func() {
				_, _ = testDB.Exec("DELETE FROM promotions WHERE id = $1", promotion.ID)
			}()

			active, err := repo.ListActive(ctx, reference)
			if err != nil {
				return false
			}

			listed := false
			for _, p := range active {
				if p.ID == promotion.ID {
					listed = true
				}
			}

			inWindow := !reference.Before(startsAt) && !reference.After(endsAt)
			return listed == inWindow
		},
		gen.IntRange(-72, 72),
		gen.IntRange(1, 48),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPromotionListActiveIncludesBoundaries(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)
	ctx := context.Background()

	admin := insertTestProfile(t)
	product := insertTestProduct(t, "Espresso Machine", "250.00", "home", 3)
	reference := time.Now().UTC().Truncate(time.Microsecond)

	// Window boundaries are inclusive on both ends
	starting := insertTestPromotion(t, product.ID, admin.ID, 10, reference, reference.Add(time.Hour))
	ending := insertTestPromotion(t, product.ID, admin.ID, 20, reference.Add(-time.Hour), reference)

	active, err := repo.ListActive(ctx, reference)
	if err != nil {
		t.Fatalf("failed to list active promotions: %v", err)
	}

	found := map[uuid.UUID]bool{}
	for _, p := range active {
		found[p.ID] = true
	}
	if !found[starting.ID] {
		t.Error("promotion starting exactly at the reference instant should be active")
	}
	if !found[ending.ID] {
		t.Error("promotion ending exactly at the reference instant should be active")
	}
}

func TestPromotionListByProductOrder(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)
	ctx := context.Background()

	admin := insertTestProfile(t)
	product := insertTestProduct(t, "Espresso Machine", "250.00", "home", 3)
	other := insertTestProduct(t, "Burr Grinder", "89.00", "kitchen", 5)
	now := time.Now().UTC()

	insertTestPromotion(t, product.ID, admin.ID, 10, now, now.Add(time.Hour))
	insertTestPromotion(t, product.ID, admin.ID, 40, now, now.Add(time.Hour))
	insertTestPromotion(t, product.ID, admin.ID, 25, now, now.Add(time.Hour))
	insertTestPromotion(t, other.ID, admin.ID, 99, now, now.Add(time.Hour))

	promotions, err := repo.ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("failed to list by product: %v", err)
	}

	if len(promotions) != 3 {
		t.Fatalf("promotions = %d, want 3", len(promotions))
	}
	// Highest discount first
	wantOrder := []int{40, 25, 10}
	for i, want := range wantOrder {
		if promotions[i].DiscountPercent != want {
			t.Errorf("promotion %d discount = %d, want %d", i, promotions[i].DiscountPercent, want)
		}
	}
}

func TestPromotionUpdatePersistsPatchedFields(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)
	ctx := context.Background()

	admin := insertTestProfile(t)
	product := insertTestProduct(t, "Espresso Machine", "250.00", "home", 3)
	now := time.Now().UTC().Truncate(time.Microsecond)
	created := insertTestPromotion(t, product.ID, admin.ID, 25, now, now.Add(24*time.Hour))

	created.Title = "Extended Flash"
	created.DiscountPercent = 30
	created.EndsAt = now.Add(72 * time.Hour)

	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("failed to update promotion: %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("failed to reload promotion: %v", err)
	}
	if found.Title != "Extended Flash" {
		t.Errorf("title = %q, want Extended Flash", found.Title)
	}
	if found.DiscountPercent != 30 {
		t.Errorf("discount = %d, want 30", found.DiscountPercent)
	}
	if !found.EndsAt.Equal(created.EndsAt) {
		t.Errorf("ends_at = %v, want %v", found.EndsAt, created.EndsAt)
	}
}

func TestPromotionDeleteMissingRow(t *testing.T) {
	cleanTables(t)
	repo := NewPromotionRepository(testDB)

	if err := repo.Delete(context.Background(), uuid.New()); err != ErrPromotionNotFound {
		t.Errorf("delete of missing row = %v, want ErrPromotionNotFound", err)
	}

	ghost := &domain.Promotion{ID: uuid.New(), Title: "ghost", StartsAt: time.Now(), EndsAt: time.Now().Add(time.Hour)}
	if err := repo.Update(context.Background(), ghost); err != ErrPromotionNotFound {
		t.Errorf("update of missing row = %v, want ErrPromotionNotFound", err)
	}
}
