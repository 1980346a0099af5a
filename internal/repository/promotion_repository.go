package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kivo/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")

	// ErrProductReferenceBroken is returned when a promotion write hits the
	// products foreign key, i.e. the product was deleted between the
	// service's existence check and the insert. The constraint is the
	// backstop for that race.
	ErrProductReferenceBroken = errors.New("promotion references a missing product")
)

// PromotionRepository defines the interface for promotion data access.
// Reads return promotions joined with their product summary; activation state
// is never persisted and must be derived by the caller.
type PromotionRepository interface {
	Create(ctx context.Context, promotion *domain.Promotion) error
	Update(ctx context.Context, promotion *domain.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PromotionWithProduct, error)
	List(ctx context.Context) ([]*domain.PromotionWithProduct, error)
	ListActive(ctx context.Context, now time.Time) ([]*domain.PromotionWithProduct, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Promotion, error)
}

type promotionRepository struct {
	db *sql.DB
}

// NewPromotionRepository creates a new instance of PromotionRepository
func NewPromotionRepository(db *sql.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

const promotionJoinQuery = `
	SELECT pr.id, pr.title, pr.product_id, pr.discount_percent,
	       pr.starts_at, pr.ends_at, pr.created_by, pr.created_at,
	       p.id, p.name, p.price, p.image_url
	FROM promotions pr
	JOIN products p ON p.id = pr.product_id
`

// Create inserts a new promotion using parameterized queries
func (r *promotionRepository) Create(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		INSERT INTO promotions (id, title, product_id, discount_percent, starts_at, ends_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.Title,
		promotion.ProductID,
		promotion.DiscountPercent,
		promotion.StartsAt,
		promotion.EndsAt,
		promotion.CreatedBy,
		promotion.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductReferenceBroken
		}
		return fmt.Errorf("failed to create promotion: %w", err)
	}

	return nil
}

// Update writes the full promotion record. Last write wins on concurrent
// edits of the same id; promotions are low-contention, human-edited records.
func (r *promotionRepository) Update(ctx context.Context, promotion *domain.Promotion) error {
	query := `
		UPDATE promotions
		SET title = $2, discount_percent = $3, starts_at = $4, ends_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		promotion.ID,
		promotion.Title,
		promotion.DiscountPercent,
		promotion.StartsAt,
		promotion.EndsAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromotionNotFound
	}

	return nil
}

// Delete removes a promotion. Deleting an already-deleted id reports
// ErrPromotionNotFound, not success.
func (r *promotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM promotions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPromotionNotFound
	}

	return nil
}

// FindByID retrieves a promotion joined with its product summary
func (r *promotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PromotionWithProduct, error) {
	query := promotionJoinQuery + ` WHERE pr.id = $1`

	promotion, err := scanPromotionWithProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("failed to find promotion by ID: %w", err)
	}

	return promotion, nil
}

// List retrieves all promotions with product summaries, newest first
func (r *promotionRepository) List(ctx context.Context) ([]*domain.PromotionWithProduct, error) {
	query := promotionJoinQuery + ` ORDER BY pr.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	defer rows.Close()

	return scanPromotionsWithProduct(rows)
}

// ListActive retrieves promotions whose window contains the given instant,
// newest first. The window test mirrors domain.Promotion.ActiveAt.
func (r *promotionRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.PromotionWithProduct, error) {
	query := promotionJoinQuery + `
		WHERE pr.starts_at <= $1 AND pr.ends_at >= $1
		ORDER BY pr.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active promotions: %w", err)
	}
	defer rows.Close()

	return scanPromotionsWithProduct(rows)
}

// ListByProduct retrieves all promotions referencing a product, highest
// discount first. Activation filtering is left to the evaluator so callers
// can supply their own reference instant.
func (r *promotionRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Promotion, error) {
	query := `
		SELECT id, title, product_id, discount_percent, starts_at, ends_at, created_by, created_at
		FROM promotions
		WHERE product_id = $1
		ORDER BY discount_percent DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions by product: %w", err)
	}
	defer rows.Close()

	promotions := []*domain.Promotion{}
	for rows.Next() {
		promotion := &domain.Promotion{}
		err := rows.Scan(
			&promotion.ID,
			&promotion.Title,
			&promotion.ProductID,
			&promotion.DiscountPercent,
			&promotion.StartsAt,
			&promotion.EndsAt,
			&promotion.CreatedBy,
			&promotion.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, promotion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promotions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPromotionWithProduct(row rowScanner) (*domain.PromotionWithProduct, error) {
	promotion := &domain.PromotionWithProduct{}
	err := row.Scan(
		&promotion.ID,
		&promotion.Title,
		&promotion.ProductID,
		&promotion.DiscountPercent,
		&promotion.StartsAt,
		&promotion.EndsAt,
		&promotion.CreatedBy,
		&promotion.CreatedAt,
		&promotion.Product.ID,
		&promotion.Product.Name,
		&promotion.Product.Price,
		&promotion.Product.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return promotion, nil
}

func scanPromotionsWithProduct(rows *sql.Rows) ([]*domain.PromotionWithProduct, error) {
	promotions := []*domain.PromotionWithProduct{}
	for rows.Next() {
		promotion, err := scanPromotionWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promotion: %w", err)
		}
		promotions = append(promotions, promotion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promotions: %w", err)
	}

	return promotions, nil
}

// isForeignKeyViolation reports whether the error is a Postgres foreign key
// violation (SQLSTATE 23503)
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
