package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Promotion represents a time-bounded percentage discount on a single product.
// Whether a promotion is active is never stored; it is derived from the
// window on every evaluation via ActiveAt.
type Promotion struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	ProductID       uuid.UUID `json:"product_id" db:"product_id"`
	DiscountPercent int       `json:"discount_percent" db:"discount_percent"`
	StartsAt        time.Time `json:"starts_at" db:"starts_at"`
	EndsAt          time.Time `json:"ends_at" db:"ends_at"`
	CreatedBy       uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// PromotionWithProduct is a promotion joined with its product summary,
// the shape returned by admin and storefront promotion reads.
type PromotionWithProduct struct {
	Promotion
	Product ProductSummary `json:"product"`
}

// PromotionStatus is the derived lifecycle state of a promotion at an instant
type PromotionStatus string

const (
	PromotionScheduled PromotionStatus = "scheduled"
	PromotionActive    PromotionStatus = "active"
	PromotionExpired   PromotionStatus = "expired"
)

// ActiveAt reports whether the promotion window contains the given instant.
// Both endpoints are inclusive: a promotion is active exactly at starts_at
// and exactly at ends_at.
func (p *Promotion) ActiveAt(now time.Time) bool {
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// StatusAt returns the derived lifecycle state at the given instant
func (p *Promotion) StatusAt(now time.Time) PromotionStatus {
	switch {
	case now.Before(p.StartsAt):
		return PromotionScheduled
	case now.After(p.EndsAt):
		return PromotionExpired
	default:
		return PromotionActive
	}
}

// FilterActive returns the promotions active at the given instant,
// preserving the input order
func FilterActive(promotions []*Promotion, now time.Time) []*Promotion {
	active := []*Promotion{}
	for _, p := range promotions {
		if p.ActiveAt(now) {
			active = append(active, p)
		}
	}
	return active
}

// BestDiscountFor returns the active promotion for the product with the
// highest discount percentage, breaking ties by most recent created_at.
// Returns nil when the product has no active promotion.
func BestDiscountFor(product *Product, promotions []*Promotion, now time.Time) *Promotion {
	var best *Promotion
	for _, p := range promotions {
		if p.ProductID != product.ID || !p.ActiveAt(now) {
			continue
		}
		if best == nil ||
			p.DiscountPercent > best.DiscountPercent ||
			(p.DiscountPercent == best.DiscountPercent && p.CreatedAt.After(best.CreatedAt)) {
			best = p
		}
	}
	return best
}

// DiscountedPrice applies a percentage discount to a price:
// price * (1 - percent/100), rounded half-to-even to 2 decimal places.
// The rounding is deterministic so repeated evaluations of the same inputs
// round-trip to the same user-visible amount.
func DiscountedPrice(price decimal.Decimal, discountPercent int) decimal.Decimal {
	factor := decimal.NewFromInt(100 - int64(discountPercent)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).RoundBank(2)
}

// DiscountBadge formats the percent-off badge text shown next to a
// discounted price, e.g. "-25%"
func DiscountBadge(discountPercent int) string {
	return fmt.Sprintf("-%d%%", discountPercent)
}
