// Package pricing composes products with their evaluated promotions into
// display-ready prices. Activation is recomputed against the supplied
// instant on every call; a stored "active" flag is never consulted.
package pricing

import (
	"time"

	"kivo/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductPricing is the display-ready price of a product at an instant
type ProductPricing struct {
	Product         *domain.Product   `json:"product"`
	OriginalPrice   decimal.Decimal   `json:"original_price"`
	DiscountedPrice *decimal.Decimal  `json:"discounted_price,omitempty"`
	DiscountPercent int               `json:"discount_percent,omitempty"`
	Badge           string            `json:"badge,omitempty"`
	Promotion       *domain.Promotion `json:"promotion,omitempty"`
}

// ForProduct evaluates the best active promotion for a product and returns
// its display pricing. With no active promotion only the original price is
// populated.
func ForProduct(product *domain.Product, promotions []*domain.Promotion, now time.Time) ProductPricing {
	result := ProductPricing{
		Product:       product,
		OriginalPrice: product.Price,
	}

	best := domain.BestDiscountFor(product, promotions, now)
	if best == nil {
		return result
	}

	discounted := domain.DiscountedPrice(product.Price, best.DiscountPercent)
	result.DiscountedPrice = &discounted
	result.DiscountPercent = best.DiscountPercent
	result.Badge = domain.DiscountBadge(best.DiscountPercent)
	result.Promotion = best

	return result
}

// ForCatalog prices a list of products independently against the same
// promotion set. Promotions are indexed by product id first so the
// per-product pass does not rescan the whole set.
func ForCatalog(products []*domain.Product, promotions []*domain.Promotion, now time.Time) []ProductPricing {
	byProduct := make(map[uuid.UUID][]*domain.Promotion, len(promotions))
	for _, p := range promotions {
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}

	priced := make([]ProductPricing, 0, len(products))
	for _, product := range products {
		priced = append(priced, ForProduct(product, byProduct[product.ID], now))
	}

	return priced
}
