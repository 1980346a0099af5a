package transport

import (
	"net/http"
	"strconv"

	"kivo/internal/domain"
	"kivo/internal/middleware"
	"kivo/internal/pricing"
	"kivo/internal/repository"
	"kivo/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIResponse is the storefront response envelope
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   int         `json:"count,omitempty"`
}

// ProductDetail is the payload of a product detail view: the product with
// its display pricing and the promotions currently active for it
type ProductDetail struct {
	pricing.ProductPricing
	Promotions []*domain.Promotion `json:"promotions"`
}

// ShopHandler handles the public storefront endpoints
type ShopHandler struct {
	catalog    service.CatalogService
	promotions service.PromotionService
	presenter  *service.PricingService
	logger     *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(
	catalog service.CatalogService,
	promotions service.PromotionService,
	presenter *service.PricingService,
	logger *zap.Logger,
) *ShopHandler {
	return &ShopHandler{
		catalog:    catalog,
		promotions: promotions,
		presenter:  presenter,
		logger:     logger,
	}
}

// RegisterRoutes registers the public shop routes
func (h *ShopHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/promotions/active", h.ListActivePromotions)
	})
}

// ListProducts returns the catalog with display pricing, optionally
// filtered by category and search query
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	priced, err := h.presenter.PricedCatalog(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    priced,
		Count:   len(priced),
	})
}

// GetProduct returns a single product with pricing and its active promotions
func (h *ShopHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	priced, active, err := h.presenter.PricedProduct(r.Context(), id)
	if err != nil {
		h.logger.Debug("Failed to get product", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ProductDetail{
			ProductPricing: priced,
			Promotions:     active,
		},
	})
}

// ListActivePromotions returns promotions whose window contains now,
// joined with their product summaries
func (h *ShopHandler) ListActivePromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.ListActive(r.Context())
	if err != nil {
		h.logger.Error("Failed to list active promotions", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    promotions,
		Count:   len(promotions),
	})
}
