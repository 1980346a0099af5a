package transport

import (
	"net/http"
	"time"

	"kivo/internal/middleware"
	"kivo/internal/repository"
	"kivo/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductRequest represents the product update payload; absent fields
// are left unchanged
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

// CreatePromotionRequest represents the promotion creation payload.
// Discount range and date ordering are enforced by the promotion service so
// its error taxonomy reaches the client.
type CreatePromotionRequest struct {
	Title           string    `json:"title" validate:"omitempty,max=200"`
	ProductID       string    `json:"product_id" validate:"omitempty,uuid"`
	DiscountPercent int       `json:"discount_percent"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// UpdatePromotionRequest represents the promotion update payload
type UpdatePromotionRequest struct {
	Title           *string    `json:"title" validate:"omitempty,max=200"`
	DiscountPercent *int       `json:"discount_percent"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
}

// DashboardMetrics summarizes the catalog for the admin dashboard
type DashboardMetrics struct {
	TotalProducts    int             `json:"total_products"`
	TotalPromotions  int             `json:"total_promotions"`
	ActivePromotions int             `json:"active_promotions"`
	LowStockCount    int             `json:"low_stock_count"`
	TotalStock       int             `json:"total_stock"`
	AveragePrice     decimal.Decimal `json:"average_price"`
}

// AdminHandler handles the admin dashboard endpoints. All routes are
// registered behind the auth and admin-gate middleware.
type AdminHandler struct {
	catalog    service.CatalogService
	promotions service.PromotionService
	logger     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(catalog service.CatalogService, promotions service.PromotionService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:    catalog,
		promotions: promotions,
		logger:     logger,
	}
}

// RegisterRoutes registers the admin routes behind the provided middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, rateLimitMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		if rateLimitMiddleware != nil {
			r.Use(rateLimitMiddleware)
		}

		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/promotions", h.ListPromotions)
		r.Post("/promotions", h.CreatePromotion)
		r.Put("/promotions/{id}", h.UpdatePromotion)
		r.Delete("/promotions/{id}", h.DeletePromotion)

		r.Get("/metrics", h.GetMetrics)
	})
}

// CreateProduct handles product creation
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.Create(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.logger.Debug("Product creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "product created",
		Data:    product,
	})
}

// UpdateProduct handles product updates
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.Update(r.Context(), id, service.UpdateProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.logger.Debug("Product update failed", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "product updated",
		Data:    product,
	})
}

// DeleteProduct handles product deletion. Promotions referencing the
// product are removed with it.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.logger.Debug("Product deletion failed", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "product deleted",
	})
}

// ListPromotions returns all promotions, newest first
func (h *AdminHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list promotions", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    promotions,
		Count:   len(promotions),
	})
}

// CreatePromotion handles promotion creation attributed to the calling admin
func (h *AdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePromotionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Promotion creation validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := uuid.Nil
	if req.ProductID != "" {
		productID, _ = uuid.Parse(req.ProductID)
	}

	promotion, err := h.promotions.Create(r.Context(), service.CreatePromotionInput{
		Title:           req.Title,
		ProductID:       productID,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}, principal.ProfileID)
	if err != nil {
		h.logger.Debug("Promotion creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Promotion created",
		zap.String("promotion_id", promotion.ID.String()),
		zap.String("product_id", promotion.ProductID.String()),
		zap.Int("discount_percent", promotion.DiscountPercent),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Message: "promotion created",
		Data:    promotion,
	})
}

// UpdatePromotion handles promotion updates
func (h *AdminHandler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promotion ID")
		return
	}

	var req UpdatePromotionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Promotion update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promotion, err := h.promotions.Update(r.Context(), id, service.UpdatePromotionPatch{
		Title:           req.Title,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		h.logger.Debug("Promotion update failed", zap.Error(err), zap.String("promotion_id", id.String()))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "promotion updated",
		Data:    promotion,
	})
}

// DeletePromotion handles promotion deletion. Repeating a delete reports
// not-found, not success.
func (h *AdminHandler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid promotion ID")
		return
	}

	if err := h.promotions.Delete(r.Context(), id); err != nil {
		h.logger.Debug("Promotion deletion failed", zap.Error(err), zap.String("promotion_id", id.String()))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Promotion deleted", zap.String("promotion_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "promotion deleted",
	})
}

// GetMetrics returns the dashboard summary
func (h *AdminHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context(), repository.ProductFilter{})
	if err != nil {
		h.logger.Error("Failed to load products for metrics", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	promotions, err := h.promotions.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to load promotions for metrics", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	active, err := h.promotions.ListActive(r.Context())
	if err != nil {
		h.logger.Error("Failed to load active promotions for metrics", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	lowStock, err := h.catalog.LowStock(r.Context())
	if err != nil {
		h.logger.Error("Failed to load low stock products for metrics", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	metrics := DashboardMetrics{
		TotalProducts:    len(products),
		TotalPromotions:  len(promotions),
		ActivePromotions: len(active),
		LowStockCount:    len(lowStock),
		AveragePrice:     decimal.Zero,
	}
	totalPrice := decimal.Zero
	for _, p := range products {
		metrics.TotalStock += p.Stock
		totalPrice = totalPrice.Add(p.Price)
	}
	if len(products) > 0 {
		metrics.AveragePrice = totalPrice.Div(decimal.NewFromInt(int64(len(products)))).RoundBank(2)
	}

	middleware.RespondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    metrics,
	})
}
