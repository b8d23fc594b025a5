package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sw0nx/WIND-BOT/internal/models"
)

// AdminHandler serves the administrative endpoints: product registration,
// stock loading, pin creation and balance adjustments. Routes are mounted
// behind the admin-claim middleware.
type AdminHandler struct {
	ledger    LedgerAPI
	catalog   CatalogAPI
	pins      RedemptionAPI
	validator *ValidationHelper
}

func NewAdminHandler(ledger LedgerAPI, catalog CatalogAPI, pins RedemptionAPI) *AdminHandler {
	return &AdminHandler{
		ledger:    ledger,
		catalog:   catalog,
		pins:      pins,
		validator: NewValidationHelper(),
	}
}

// CreateProduct registers a new product
// @Summary Create a product
// @Tags admin
// @Accept json
// @Produce json
// @Param product body object{name=string,price=int64} true "Product definition"
// @Success 201 {object} object{product_id=int64}
// @Failure 409 {object} ErrorResponse
// @Router /admin/products [post]
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name" validate:"required,max=100"`
		Price int64  `json:"price" validate:"required,gt=0"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	productID, err := h.catalog.CreateProduct(req.Name, req.Price)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"product_id": productID})
}

// SetProductEnabled shows or hides a product in the catalog
// @Summary Enable or disable a product
// @Description Disabling hides the product from the catalog; existing orders and remaining codes are untouched
// @Tags admin
// @Accept json
// @Produce json
// @Param productID path int true "Product ID"
// @Param body body object{enabled=bool} true "New state"
// @Success 200 {object} object{product_id=int64,enabled=bool}
// @Failure 404 {object} ErrorResponse
// @Router /admin/products/{productID}/enabled [put]
func (h *AdminHandler) SetProductEnabled(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req struct {
		Enabled *bool `json:"enabled" validate:"required"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := h.catalog.SetProductEnabled(productID, *req.Enabled); err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": productID,
		"enabled":    *req.Enabled,
	})
}

// AddStock loads stock codes for a product
// @Summary Add stock codes
// @Description Bulk-inserts single-use codes; each entry becomes its own allocation unit
// @Tags admin
// @Accept json
// @Produce json
// @Param productID path int true "Product ID"
// @Param stock body object{codes=[]string} true "Code payloads"
// @Success 201 {object} object{count_added=int}
// @Failure 404 {object} ErrorResponse
// @Router /admin/products/{productID}/stock [post]
func (h *AdminHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req struct {
		Codes []string `json:"codes" validate:"required,min=1,dive,max=128"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	count, err := h.catalog.AddStock(productID, req.Codes)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"count_added": count})
}

// CreatePin registers a new top-up pin
// @Summary Create a top-up pin
// @Tags admin
// @Accept json
// @Produce json
// @Param pin body object{pin=string,amount=int64} true "Pin definition"
// @Success 201 {object} object{pin=string,amount=int64}
// @Failure 409 {object} ErrorResponse
// @Router /admin/pins [post]
func (h *AdminHandler) CreatePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin    string `json:"pin" validate:"required,min=4,max=64"`
		Amount int64  `json:"amount" validate:"required,gt=0"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := h.pins.CreatePin(req.Pin, req.Amount); err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"pin":    req.Pin,
		"amount": req.Amount,
	})
}

// AdjustBalance applies a signed delta to a user's balance
// @Summary Adjust a user's balance
// @Description Credits or debits a user; the acting admin is recorded in the ledger metadata
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param adjustment body object{delta=int64,kind=string} true "Signed delta and optional kind (ADMIN_ADJUST or REFUND)"
// @Success 200 {object} object{user_id=string,new_balance=int64}
// @Failure 400 {object} ErrorResponse
// @Router /admin/accounts/{userID}/adjust [post]
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actorID, ok := r.Context().Value("userID").(string)
	if !ok || actorID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		SendErrorResponse(w, "userID is required", http.StatusBadRequest, nil)
		return
	}

	var req struct {
		Delta int64  `json:"delta" validate:"required"`
		Kind  string `json:"kind" validate:"omitempty,oneof=ADMIN_ADJUST REFUND"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindAdminAdjust
	}

	newBalance, err := h.ledger.Adjust(userID, req.Delta, kind, "by="+actorID)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"new_balance": newBalance,
	})
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		SendErrorResponse(w, "invalid "+param, http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}
