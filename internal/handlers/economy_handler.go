package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/sw0nx/WIND-BOT/internal/models"
	"github.com/sw0nx/WIND-BOT/internal/services"
)

// Service surfaces the handlers depend on; the concrete implementations
// live in internal/services.

type LedgerAPI interface {
	GetBalance(userID string) (int64, error)
	Adjust(userID string, delta int64, kind, metadata string) (int64, error)
	ListEntries(userID string, limit int) ([]models.LedgerEntry, error)
}

type CatalogAPI interface {
	ListCatalog() ([]models.CatalogItem, error)
	CreateProduct(name string, price int64) (int64, error)
	SetProductEnabled(productID int64, enabled bool) error
	AddStock(productID int64, codes []string) (int, error)
}

type PurchaseAPI interface {
	Purchase(userID string, productID int64) (*services.PurchaseResult, error)
	ListOrders(userID string, limit int) ([]models.Order, error)
}

type RedemptionAPI interface {
	Redeem(userID, pin string) (int64, int64, error)
	CreatePin(pin string, amount int64) error
}

// EconomyHandler serves the user-facing economy endpoints.
type EconomyHandler struct {
	ledger    LedgerAPI
	catalog   CatalogAPI
	purchases PurchaseAPI
	pins      RedemptionAPI
	validator *ValidationHelper
}

func NewEconomyHandler(ledger LedgerAPI, catalog CatalogAPI, purchases PurchaseAPI, pins RedemptionAPI) *EconomyHandler {
	return &EconomyHandler{
		ledger:    ledger,
		catalog:   catalog,
		purchases: purchases,
		pins:      pins,
		validator: NewValidationHelper(),
	}
}

// GetBalance returns the caller's balance
// @Summary Get my balance
// @Description Returns the caller's current balance, creating the account at 0 on first contact
// @Tags economy
// @Produce json
// @Success 200 {object} object{user_id=string,balance=int64}
// @Failure 503 {object} ErrorResponse
// @Router /balance [get]
func (h *EconomyHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	balance, err := h.ledger.GetBalance(userID)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"balance": balance,
	})
}

// ListCatalog returns the purchasable products
// @Summary List the catalog
// @Description Enabled products with live remaining stock counts
// @Tags economy
// @Produce json
// @Success 200 {object} object{products=[]models.CatalogItem,count=int}
// @Failure 503 {object} ErrorResponse
// @Router /catalog [get]
func (h *EconomyHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListCatalog()
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": items,
		"count":    len(items),
	})
}

// Purchase buys one unit of a product
// @Summary Purchase a product
// @Description Debits the caller and allocates one stock code atomically
// @Tags economy
// @Accept json
// @Produce json
// @Param purchase body object{product_id=int64} true "Product to buy"
// @Success 201 {object} services.PurchaseResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /purchase [post]
func (h *EconomyHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		ProductID int64 `json:"product_id" validate:"required,gt=0"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.purchases.Purchase(userID, req.ProductID)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// RedeemPin redeems a top-up pin
// @Summary Redeem a top-up pin
// @Description Consumes the pin and credits the caller in one transaction
// @Tags economy
// @Accept json
// @Produce json
// @Param redeem body object{pin=string} true "Pin to redeem"
// @Success 200 {object} object{amount_credited=int64,new_balance=int64}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /pins/redeem [post]
func (h *EconomyHandler) RedeemPin(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Pin string `json:"pin" validate:"required,min=4,max=64"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	amount, newBalance, err := h.pins.Redeem(userID, req.Pin)
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"amount_credited": amount,
		"new_balance":     newBalance,
	})
}

// ListLedger returns the caller's ledger entries
// @Summary List my ledger entries
// @Tags economy
// @Produce json
// @Param limit query int false "Number of entries (default 50, max 100)"
// @Success 200 {object} object{entries=[]models.LedgerEntry,count=int}
// @Router /ledger [get]
func (h *EconomyHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entries, err := h.ledger.ListEntries(userID, queryLimit(r))
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// ListOrders returns the caller's orders
// @Summary List my orders
// @Tags economy
// @Produce json
// @Param limit query int false "Number of orders (default 50, max 100)"
// @Success 200 {object} object{orders=[]models.Order,count=int}
// @Router /orders [get]
func (h *EconomyHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	orders, err := h.purchases.ListOrders(userID, queryLimit(r))
	if err != nil {
		SendDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}

// decodeJSON reads a single JSON object from the body, rejecting unknown
// fields and trailing content. Returns false after writing the error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	return true
}

func queryLimit(r *http.Request) int {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}
	return limit
}
