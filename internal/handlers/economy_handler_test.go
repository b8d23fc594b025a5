package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sw0nx/WIND-BOT/internal/models"
	"github.com/sw0nx/WIND-BOT/internal/services"
)

func newEconomyHandler(ledger *MockLedger, catalog *MockCatalog, purchases *MockPurchases, pins *MockRedemption) *EconomyHandler {
	return NewEconomyHandler(ledger, catalog, purchases, pins)
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func TestEconomyHandler_GetBalance(t *testing.T) {
	t.Run("returns the balance", func(t *testing.T) {
		ledger := &MockLedger{}
		ledger.On("GetBalance", "user1").Return(int64(1000), nil)
		handler := newEconomyHandler(ledger, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

		req := authedRequest(http.MethodGet, "/api/v1/balance", nil, "user1")
		rec := httptest.NewRecorder()
		handler.GetBalance(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "user1", resp["user_id"])
		assert.Equal(t, float64(1000), resp["balance"])
		ledger.AssertExpectations(t)
	})

	t.Run("missing identity is rejected", func(t *testing.T) {
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
		rec := httptest.NewRecorder()
		handler.GetBalance(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("store failure is masked as unavailable", func(t *testing.T) {
		ledger := &MockLedger{}
		ledger.On("GetBalance", "user1").Return(int64(0), assert.AnError)
		handler := newEconomyHandler(ledger, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

		req := authedRequest(http.MethodGet, "/api/v1/balance", nil, "user1")
		rec := httptest.NewRecorder()
		handler.GetBalance(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, services.ErrStoreUnavailable.Error(), resp.Error)
	})
}

func TestEconomyHandler_ListCatalog(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("ListCatalog").Return([]models.CatalogItem{
		{ID: 1, Name: "VPN Key", Price: 700, Remaining: 3},
	}, nil)
	handler := newEconomyHandler(&MockLedger{}, catalog, &MockPurchases{}, &MockRedemption{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	rec := httptest.NewRecorder()
	handler.ListCatalog(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["count"])
	catalog.AssertExpectations(t)
}

func TestEconomyHandler_Purchase(t *testing.T) {
	t.Run("successful purchase", func(t *testing.T) {
		purchases := &MockPurchases{}
		purchases.On("Purchase", "user1", int64(3)).Return(&services.PurchaseResult{
			OrderID:    42,
			Code:       "CODE-A",
			NewBalance: 300,
		}, nil)
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, purchases, &MockRedemption{})

		body := []byte(`{"product_id": 3}`)
		req := authedRequest(http.MethodPost, "/api/v1/purchase", body, "user1")
		rec := httptest.NewRecorder()
		handler.Purchase(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp services.PurchaseResult
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "CODE-A", resp.Code)
		assert.Equal(t, int64(300), resp.NewBalance)
		purchases.AssertExpectations(t)
	})

	t.Run("insufficient funds maps to 400", func(t *testing.T) {
		purchases := &MockPurchases{}
		purchases.On("Purchase", "user1", int64(3)).Return(nil, services.ErrInsufficientFunds)
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, purchases, &MockRedemption{})

		req := authedRequest(http.MethodPost, "/api/v1/purchase", []byte(`{"product_id": 3}`), "user1")
		rec := httptest.NewRecorder()
		handler.Purchase(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INSUFFICIENT_FUNDS", resp.Code)
	})

	t.Run("out of stock maps to 409", func(t *testing.T) {
		purchases := &MockPurchases{}
		purchases.On("Purchase", "user1", int64(3)).Return(nil, services.ErrOutOfStock)
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, purchases, &MockRedemption{})

		req := authedRequest(http.MethodPost, "/api/v1/purchase", []byte(`{"product_id": 3}`), "user1")
		rec := httptest.NewRecorder()
		handler.Purchase(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "OUT_OF_STOCK", resp.Code)
	})

	t.Run("missing product_id fails validation", func(t *testing.T) {
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

		req := authedRequest(http.MethodPost, "/api/v1/purchase", []byte(`{}`), "user1")
		rec := httptest.NewRecorder()
		handler.Purchase(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

		req := authedRequest(http.MethodPost, "/api/v1/purchase", []byte(`{"product_id": 3, "bogus": true}`), "user1")
		rec := httptest.NewRecorder()
		handler.Purchase(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEconomyHandler_RedeemPin(t *testing.T) {
	t.Run("successful redemption", func(t *testing.T) {
		pins := &MockRedemption{}
		pins.On("Redeem", "user1", "ABCD-1111").Return(int64(500), int64(1500), nil)
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, pins)

		req := authedRequest(http.MethodPost, "/api/v1/pins/redeem", []byte(`{"pin": "ABCD-1111"}`), "user1")
		rec := httptest.NewRecorder()
		handler.RedeemPin(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, float64(500), resp["amount_credited"])
		assert.Equal(t, float64(1500), resp["new_balance"])
		pins.AssertExpectations(t)
	})

	t.Run("unknown pin maps to 404", func(t *testing.T) {
		pins := &MockRedemption{}
		pins.On("Redeem", "user1", "NOPE-0000").Return(int64(0), int64(0), services.ErrPinInvalid)
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, pins)

		req := authedRequest(http.MethodPost, "/api/v1/pins/redeem", []byte(`{"pin": "NOPE-0000"}`), "user1")
		rec := httptest.NewRecorder()
		handler.RedeemPin(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("used pin maps to 409", func(t *testing.T) {
		pins := &MockRedemption{}
		pins.On("Redeem", "user1", "ABCD-1111").Return(int64(0), int64(0), services.ErrPinAlreadyUsed)
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, pins)

		req := authedRequest(http.MethodPost, "/api/v1/pins/redeem", []byte(`{"pin": "ABCD-1111"}`), "user1")
		rec := httptest.NewRecorder()
		handler.RedeemPin(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short pin fails validation", func(t *testing.T) {
		handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

		req := authedRequest(http.MethodPost, "/api/v1/pins/redeem", []byte(`{"pin": "ab"}`), "user1")
		rec := httptest.NewRecorder()
		handler.RedeemPin(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEconomyHandler_ListLedger(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("ListEntries", "user1", 10).Return([]models.LedgerEntry{
		{ID: 2, UserID: "user1", Kind: models.KindPurchase, Amount: -700},
		{ID: 1, UserID: "user1", Kind: models.KindTopup, Amount: 1000},
	}, nil)
	handler := newEconomyHandler(ledger, &MockCatalog{}, &MockPurchases{}, &MockRedemption{})

	req := authedRequest(http.MethodGet, "/api/v1/ledger?limit=10", nil, "user1")
	rec := httptest.NewRecorder()
	handler.ListLedger(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["count"])
	ledger.AssertExpectations(t)
}

func TestEconomyHandler_ListOrders(t *testing.T) {
	purchases := &MockPurchases{}
	purchases.On("ListOrders", "user1", 50).Return([]models.Order{
		{ID: 42, UserID: "user1", ProductID: 3, Price: 700, CodeID: 7},
	}, nil)
	handler := newEconomyHandler(&MockLedger{}, &MockCatalog{}, purchases, &MockRedemption{})

	req := authedRequest(http.MethodGet, "/api/v1/orders", nil, "user1")
	rec := httptest.NewRecorder()
	handler.ListOrders(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["count"])
	purchases.AssertExpectations(t)
}
