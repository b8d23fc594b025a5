package handlers

import (
	"github.com/stretchr/testify/mock"
	"github.com/sw0nx/WIND-BOT/internal/models"
	"github.com/sw0nx/WIND-BOT/internal/services"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetBalance(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) Adjust(userID string, delta int64, kind, metadata string) (int64, error) {
	args := m.Called(userID, delta, kind, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedger) ListEntries(userID string, limit int) ([]models.LedgerEntry, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListCatalog() ([]models.CatalogItem, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CatalogItem), args.Error(1)
}

func (m *MockCatalog) CreateProduct(name string, price int64) (int64, error) {
	args := m.Called(name, price)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalog) SetProductEnabled(productID int64, enabled bool) error {
	args := m.Called(productID, enabled)
	return args.Error(0)
}

func (m *MockCatalog) AddStock(productID int64, codes []string) (int, error) {
	args := m.Called(productID, codes)
	return args.Int(0), args.Error(1)
}

type MockPurchases struct {
	mock.Mock
}

func (m *MockPurchases) Purchase(userID string, productID int64) (*services.PurchaseResult, error) {
	args := m.Called(userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PurchaseResult), args.Error(1)
}

func (m *MockPurchases) ListOrders(userID string, limit int) ([]models.Order, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockRedemption struct {
	mock.Mock
}

func (m *MockRedemption) Redeem(userID, pin string) (int64, int64, error) {
	args := m.Called(userID, pin)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockRedemption) CreatePin(pin string, amount int64) error {
	args := m.Called(pin, amount)
	return args.Error(0)
}
