package services

import (
	"encoding/json"
	"log"
	"time"
)

type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// AuditLogger writes one structured line per balance-changing operation.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogPurchase(orderID int64, userID string, productID, price, newBalance int64) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "PURCHASE",
		UserID:    userID,
		Amount:    -price,
		Status:    "SUCCESS",
		Details: map[string]int64{
			"order_id":    orderID,
			"product_id":  productID,
			"new_balance": newBalance,
		},
	})
}

func (a *AuditLogger) LogTopup(userID, pin string, amount, newBalance int64) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "TOPUP",
		UserID:    userID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details: map[string]any{
			"pin":         pin,
			"new_balance": newBalance,
		},
	})
}

func (a *AuditLogger) LogAdjustment(userID, kind string, delta, newBalance int64) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: kind,
		UserID:    userID,
		Amount:    delta,
		Status:    "SUCCESS",
		Details:   map[string]int64{"new_balance": newBalance},
	})
}

func (a *AuditLogger) LogStockAdded(productID int64, count int) {
	a.log(AuditEvent{
		Timestamp: time.Now(),
		EventType: "STOCK_ADDED",
		Status:    "SUCCESS",
		Details: map[string]int64{
			"product_id": productID,
			"count":      int64(count),
		},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
