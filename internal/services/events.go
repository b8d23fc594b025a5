package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const eventQueueKey = "economy_events"

// EconomyEvent is the record pushed to the operational queue after a
// transaction commits. The bot side drains the queue into its log channel.
type EconomyEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	Amount     int64     `json:"amount"`
	NewBalance int64     `json:"new_balance"`
	OrderID    int64     `json:"order_id,omitempty"`
	ProductID  int64     `json:"product_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventPublisher pushes committed-operation events to Redis. It is strictly
// best effort: a nil client disables publishing, and a failed push is logged
// and dropped, never surfaced to the caller whose transaction already
// committed.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func (p *EventPublisher) PublishPurchase(orderID int64, userID string, productID, price, newBalance int64) {
	p.publish(EconomyEvent{
		EventID:    uuid.NewString(),
		EventType:  "PURCHASE",
		UserID:     userID,
		Amount:     -price,
		NewBalance: newBalance,
		OrderID:    orderID,
		ProductID:  productID,
		CreatedAt:  time.Now().UTC(),
	})
}

func (p *EventPublisher) PublishTopup(userID string, amount, newBalance int64) {
	p.publish(EconomyEvent{
		EventID:    uuid.NewString(),
		EventType:  "TOPUP",
		UserID:     userID,
		Amount:     amount,
		NewBalance: newBalance,
		CreatedAt:  time.Now().UTC(),
	})
}

func (p *EventPublisher) publish(event EconomyEvent) {
	if p == nil || p.redis == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal %s event: %v", event.EventType, err)
		return
	}

	if err := p.redis.RPush(context.Background(), eventQueueKey, string(data)).Err(); err != nil {
		log.Printf("[EVENTS] Failed to queue %s event: %v", event.EventType, err)
	}
}
