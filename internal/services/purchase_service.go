package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sw0nx/WIND-BOT/internal/models"
)

// PurchaseService composes the ledger debit, the stock claim and the order
// record into one all-or-nothing transaction. A purchase that debits money
// without granting a code, or the reverse, must be unreachable.
type PurchaseService struct {
	db        *sql.DB
	ledger    *LedgerService
	inventory *InventoryService
	events    *EventPublisher
	audit     *AuditLogger
}

func NewPurchaseService(db *sql.DB, ledger *LedgerService, inventory *InventoryService, events *EventPublisher) *PurchaseService {
	return &PurchaseService{
		db:        db,
		ledger:    ledger,
		inventory: inventory,
		events:    events,
		audit:     NewAuditLogger(),
	}
}

// PurchaseResult is handed back to the caller for out-of-band delivery of
// the allocated code.
type PurchaseResult struct {
	OrderID    int64  `json:"order_id"`
	Code       string `json:"code"`
	NewBalance int64  `json:"new_balance"`
}

// Purchase runs the whole buy flow in a single transaction: price lookup,
// balance check, code claim, debit, order row, ledger entry. Every value
// feeding a decision is read inside this transaction; on any failure before
// commit the store is left untouched. A missing or disabled product reports
// ErrOutOfStock, same as an exhausted pool.
func (s *PurchaseService) Purchase(userID string, productID int64) (*PurchaseResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var price int64
	err = tx.QueryRow(`
		SELECT price FROM products WHERE id = $1 AND enabled = TRUE`,
		productID).Scan(&price)
	if err == sql.ErrNoRows {
		return nil, ErrOutOfStock
	}
	if err != nil {
		return nil, err
	}

	balance, found, err := s.ledger.lockBalance(tx, userID)
	if err != nil {
		return nil, err
	}
	if balance < price {
		return nil, ErrInsufficientFunds
	}

	code, err := s.inventory.claimCodeTx(tx, productID, userID)
	if err != nil {
		return nil, err
	}

	newBalance := balance - price
	if !found {
		if err := s.ledger.createAccount(tx, userID, newBalance); err != nil {
			return nil, err
		}
	} else if err := s.ledger.updateBalance(tx, userID, newBalance); err != nil {
		return nil, err
	}

	var orderID int64
	err = tx.QueryRow(`
		INSERT INTO orders (user_id, product_id, price, code_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		userID, productID, price, code.ID, time.Now().UTC()).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	metadata := fmt.Sprintf("product_id=%d,code_id=%d", productID, code.ID)
	if err := s.ledger.appendEntry(tx, userID, models.KindPurchase, -price, metadata); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	// Notification happens strictly after commit; a slow or failing publish
	// can never roll back the purchase.
	s.audit.LogPurchase(orderID, userID, productID, price, newBalance)
	s.events.PublishPurchase(orderID, userID, productID, price, newBalance)

	return &PurchaseResult{OrderID: orderID, Code: code.Code, NewBalance: newBalance}, nil
}

// ListOrders returns the user's most recent orders, newest first.
func (s *PurchaseService) ListOrders(userID string, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, product_id, price, code_id, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Price, &o.CodeID, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}
