package services

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/sw0nx/WIND-BOT/internal/models"
)

// RedemptionService owns single-use top-up pins. Consuming a pin and
// crediting the claimant commit as one unit: there is no state with a spent
// pin and no credit, or a credit and a still-redeemable pin.
type RedemptionService struct {
	db     *sql.DB
	ledger *LedgerService
	events *EventPublisher
	audit  *AuditLogger
}

func NewRedemptionService(db *sql.DB, ledger *LedgerService, events *EventPublisher) *RedemptionService {
	return &RedemptionService{
		db:     db,
		ledger: ledger,
		events: events,
		audit:  NewAuditLogger(),
	}
}

// Redeem marks the pin used and credits the claimant's balance in one
// transaction. An unknown pin reports ErrPinInvalid; a spent pin reports
// ErrPinAlreadyUsed rather than silently succeeding again.
func (s *RedemptionService) Redeem(userID, pin string) (int64, int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var amount int64
	var used bool
	err = tx.QueryRow(`
		SELECT amount, used FROM topup_pins WHERE pin = $1 FOR UPDATE`,
		pin).Scan(&amount, &used)
	if err == sql.ErrNoRows {
		return 0, 0, ErrPinInvalid
	}
	if err != nil {
		return 0, 0, err
	}
	if used {
		return 0, 0, ErrPinAlreadyUsed
	}

	_, err = tx.Exec(`
		UPDATE topup_pins SET used = TRUE, used_by = $1, used_at = $2
		WHERE pin = $3`,
		userID, time.Now().UTC(), pin)
	if err != nil {
		return 0, 0, err
	}

	newBalance, err := s.ledger.adjustTx(tx, userID, amount, models.KindTopup, "pin="+pin)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}

	s.audit.LogTopup(userID, pin, amount, newBalance)
	s.events.PublishTopup(userID, amount, newBalance)
	return amount, newBalance, nil
}

// CreatePin registers a new unused pin worth the given credit.
func (s *RedemptionService) CreatePin(pin string, amount int64) error {
	_, err := s.db.Exec(`
		INSERT INTO topup_pins (pin, amount)
		VALUES ($1, $2)`,
		pin, amount)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicatePin
		}
		return err
	}
	return nil
}
