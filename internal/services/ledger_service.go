package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sw0nx/WIND-BOT/internal/models"
)

// LedgerService owns account balances and the append-only ledger. Every
// balance mutation goes through adjustTx so the new balance and its ledger
// entry always commit as one unit; SUM(ledger.amount) per user equals the
// stored balance at all times.
type LedgerService struct {
	db    *sql.DB
	audit *AuditLogger
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{
		db:    db,
		audit: NewAuditLogger(),
	}
}

// GetOrCreate returns the user's account, inserting a zero-balance row on
// first contact.
func (s *LedgerService) GetOrCreate(userID string) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRow(`
		SELECT user_id, balance, created_at FROM accounts WHERE user_id = $1`,
		userID).Scan(&acct.UserID, &acct.Balance, &acct.CreatedAt)
	if err == nil {
		return &acct, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	now := time.Now().UTC()
	// ON CONFLICT guards against two first-contact requests racing.
	_, err = s.db.Exec(`
		INSERT INTO accounts (user_id, balance, created_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, now)
	if err != nil {
		return nil, err
	}

	return &models.Account{UserID: userID, Balance: 0, CreatedAt: now}, nil
}

// GetBalance reads the current balance. Note for callers and testers: a
// missing account is created with balance 0 as a side effect.
func (s *LedgerService) GetBalance(userID string) (int64, error) {
	acct, err := s.GetOrCreate(userID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Adjust applies a signed delta to the user's balance and appends the
// matching ledger entry in one transaction. A delta that would take the
// balance below zero aborts with ErrInsufficientFunds and leaves the store
// exactly as it was.
func (s *LedgerService) Adjust(userID string, delta int64, kind, metadata string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := s.adjustTx(tx, userID, delta, kind, metadata)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.audit.LogAdjustment(userID, kind, delta, newBalance)
	return newBalance, nil
}

// adjustTx is the transaction-scoped body of Adjust, shared with the
// redemption flow so it can fold the balance credit into its own
// transaction.
func (s *LedgerService) adjustTx(tx *sql.Tx, userID string, delta int64, kind, metadata string) (int64, error) {
	balance, found, err := s.lockBalance(tx, userID)
	if err != nil {
		return 0, err
	}

	newBalance := balance + delta
	if newBalance < 0 {
		return 0, ErrInsufficientFunds
	}

	if !found {
		if err := s.createAccount(tx, userID, newBalance); err != nil {
			return 0, err
		}
	} else if err := s.updateBalance(tx, userID, newBalance); err != nil {
		return 0, err
	}

	if err := s.appendEntry(tx, userID, kind, delta, metadata); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// lockBalance reads the account row under FOR UPDATE so no concurrent
// transaction can act on the same balance until we commit or roll back.
// A missing account reads as balance 0.
func (s *LedgerService) lockBalance(tx *sql.Tx, userID string) (int64, bool, error) {
	var balance int64
	err := tx.QueryRow(`
		SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`,
		userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (s *LedgerService) createAccount(tx *sql.Tx, userID string, balance int64) error {
	_, err := tx.Exec(`
		INSERT INTO accounts (user_id, balance, created_at)
		VALUES ($1, $2, $3)`,
		userID, balance, time.Now().UTC())
	return err
}

func (s *LedgerService) updateBalance(tx *sql.Tx, userID string, newBalance int64) error {
	result, err := tx.Exec(`
		UPDATE accounts SET balance = $1 WHERE user_id = $2`,
		newBalance, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account %s disappeared during balance update", userID)
	}

	return nil
}

func (s *LedgerService) appendEntry(tx *sql.Tx, userID, kind string, amount int64, metadata string) error {
	_, err := tx.Exec(`
		INSERT INTO ledger (user_id, kind, amount, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, kind, amount, metadata, time.Now().UTC())
	return err
}

// ListEntries returns the user's most recent ledger entries, newest first.
func (s *LedgerService) ListEntries(userID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, kind, amount, metadata, created_at
		FROM ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Amount, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
