package models

import "time"

// Account holds one user's balance in the smallest currency unit.
// The balance is never negative; the store enforces this transactionally.
type Account struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Balance   int64     `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ledger entry kinds. Every balance mutation writes exactly one entry.
const (
	KindPurchase    = "PURCHASE"
	KindTopup       = "TOPUP"
	KindAdminAdjust = "ADMIN_ADJUST"
	KindRefund      = "REFUND"
)

// LedgerEntry is an immutable audit record of a balance change.
// Amount is signed: negative for debits, positive for credits.
type LedgerEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Kind      string    `json:"kind" db:"kind"`
	Amount    int64     `json:"amount" db:"amount"`
	Metadata  string    `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
