package models

import "time"

// TopupPin is a single-use token redeemable for a fixed balance credit.
// Once used it is permanently inert; a second redemption attempt fails.
type TopupPin struct {
	Pin    string     `json:"pin" db:"pin"`
	Amount int64      `json:"amount" db:"amount"`
	Used   bool       `json:"used" db:"used"`
	UsedBy string     `json:"used_by,omitempty" db:"used_by"`
	UsedAt *time.Time `json:"used_at,omitempty" db:"used_at"`
}
