package models

import "time"

type Product struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"` // in smallest currency unit
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StockCode is a single-use allocation unit: created unused, claimed by
// exactly one purchase, never recycled.
type StockCode struct {
	ID        int64      `json:"id" db:"id"`
	ProductID int64      `json:"product_id" db:"product_id"`
	Code      string     `json:"code" db:"code"`
	Used      bool       `json:"used" db:"used"`
	UsedBy    string     `json:"used_by,omitempty" db:"used_by"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
}

// CatalogItem is the read-only catalog projection: an enabled product with
// its live count of unclaimed codes.
type CatalogItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Remaining int64  `json:"remaining"`
}
