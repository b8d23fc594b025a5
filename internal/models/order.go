package models

import "time"

// Order records a completed purchase. Price is the price actually charged,
// decoupled from the product's current price.
type Order struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Price     int64     `json:"price" db:"price"`
	CodeID    int64     `json:"code_id" db:"code_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
