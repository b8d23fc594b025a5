package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sw0nx/WIND-BOT/internal/models"
)

// InventoryService owns the per-product pool of single-use stock codes.
// The count of unused codes for a product only ever decreases through
// claimCodeTx, one code per successful claim.
type InventoryService struct {
	db    *sql.DB
	audit *AuditLogger
}

func NewInventoryService(db *sql.DB) *InventoryService {
	return &InventoryService{
		db:    db,
		audit: NewAuditLogger(),
	}
}

// ListCatalog returns the enabled products with their live count of unused
// codes, computed in the same read.
func (s *InventoryService) ListCatalog() ([]models.CatalogItem, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.price,
		       (SELECT COUNT(1) FROM stock_codes s WHERE s.product_id = p.id AND s.used = FALSE) AS remaining
		FROM products p
		WHERE p.enabled = TRUE
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		var item models.CatalogItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Remaining); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ClaimOne atomically claims one unused code of an enabled product for the
// given claimant. With concurrent claims on the last remaining code, exactly
// one caller wins; the rest observe ErrOutOfStock.
func (s *InventoryService) ClaimOne(productID int64, userID string) (*models.StockCode, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.checkProductEnabled(tx, productID); err != nil {
		return nil, err
	}

	code, err := s.claimCodeTx(tx, productID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return code, nil
}

func (s *InventoryService) checkProductEnabled(tx *sql.Tx, productID int64) error {
	var enabled bool
	err := tx.QueryRow(`
		SELECT enabled FROM products WHERE id = $1`,
		productID).Scan(&enabled)
	if err == sql.ErrNoRows {
		return ErrProductUnavailable
	}
	if err != nil {
		return err
	}
	if !enabled {
		return ErrProductUnavailable
	}
	return nil
}

// claimCodeTx locks the oldest unused code, skipping rows another claimant
// already holds, and marks it used with a guarded update. Insertion order is
// a tie-break, not a promise to callers.
func (s *InventoryService) claimCodeTx(tx *sql.Tx, productID int64, userID string) (*models.StockCode, error) {
	var code models.StockCode
	err := tx.QueryRow(`
		SELECT id, code FROM stock_codes
		WHERE product_id = $1 AND used = FALSE
		ORDER BY id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`,
		productID).Scan(&code.ID, &code.Code)
	if err == sql.ErrNoRows {
		return nil, ErrOutOfStock
	}
	if err != nil {
		return nil, err
	}

	usedAt := time.Now().UTC()
	result, err := tx.Exec(`
		UPDATE stock_codes SET used = TRUE, used_by = $1, used_at = $2
		WHERE id = $3 AND used = FALSE`,
		userID, usedAt, code.ID)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		// Unreachable while we hold the row lock; report exhaustion rather
		// than hand out a code another transaction claimed.
		return nil, ErrOutOfStock
	}

	code.ProductID = productID
	code.Used = true
	code.UsedBy = userID
	code.UsedAt = &usedAt
	return &code, nil
}

// AddStock bulk-inserts unused codes for the product, one row per unit.
// Duplicate payloads are allowed, and a disabled product can still be
// restocked. Blank lines are dropped, matching how admins paste code lists.
func (s *InventoryService) AddStock(productID int64, codes []string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRow(`
		SELECT id FROM products WHERE id = $1`,
		productID).Scan(&exists)
	if err == sql.ErrNoRows {
		return 0, ErrProductUnavailable
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO stock_codes (product_id, code)
			VALUES ($1, $2)`,
			productID, c); err != nil {
			return 0, err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.audit.LogStockAdded(productID, count)
	return count, nil
}

// CreateProduct registers a new purchasable product.
func (s *InventoryService) CreateProduct(name string, price int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO products (name, price, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		name, price, time.Now().UTC()).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, ErrDuplicateName
		}
		return 0, err
	}
	return id, nil
}

// SetProductEnabled flips catalog visibility. Existing orders and remaining
// codes are untouched.
func (s *InventoryService) SetProductEnabled(productID int64, enabled bool) error {
	result, err := s.db.Exec(`
		UPDATE products SET enabled = $1 WHERE id = $2`,
		enabled, productID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrProductUnavailable
	}

	return nil
}
