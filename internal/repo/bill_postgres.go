package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type PostgresBillRepository struct {
	db *sql.DB
}

func NewPostgresBillRepository(db *sql.DB) *PostgresBillRepository {
	return &PostgresBillRepository{db: db}
}

// Create stores the bill with its line items serialized into a jsonb column.
func (r *PostgresBillRepository) Create(ctx context.Context, b models.Bill) (models.Bill, error) {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to encode bill items: %w", err)
	}

	query := `INSERT INTO bills (user_id, customer_name, bill_number, date, items, grand_total, net_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err = r.db.QueryRowContext(ctx, query, b.UserID, b.CustomerName, b.BillNumber, b.Date, items, b.GrandTotal, b.NetQuantity).
		Scan(&b.ID)
	if err != nil {
		return models.Bill{}, translateErr(err)
	}
	return b, nil
}

func (r *PostgresBillRepository) ListByUser(ctx context.Context, userID int, bf BillFilter) ([]models.Bill, error) {
	query := `SELECT id, user_id, customer_name, bill_number, date, items, grand_total, net_quantity FROM bills WHERE user_id = $1`
	args := []any{userID}
	if bf.Since != nil {
		args = append(args, *bf.Since)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if bf.Until != nil {
		args = append(args, *bf.Until)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var (
			b     models.Bill
			items []byte
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.CustomerName, &b.BillNumber, &b.Date, &items, &b.GrandTotal, &b.NetQuantity); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &b.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items of bill %d: %w", b.ID, err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *PostgresBillRepository) Count(ctx context.Context, userID int) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bills WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
