package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

const productColumns = `id, user_id, sku, name, display_name, category, supplier, actual_price, selling_price,
	quantity, reorder_level, expiration_date, notify, last_notification_sent, created_at, updated_at`

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p          models.Product
		expiration sql.NullTime
		notify     sql.NullInt64
		lastSent   sql.NullTime
	)
	err := row.Scan(&p.ID, &p.UserID, &p.SKU, &p.Name, &p.DisplayName, &p.Category, &p.Supplier,
		&p.ActualPrice, &p.SellingPrice, &p.Quantity, &p.ReorderLevel,
		&expiration, &notify, &lastSent, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	if expiration.Valid {
		p.ExpirationDate = &expiration.Time
	}
	if notify.Valid {
		n := int(notify.Int64)
		p.Notify = &n
	}
	if lastSent.Valid {
		p.LastNotificationSent = &lastSent.Time
	}
	return p, nil
}

func (r *PostgresProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `INSERT INTO products (user_id, sku, name, display_name, category, supplier, actual_price, selling_price,
		quantity, reorder_level, expiration_date, notify, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.SKU, p.Name, p.DisplayName, p.Category, p.Supplier,
		p.ActualPrice, p.SellingPrice, p.Quantity, p.ReorderLevel, p.ExpirationDate, p.Notify,
		p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return models.Product{}, translateErr(err)
	}
	return p, nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) GetForUser(ctx context.Context, userID, id int) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) ListByUser(ctx context.Context, userID int, pf ProductFilter) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1`
	args := []any{userID}

	if pf.Search != "" {
		args = append(args, "%"+pf.Search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (name ILIKE $%d OR display_name ILIKE $%d OR sku ILIKE $%d OR category ILIKE $%d OR supplier ILIKE $%d)`,
			n, n, n, n, n)
	}
	if pf.Category != "" {
		args = append(args, pf.Category)
		query += fmt.Sprintf(` AND category ILIKE $%d`, len(args))
	}
	query += ` ORDER BY display_name, name`

	return r.queryProducts(ctx, query, args...)
}

func (r *PostgresProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	query := `UPDATE products SET sku = $1, name = $2, display_name = $3, category = $4, supplier = $5,
		actual_price = $6, selling_price = $7, quantity = $8, reorder_level = $9, expiration_date = $10,
		notify = $11, updated_at = $12
		WHERE id = $13 AND user_id = $14`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, p.SKU, p.Name, p.DisplayName, p.Category, p.Supplier,
		p.ActualPrice, p.SellingPrice, p.Quantity, p.ReorderLevel, p.ExpirationDate, p.Notify,
		p.UpdatedAt, p.ID, p.UserID)
	if err != nil {
		return models.Product{}, translateErr(err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, userID, id int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) ListExpiring(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE expiration_date IS NOT NULL AND notify IS NOT NULL ORDER BY id`)
}

func (r *PostgresProductRepository) ListWithReorderLevel(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE reorder_level IS NOT NULL ORDER BY id`)
}

func (r *PostgresProductRepository) IDsByUser(ctx context.Context, userID int) ([]int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT id FROM products WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresProductRepository) Categories(ctx context.Context, userID int) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products WHERE user_id = $1 AND category <> '' ORDER BY category`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresProductRepository) AdjustQuantity(ctx context.Context, id int, delta int) (models.Product, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + productColumns
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, delta, time.Now().UTC(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) SetLastNotificationSent(ctx context.Context, id int, at time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE products SET last_notification_sent = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
