package repo

import (
	"context"
	"database/sql"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	query := `INSERT INTO notifications (user_id, product_id, product_name, type, message, timestamp, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRowContext(ctx, query, n.UserID, n.ProductID, n.ProductName, string(n.Type), n.Message, n.Timestamp, n.Read).
		Scan(&n.ID)
	return n, err
}

func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID int) ([]models.Notification, error) {
	query := `SELECT id, user_id, product_id, product_name, type, message, timestamp, read
		FROM notifications WHERE user_id = $1 ORDER BY timestamp DESC, id DESC`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var (
			n   models.Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.ProductID, &n.ProductName, &typ, &n.Message, &n.Timestamp, &n.Read); err != nil {
			return nil, err
		}
		n.Type = models.NotificationType(typ)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PostgresNotificationRepository) ExistsForProductWithMessage(ctx context.Context, productID int, phrase string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE product_id = $1 AND strpos(message, $2) > 0)`,
		productID, phrase).Scan(&exists)
	return exists, err
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, userID, id int) error {
	n, err := r.exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.exec(ctx, `DELETE FROM notifications WHERE id = ANY($1)`, ids)
}

func (r *PostgresNotificationRepository) DeleteByProduct(ctx context.Context, userID, productID int) (int, error) {
	return r.exec(ctx, `DELETE FROM notifications WHERE product_id = $1 AND user_id = $2`, productID, userID)
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, userID, id int) error {
	n, err := r.exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	return count, err
}

func (r *PostgresNotificationRepository) exec(ctx context.Context, query string, args ...any) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	rowsAffected, _ := res.RowsAffected()
	return int(rowsAffected), nil
}
