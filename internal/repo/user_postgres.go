package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int) (models.User, error) {
	return r.getOne(ctx, `SELECT id, username, password_hash, contact, role FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return r.getOne(ctx, `SELECT id, username, password_hash, contact, role FROM users WHERE username = $1`, username)
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	query := `INSERT INTO users (username, password_hash, contact, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := r.db.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.Contact, u.Role).Scan(&u.ID); err != nil {
		return models.User{}, translateErr(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	query := `UPDATE users SET username = $1, contact = $2, updated_at = NOW()
		WHERE id = $3 RETURNING id, username, password_hash, contact, role, updated_at`
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var out models.User
	err := r.db.QueryRowContext(ctx, query, u.Username, u.Contact, u.ID).
		Scan(&out.ID, &out.Username, &out.PasswordHash, &out.Contact, &out.Role, &out.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, translateErr(err)
	}
	return out, nil
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg any) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Contact, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}
