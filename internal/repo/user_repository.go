package repo

import (
	"context"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	// UpdateUser overwrites the username and contact of an existing user.
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
}
