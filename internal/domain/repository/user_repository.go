package repository

import (
	"context"
	"time"

	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error // ErrDuplicate si el username existe
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}
