package repository

import (
	"context"

	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByUsername devuelve nil, nil si no existe.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// ListByCompany usuarios activos de la empresa, por username.
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
	// Update guarda name, phone_number, password_hash, role, status y updated_at.
	Update(ctx context.Context, user *entity.User) error
}
