package repository

import (
	"context"

	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si no existe (activo o no).
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// ListActive lista productos activos de la empresa; search filtra por nombre (sin distinguir mayúsculas).
	ListActive(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Product, error)
	// Deactivate marca el producto como inactivo (borrado lógico).
	Deactivate(ctx context.Context, id string) error
}
