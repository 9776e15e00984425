package repository

import (
	"context"

	"github.com/bizsuite/ledger-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	// GetByCode busca por código dentro de la organización (código único por organización).
	GetByCode(ctx context.Context, organizationID, code string) (*entity.Location, error)
	// ListHeadquarters devuelve las sedes marcadas como principales; el diseño espera una sola,
	// pero la base no lo impone.
	ListHeadquarters(ctx context.Context, organizationID string) ([]*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool, limit, offset int) ([]*entity.Location, error)
}
