package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepository)(nil)

// LocationRepository sedes en memoria.
type LocationRepository struct {
	mu        sync.RWMutex
	locations map[string]entity.Location
}

// NewLocationRepository crea el repositorio vacío.
func NewLocationRepository() *LocationRepository {
	return &LocationRepository{locations: make(map[string]entity.Location)}
}

func (r *LocationRepository) Create(ctx context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.locations[location.ID]; exists {
		return domain.ErrDuplicate
	}
	for _, l := range r.locations {
		if l.OrganizationID == location.OrganizationID && l.Code == location.Code {
			return domain.ErrDuplicate
		}
	}
	r.locations[location.ID] = *location
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepository) GetByCode(ctx context.Context, organizationID, code string) (*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.locations {
		if l.OrganizationID == organizationID && l.Code == code {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *LocationRepository) ListHeadquarters(ctx context.Context, organizationID string) ([]*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*entity.Location
	for _, l := range r.locations {
		if l.OrganizationID == organizationID && l.IsHeadquarters {
			l := l
			list = append(list, &l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r *LocationRepository) Update(ctx context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[location.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, l := range r.locations {
		if id != location.ID && l.OrganizationID == location.OrganizationID && l.Code == location.Code {
			return domain.ErrDuplicate
		}
	}
	r.locations[location.ID] = *location
	return nil
}

func (r *LocationRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool, limit, offset int) ([]*entity.Location, error) {
	r.mu.RLock()
	var list []*entity.Location
	for _, l := range r.locations {
		if l.OrganizationID != organizationID || (activeOnly && !l.IsActive) {
			continue
		}
		l := l
		list = append(list, &l)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}
