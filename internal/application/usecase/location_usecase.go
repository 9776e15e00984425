package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

// LocationConfig reglas opcionales sobre sedes.
type LocationConfig struct {
	SingleHeadquarters bool // como máximo una sede principal por organización
}

// LocationUseCase casos de uso CRUD para sedes.
type LocationUseCase struct {
	repo repository.LocationRepository
	cfg  LocationConfig
	log  zerolog.Logger
	now  func() time.Time
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, cfg LocationConfig, log zerolog.Logger) *LocationUseCase {
	return &LocationUseCase{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// Create crea una sede activa. El código es único dentro de la organización.
func (uc *LocationUseCase) Create(ctx context.Context, organizationID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	code := strings.TrimSpace(in.Code)
	if organizationID == "" || code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCode(ctx, organizationID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.IsHeadquarters {
		if err := uc.checkHeadquarters(ctx, organizationID, ""); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	location := &entity.Location{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		Code:           code,
		Name:           strings.TrimSpace(in.Name),
		Address:        in.Address,
		IsHeadquarters: in.IsHeadquarters,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	uc.log.Info().Str("location_id", location.ID).Str("code", code).Msg("sede creada")
	return toLocationResponse(location), nil
}

// Get obtiene una sede de la organización.
func (uc *LocationUseCase) Get(ctx context.Context, organizationID, id string) (*dto.LocationResponse, error) {
	location, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Update actualiza los campos enviados.
func (uc *LocationUseCase) Update(ctx context.Context, organizationID, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return nil, domain.ErrInvalidInput
		}
		if code != location.Code {
			other, err := uc.repo.GetByCode(ctx, organizationID, code)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicate
			}
			location.Code = code
		}
	}
	if in.Name != nil {
		location.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		location.Address = *in.Address
	}
	if in.IsHeadquarters != nil {
		if *in.IsHeadquarters && !location.IsHeadquarters {
			if err := uc.checkHeadquarters(ctx, organizationID, location.ID); err != nil {
				return nil, err
			}
		}
		location.IsHeadquarters = *in.IsHeadquarters
	}
	if in.IsActive != nil {
		location.IsActive = *in.IsActive
	}
	location.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Deactivate marca la sede como inactiva. Los traslados existentes no se tocan.
func (uc *LocationUseCase) Deactivate(ctx context.Context, organizationID, id string) error {
	location, err := uc.load(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if !location.IsActive {
		return nil
	}
	location.IsActive = false
	location.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, location); err != nil {
		return err
	}
	uc.log.Info().Str("location_id", id).Msg("sede desactivada")
	return nil
}

// List lista sedes por organización con paginación.
func (uc *LocationUseCase) List(ctx context.Context, organizationID string, in dto.LocationListRequest) (*dto.LocationListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.ListByOrganization(ctx, organizationID, in.ActiveOnly, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func (uc *LocationUseCase) load(ctx context.Context, organizationID, id string) (*entity.Location, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	if location.OrganizationID != organizationID {
		return nil, domain.ErrForbidden
	}
	return location, nil
}

// checkHeadquarters aplica la regla de sede principal única si está activa.
func (uc *LocationUseCase) checkHeadquarters(ctx context.Context, organizationID, exceptID string) error {
	if !uc.cfg.SingleHeadquarters {
		return nil
	}
	hqs, err := uc.repo.ListHeadquarters(ctx, organizationID)
	if err != nil {
		return err
	}
	for _, hq := range hqs {
		if hq.ID != exceptID {
			return domain.ErrHeadquartersTaken
		}
	}
	return nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		Code:           l.Code,
		Name:           l.Name,
		Address:        l.Address,
		IsHeadquarters: l.IsHeadquarters,
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
