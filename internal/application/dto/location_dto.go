package dto

import "time"

// CreateLocationRequest entrada para crear una sede.
type CreateLocationRequest struct {
	Code           string `json:"code" validate:"required,min=1,max=30"`
	Name           string `json:"name" validate:"required,min=1,max=200"`
	Address        string `json:"address" validate:"max=300"`
	IsHeadquarters bool   `json:"is_headquarters"`
}

// UpdateLocationRequest entrada para actualizar una sede.
type UpdateLocationRequest struct {
	Code           *string `json:"code" validate:"omitempty,min=1,max=30"`
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address        *string `json:"address" validate:"omitempty,max=300"`
	IsHeadquarters *bool   `json:"is_headquarters"`
	IsActive       *bool   `json:"is_active"`
}

// LocationResponse salida de una sede.
type LocationResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	IsHeadquarters bool      `json:"is_headquarters"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LocationListRequest filtros de GET /api/locations.
type LocationListRequest struct {
	PageRequest
	ActiveOnly bool `query:"active_only"`
}

// LocationListResponse lista paginada de sedes.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
