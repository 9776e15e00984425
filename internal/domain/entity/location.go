package entity

import "time"

// Location representa una sede o punto de venta donde se almacena inventario (multi-sede).
// Code es único por organización.
type Location struct {
	ID             string
	OrganizationID string
	Code           string
	Name           string
	Address        string
	IsHeadquarters bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
