package dto

import "time"

// CreateMaterialRequest alta de material (carga inicial y pruebas; el CRUD general es externo).
type CreateMaterialRequest struct {
	Code         string `json:"code" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=255"`
	CategoryCode string `json:"category_code" validate:"max=32"`
	TypeCode     string `json:"type_code" validate:"max=32"`
	BaseUomCode  string `json:"base_uom_code" validate:"required,max=16"`
	Manufacturer string `json:"manufacturer" validate:"max=128"`
	Supplier     string `json:"supplier" validate:"max=128"`
}

// MaterialResponse material del maestro.
type MaterialResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CategoryCode string    `json:"category_code"`
	TypeCode     string    `json:"type_code"`
	BaseUomCode  string    `json:"base_uom_code"`
	Manufacturer string    `json:"manufacturer"`
	Supplier     string    `json:"supplier"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
