package entity

import "time"

// Material registro maestro de un material (código único). Casi nunca se modifica;
// su CRUD general es externo y aquí solo se consulta.
type Material struct {
	ID           string
	Code         string // código canónico, ej. MAT0327
	Name         string
	CategoryCode string
	TypeCode     string
	BaseUomCode  string
	Manufacturer string
	Supplier     string
	Status       string // ACTIVE | INACTIVE
	CreatedAt    time.Time
	CreatedBy    string
}
