package entity

import "time"

// Segment unidad lote-estado: cantidad de un lote físico bajo exactamente un estado de calidad.
// Identidad lógica: (MaterialID, LotNumber, Status normalizado); nunca hay dos segmentos
// con la misma combinación. Los segmentos no se borran: con saldo cero quedan como historia.
type Segment struct {
	ID           string
	MaterialID   string
	LotNumber    string
	ExpiryDate   *time.Time
	Status       LotStatus
	Manufacturer string
	Supplier     string
	CreatedAt    time.Time
	CreatedBy    string
}

// NormalizedStatus estado con aliases resueltos.
func (s *Segment) NormalizedStatus() LotStatus {
	return s.Status.Normalized()
}

// SameLot indica si o pertenece al mismo (material, lote).
func (s *Segment) SameLot(o *Segment) bool {
	return s.MaterialID == o.MaterialID && s.LotNumber == o.LotNumber
}

// Clone copia profunda (los punteros no se comparten).
func (s Segment) Clone() *Segment {
	if s.ExpiryDate != nil {
		d := *s.ExpiryDate
		s.ExpiryDate = &d
	}
	return &s
}

// IsExpiringWithin indica si vence entre now (inclusive) y now+d (exclusivo).
func (s *Segment) IsExpiringWithin(now time.Time, d time.Duration) bool {
	if s.ExpiryDate == nil {
		return false
	}
	today := now.Truncate(24 * time.Hour)
	return !s.ExpiryDate.Before(today) && s.ExpiryDate.Before(today.Add(d))
}
