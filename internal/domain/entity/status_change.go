package entity

import "time"

// StatusChangeRecord registro inmutable de una transición o traslado de estado.
type StatusChangeRecord struct {
	ID        string
	SegmentID string
	OldStatus LotStatus
	NewStatus LotStatus
	Reason    string
	ChangedAt time.Time
	ChangedBy string
}
