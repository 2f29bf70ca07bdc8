package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// TransitionCase forma de resolver un cambio de estado.
type TransitionCase string

// Casos de la máquina de estados de segmentos.
const (
	CaseMerge TransitionCase = "MERGE" // existe segmento destino: traslado de cantidad
	CaseFlip  TransitionCase = "FLIP"  // sin destino, lote completo: cambio de estado in situ
	CaseSplit TransitionCase = "SPLIT" // sin destino, parcial: se crea un segmento nuevo
)

// StatusChangeRequest solicitud de cambio de estado tal como llega del caller.
// MoveQty es texto crudo (nil = no enviado) para poder distinguir ausente de no numérico.
type StatusChangeRequest struct {
	SegmentID string
	NewStatus string
	Reason    string
	WholeLot  bool
	MoveQty   *string
}

// TransitionPlan conjunto completo de escrituras de una transición. Se aplica entero o nada.
type TransitionPlan struct {
	Case   TransitionCase
	Source *entity.Segment
	// Destination segmento que recibe la cantidad (existente en MERGE, nuevo en SPLIT, nil en FLIP).
	Destination *entity.Segment
	// NewSegment true cuando Destination debe crearse.
	NewSegment    bool
	Target        entity.LotStatus
	MoveQty       decimal.Decimal
	Entries       []*entity.LedgerEntry
	StatusChanges []*entity.StatusChangeRecord
	// FlipStatus el estado del origen pasa a Target (solo FLIP).
	FlipStatus bool
	// NormalizeDestination el destino guarda el alias heredado y se reescribe con Target.
	NormalizeDestination bool
}

// PlanInput estado leído dentro de la transacción que el planificador necesita.
type PlanInput struct {
	Request  StatusChangeRequest
	Source   *entity.Segment   // nil si el id no existe
	Balance  decimal.Decimal   // saldo actual del origen
	Siblings []*entity.Segment // segmentos del mismo (material, lote), más antiguos primero
	UomCode  string
	Actor    string
	Now      time.Time
}

// PlanStatusChange valida la solicitud (la primera regla incumplida gana) y calcula las escrituras.
// No realiza I/O: el orquestador lee el estado bajo bloqueo y aplica el plan en la misma transacción.
func PlanStatusChange(in PlanInput) (*TransitionPlan, error) {
	req := in.Request
	src := in.Source
	if src == nil {
		return nil, domain.NotFound("segment %s not found", req.SegmentID)
	}
	target, ok := entity.ParseLotStatus(req.NewStatus)
	if !ok {
		return nil, domain.Validation("invalid status %q: must be one of AVAILABLE, QUARANTINE, REJECTED", strings.TrimSpace(req.NewStatus))
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.Validation("reason is required")
	}
	current := src.NormalizedStatus()
	if target == current {
		return nil, domain.Validation("segment is already %s", current)
	}
	if !IsPositive(in.Balance) {
		return nil, domain.Validation("segment has zero balance; nothing to move")
	}
	qty := in.Balance
	if !req.WholeLot {
		q, err := parseMoveQty(req.MoveQty, in.Balance)
		if err != nil {
			return nil, err
		}
		qty = q
	}

	plan := &TransitionPlan{Source: src, Target: target, MoveQty: qty}
	dest := findDestination(src, target, in.Siblings)
	switch {
	case dest != nil:
		plan.Case = CaseMerge
		plan.Destination = dest
		plan.NormalizeDestination = dest.Status != target
		plan.Entries = moveEntries(src, dest, qty, target, reason, in)
		plan.StatusChanges = []*entity.StatusChangeRecord{
			record(src.ID, current, target,
				fmt.Sprintf("%s (moved %s to %s segment %s)", reason, qty, target, dest.ID), in),
			record(dest.ID, dest.Status, target,
				fmt.Sprintf("%s (merged %s from segment %s)", reason, qty, src.ID), in),
		}
	case req.WholeLot:
		plan.Case = CaseFlip
		plan.FlipStatus = true
		plan.StatusChanges = []*entity.StatusChangeRecord{record(src.ID, current, target, reason, in)}
	default:
		plan.Case = CaseSplit
		plan.NewSegment = true
		plan.Destination = splitSegment(src, target, in)
		plan.Entries = moveEntries(src, plan.Destination, qty, target, reason, in)
		plan.StatusChanges = []*entity.StatusChangeRecord{
			record(src.ID, current, current,
				fmt.Sprintf("%s (split %s to new %s segment %s)", reason, qty, target, plan.Destination.ID), in),
			record(plan.Destination.ID, current, target, reason, in),
		}
	}
	return plan, nil
}

// parseMoveQty aplica las reglas de cantidad parcial. Un valor que supera el saldo dentro
// de la tolerancia se ajusta al saldo para no dejar residuos negativos.
func parseMoveQty(raw *string, balance decimal.Decimal) (decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return decimal.Zero, domain.Validation("move_qty is required for a partial status change")
	}
	q, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Zero, domain.Validation("move_qty must be numeric, got %q", strings.TrimSpace(*raw))
	}
	if err := ValidateQty("move_qty", q); err != nil {
		return decimal.Zero, err
	}
	if Exceeds(q, balance) {
		return decimal.Zero, domain.Validation("move_qty exceeds current balance (balance %s, requested %s)", balance, q)
	}
	return ClampToAvailable(q, balance), nil
}

// findDestination segmento del mismo lote cuyo estado normalizado es target, excluyendo el origen.
// Si por datos heredados hubiera varios, se usa el más antiguo.
func findDestination(src *entity.Segment, target entity.LotStatus, siblings []*entity.Segment) *entity.Segment {
	for _, s := range siblings {
		if s.ID == src.ID || !s.SameLot(src) {
			continue
		}
		if s.NormalizedStatus() == target {
			return s
		}
	}
	return nil
}

func splitSegment(src *entity.Segment, target entity.LotStatus, in PlanInput) *entity.Segment {
	seg := src.Clone()
	seg.ID = uuid.New().String()
	seg.Status = target
	seg.CreatedAt = in.Now
	seg.CreatedBy = in.Actor
	return seg
}

// moveEntries par de STATUS_MOVE: salida del origen y entrada al destino por la misma cantidad.
func moveEntries(src, dest *entity.Segment, qty decimal.Decimal, target entity.LotStatus, reason string, in PlanInput) []*entity.LedgerEntry {
	comment := fmt.Sprintf("status move to %s: %s", target, reason)
	mk := func(segID string, dir int, ref string) *entity.LedgerEntry {
		return &entity.LedgerEntry{
			ID:        uuid.New().String(),
			SegmentID: segID,
			Type:      entity.EntryStatusMove,
			Direction: dir,
			Quantity:  qty,
			UomCode:   in.UomCode,
			TargetRef: ref,
			Comment:   comment,
			CreatedAt: in.Now,
			CreatedBy: in.Actor,
		}
	}
	return []*entity.LedgerEntry{
		mk(src.ID, entity.DirectionOut, dest.ID),
		mk(dest.ID, entity.DirectionIn, src.ID),
	}
}

func record(segmentID string, oldStatus, newStatus entity.LotStatus, reason string, in PlanInput) *entity.StatusChangeRecord {
	return &entity.StatusChangeRecord{
		ID:        uuid.New().String(),
		SegmentID: segmentID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Reason:    reason,
		ChangedAt: in.Now,
		ChangedBy: in.Actor,
	}
}
