package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
)

// ─── Entradas ──────────────────────────────────────────────────────────────────

func TestReceive_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.receipts.Receive(ctx, "r", dto.ReceiptRequest{MaterialCode: "ZZZ", LotNumber: "L1", Qty: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "material ZZZ not found", domain.Message(err))

	_, err = f.receipts.Receive(ctx, "r", dto.ReceiptRequest{MaterialCode: "M", LotNumber: "L1", Qty: d("0")})
	assert.Equal(t, "qty must be greater than zero", domain.Message(err))

	_, err = f.receipts.Receive(ctx, "r", dto.ReceiptRequest{MaterialCode: "M", LotNumber: "L1", Qty: d("1"), UomCode: "g"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "uom G does not match material M base uom KG", domain.Message(err))

	_, err = f.receipts.Receive(ctx, "r", dto.ReceiptRequest{MaterialCode: "M", LotNumber: "L1", Qty: d("1"), ExpiryDate: "31/12/2027"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	views, err := f.query.ListSegments(ctx, dto.SegmentQuery{IncludeZero: true})
	require.NoError(t, err)
	assert.Empty(t, views, "ningún rechazo crea segmentos")
}

func TestReceive_FechaDeEntradaFijaElMovimiento(t *testing.T) {
	f := newFixture(t)
	out, err := f.receipts.Receive(context.Background(), "r", dto.ReceiptRequest{
		MaterialCode: "M", LotNumber: "L1", Qty: d("5"), ReceiptDate: "2026-01-15", Supplier: "Other Co",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), out.Entry.CreatedAt)
	assert.Equal(t, "Other Co", out.Segment.Supplier)
	assert.Nil(t, out.Entry.UnitPrice)
	assert.Nil(t, out.Entry.TotalValue)
}

// ─── Salidas ───────────────────────────────────────────────────────────────────

func TestIssue_PorLoteConUnSoloSegmento(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "L1", "10", "20")

	out, err := f.issues.Issue(context.Background(), "op1", dto.IssueRequest{
		MaterialCode: "m", LotNumber: "L1", Qty: d("4"), ConsumptionType: "waste",
		ProductBatchNo: "PB-9", ProductManufactureDate: "2026-02-01", TotalValue: dp("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "WASTE", out.Entry.ConsumptionType)
	assert.Equal(t, "2.5", out.Entry.UnitPrice.String())
	assert.Equal(t, "10", out.Entry.TotalValue.String())
	assert.Equal(t, "2026-02-01", *out.Entry.ProductManufactureDate)
	assert.True(t, out.Segment.BalanceQty.Equal(d("6")))
}

func TestIssue_LoteConVariosSegmentosExigeID(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, "L1", "10", "20").Segment.SegmentID
	f.change(t, a, "REJECTED", strp("3"))

	_, err := f.issues.Issue(context.Background(), "op1", dto.IssueRequest{MaterialCode: "M", LotNumber: "L1", Qty: d("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "multiple lot segments exist for lot L1 of material M; specify segment_id", domain.Message(err))

	_, err = f.issues.Issue(context.Background(), "op1", dto.IssueRequest{MaterialCode: "M", LotNumber: "L404", Qty: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssue_SegmentoDivididoSinHistorialQuedaSinCosto(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, "L1", "10", "20").Segment.SegmentID
	b := f.change(t, a, "REJECTED", strp("4")).Destination.SegmentID

	out, err := f.issues.Issue(context.Background(), "op1", dto.IssueRequest{SegmentID: b, Qty: d("4")})
	require.NoError(t, err)
	assert.Nil(t, out.Entry.UnitPrice)
	assert.Nil(t, out.Entry.TotalValue)
	assert.Equal(t, "REJECTED", out.Entry.StatusAtEntry)
	assert.True(t, out.Segment.BalanceQty.IsZero())
}

// ─── Consultas ─────────────────────────────────────────────────────────────────

func TestSummary(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, "L1", "100", "200").Segment.SegmentID
	f.change(t, a, "AVAILABLE", nil)
	f.receive(t, "L2", "10", "30")
	_, err := f.issues.Issue(context.Background(), "op1", dto.IssueRequest{SegmentID: a, Qty: d("10")})
	require.NoError(t, err)

	now := time.Date(2027, 6, 10, 12, 0, 0, 0, time.UTC)
	s, err := f.query.Summary(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalMaterials)
	assert.Equal(t, 2, s.TotalSegments)
	assert.Equal(t, 1, s.QuarantineSegments)
	assert.Equal(t, 2, s.SegmentsExpiring30d)
	assert.Equal(t, "210", s.BookValueOnHand.String())
}

func TestAuditFeed_MezclaEventosMasRecientesPrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.receive(t, "L1", "100", "200")
	f.change(t, rec.Segment.SegmentID, "AVAILABLE", nil)
	_, err := f.edits.Edit(ctx, "supervisor", rec.Entry.ID, dto.EditEntryRequest{Reason: "ref", TargetRef: strp("PO-7")}, nil)
	require.NoError(t, err)

	events, err := f.query.AuditFeed(ctx, dto.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, dto.AuditTransactionEdit, events[0].Kind)
	assert.Equal(t, dto.AuditStatusChange, events[1].Kind)
	assert.Equal(t, "QUARANTINE -> AVAILABLE", events[1].Summary)

	byActor, err := f.query.AuditFeed(ctx, dto.AuditQuery{Actor: "qa.lead"})
	require.NoError(t, err)
	require.Len(t, byActor, 1)
	assert.Equal(t, dto.AuditStatusChange, byActor[0].Kind)

	past, err := f.query.AuditFeed(ctx, dto.AuditQuery{To: "2000-01-01"})
	require.NoError(t, err)
	assert.Empty(t, past)

	_, err = f.query.AuditFeed(ctx, dto.AuditQuery{From: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
