package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

type fixture struct {
	store     *memory.Store
	materials *inventory.MaterialUseCase
	receipts  *inventory.ReceiptUseCase
	issues    *inventory.IssueUseCase
	status    *inventory.StatusChangeUseCase
	edits     *inventory.EditTransactionUseCase
	query     *inventory.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	f := &fixture{
		store:     store,
		materials: inventory.NewMaterialUseCase(store),
		receipts:  inventory.NewReceiptUseCase(store, log),
		issues:    inventory.NewIssueUseCase(store, log),
		status:    inventory.NewStatusChangeUseCase(store, log),
		edits:     inventory.NewEditTransactionUseCase(store, log),
		query:     inventory.NewQueryUseCase(store),
	}
	_, err := f.materials.Create(context.Background(), "admin", dto.CreateMaterialRequest{
		Code: "m", Name: "Microcrystalline cellulose", CategoryCode: "api", TypeCode: "raw",
		BaseUomCode: "kg", Manufacturer: "ACME", Supplier: "Dist SA",
	})
	require.NoError(t, err)
	return f
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func strp(s string) *string { return &s }

// receive registra una entrada del material M en el lote indicado.
func (f *fixture) receive(t *testing.T, lot, qty, total string) *dto.LedgerWriteResponse {
	t.Helper()
	out, err := f.receipts.Receive(context.Background(), "receiver", dto.ReceiptRequest{
		MaterialCode: "M", LotNumber: lot, Qty: d(qty), TotalValue: dp(total), ExpiryDate: "2027-06-30",
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) change(t *testing.T, segmentID, status string, moveQty *string) *dto.StatusChangeResponse {
	t.Helper()
	whole := moveQty == nil
	req := dto.StatusChangeRequest{NewStatus: status, Reason: "QA decision", WholeLot: &whole}
	if moveQty != nil {
		req.MoveQty = []byte(*moveQty)
	}
	out, err := f.status.Change(context.Background(), "qa.lead", segmentID, req)
	require.NoError(t, err)
	return out
}

func (f *fixture) segment(t *testing.T, id string) *dto.SegmentView {
	t.Helper()
	v, err := f.query.GetSegment(context.Background(), id)
	require.NoError(t, err)
	return v
}

func (f *fixture) entries(t *testing.T, segmentID string) []dto.LedgerEntryView {
	t.Helper()
	out, err := f.query.ListEntries(context.Background(), dto.EntryQuery{SegmentID: segmentID})
	require.NoError(t, err)
	return out
}

func (f *fixture) statusChanges(t *testing.T, segmentID string) []dto.StatusChangeView {
	t.Helper()
	out, err := f.query.ListStatusChanges(context.Background(), segmentID)
	require.NoError(t, err)
	return out
}
