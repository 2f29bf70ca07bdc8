package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
)

func issueEntry() *entity.LedgerEntry {
	mfg := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return &entity.LedgerEntry{
		ID: "e-1", SegmentID: "A", Type: entity.EntryIssue, Direction: entity.DirectionOut,
		Quantity: d("12.5"), UomCode: "KG", UnitPrice: dp("2.1667"), TotalValue: dp("27.08"),
		TargetRef: "WO-77", ConsumptionType: entity.ConsumptionUsage, ProductBatchNo: "PB-1",
		ProductManufactureDate: &mfg, StatusAtEntry: entity.StatusAvailable,
		CreatedAt: now, CreatedBy: "op1",
	}
}

func TestSnapshot_SerializacionDeterminista(t *testing.T) {
	a, err := inventory.Snapshot(issueEntry()).Canonical()
	require.NoError(t, err)
	b, err := inventory.Snapshot(issueEntry()).Canonical()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.JSONEq(t, `{
		"comment": "", "consumption_type": "USAGE", "created_at": "2026-05-04T10:00:00Z",
		"created_by": "op1", "direction": -1, "id": "e-1", "product_batch_no": "PB-1",
		"product_manufacture_date": "2026-04-01T00:00:00Z", "qty": "12.5", "segment_id": "A",
		"status_at_entry": "AVAILABLE", "target_ref": "WO-77", "total_value": "27.08",
		"txn_type": "ISSUE", "unit_price": "2.1667", "uom_code": "KG"
	}`, string(a))
	assert.Regexp(t, `^\{"comment":.*"uom_code":"KG"\}$`, string(a), "claves en orden alfabético")
}

func TestDiff_ReconstruyeCamposCambiados(t *testing.T) {
	e := issueEntry()
	before := inventory.Snapshot(e)
	e.Quantity = d("10")
	e.TotalValue = dp("21.67")
	e.Comment = "recount"
	e.ProductManufactureDate = nil
	after := inventory.Snapshot(e)

	diff := inventory.Diff(before, after)
	assert.Len(t, diff, 4)
	assert.Equal(t, inventory.FieldChange{Before: "12.5", After: "10"}, diff["qty"])
	assert.Equal(t, inventory.FieldChange{Before: "27.08", After: "21.67"}, diff["total_value"])
	assert.Equal(t, inventory.FieldChange{Before: "", After: "recount"}, diff["comment"])
	assert.Equal(t, inventory.FieldChange{Before: "2026-04-01T00:00:00Z", After: nil}, diff["product_manufacture_date"])
	assert.NotContains(t, diff, "status_at_entry")
}

func TestDiff_SinCambiosVacio(t *testing.T) {
	s := inventory.Snapshot(issueEntry())
	assert.Empty(t, inventory.Diff(s, s))
}
