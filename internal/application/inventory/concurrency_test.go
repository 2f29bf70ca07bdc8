package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// changeAll lanza las solicitudes en paralelo y devuelve cuántas se aplicaron y los errores.
func changeAll(f *fixture, reqs map[string][]dto.StatusChangeRequest) (int, []error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		errs []error
	)
	for id, list := range reqs {
		for _, req := range list {
			wg.Add(1)
			go func(id string, req dto.StatusChangeRequest) {
				defer wg.Done()
				_, err := f.status.Change(context.Background(), "qa.lead", id, req)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				ok++
			}(id, req)
		}
	}
	wg.Wait()
	return ok, errs
}

// assertLotInvariants verifica un segmento por estado normalizado, saldos no negativos y total conservado.
func assertLotInvariants(t *testing.T, f *fixture, total string) {
	t.Helper()
	views, err := f.query.ListSegments(context.Background(), dto.SegmentQuery{MaterialCode: "M", IncludeZero: true})
	require.NoError(t, err)
	seen := map[string]bool{}
	sum := d("0")
	for _, v := range views {
		status := entity.LotStatus(v.Status).Normalized()
		assert.False(t, seen[string(status)], "estado %s repetido en el lote", status)
		seen[string(status)] = true
		assert.False(t, v.BalanceQty.IsNegative(), "saldo negativo en %s", v.SegmentID)
		sum = sum.Add(v.BalanceQty)
	}
	assert.True(t, sum.Equal(d(total)), "el lote conserva %s, quedó %s", total, sum)
}

// ─── Cambios de estado concurrentes ────────────────────────────────────────────

func TestStatusChange_ConcurrenteMismoDestinoUnSoloGanador(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, "L1", "150", "300").Segment.SegmentID

	whole := true
	reqs := make([]dto.StatusChangeRequest, 6)
	for i := range reqs {
		reqs[i] = dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "failed assay", WholeLot: &whole}
	}
	ok, errs := changeAll(f, map[string][]dto.StatusChangeRequest{a: reqs})

	assert.Equal(t, 1, ok)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "segment is already REJECTED", domain.Message(err))
	}
	assert.Len(t, f.statusChanges(t, a), 1)
	assertLotInvariants(t, f, "150")
}

func TestStatusChange_ConcurrenteLoteCompletoYParcial(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, "L1", "150", "300").Segment.SegmentID

	whole, partial := true, false
	var reqs []dto.StatusChangeRequest
	for i := 0; i < 3; i++ {
		reqs = append(reqs,
			dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "failed assay", WholeLot: &whole},
			dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "damaged drums", WholeLot: &partial, MoveQty: []byte(`50`)},
		)
	}
	ok, errs := changeAll(f, map[string][]dto.StatusChangeRequest{a: reqs})

	assert.GreaterOrEqual(t, ok, 1)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.False(t, errors.Is(err, domain.ErrConflict))
	}
	assertLotInvariants(t, f, "150")
}

func TestStatusChange_ConcurrenteDosSegmentosDelMismoLote(t *testing.T) {
	f := newFixture(t)
	a := f.receive(t, "L1", "100", "200").Segment.SegmentID
	f.change(t, a, "AVAILABLE", nil)
	c := f.receive(t, "L1", "30", "60").Segment.SegmentID

	whole := true
	req := dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "recall", WholeLot: &whole}
	ok, errs := changeAll(f, map[string][]dto.StatusChangeRequest{a: {req}, c: {req}})

	require.Empty(t, errs)
	assert.Equal(t, 2, ok, "el primero cambia el estado y el segundo se fusiona en él")
	rejected := 0
	for _, id := range []string{a, c} {
		if v := f.segment(t, id); v.Status == "REJECTED" {
			rejected++
			assert.True(t, v.BalanceQty.Equal(d("130")))
		} else {
			assert.True(t, v.BalanceQty.IsZero())
		}
	}
	assert.Equal(t, 1, rejected)
	assertLotInvariants(t, f, "130")
}

func TestStatusChange_ConcurrenteConEntradasYSalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.receive(t, "L1", "100", "200").Segment.SegmentID

	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, err := f.receipts.Receive(ctx, "receiver", dto.ReceiptRequest{MaterialCode: "M", LotNumber: "L1", Qty: d("10")})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.issues.Issue(ctx, "op1", dto.IssueRequest{MaterialCode: "M", LotNumber: "L1", Qty: d("5")})
			errs <- err
		}()
		go func(status string) {
			defer wg.Done()
			_, err := f.status.Change(ctx, "qa.lead", a, dto.StatusChangeRequest{NewStatus: status, Reason: "qa"})
			errs <- err
		}([]string{"AVAILABLE", "REJECTED"}[i%2])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrValidation, "solo rechazos de negocio, nunca conflictos")
		}
	}
	views, err := f.query.ListSegments(ctx, dto.SegmentQuery{MaterialCode: "M", IncludeZero: true})
	require.NoError(t, err)
	for _, v := range views {
		assert.False(t, v.BalanceQty.IsNegative())
	}
}
