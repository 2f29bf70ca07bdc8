package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// startDB levanta un PostgreSQL desechable, aplica las migraciones y devuelve el runner.
func startDB(t *testing.T) *postgres.TxRunner {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en modo -short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("lot_ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logger.Nop()
	m, err := postgres.NewMigrator(dsn, log)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, m.Close())

	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return postgres.NewTxRunner(pool, 10, log)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestPostgres_CicloDeVidaDelLote(t *testing.T) {
	runner := startDB(t)
	ctx := context.Background()
	log := logger.Nop()

	materials := inventory.NewMaterialUseCase(runner)
	receipts := inventory.NewReceiptUseCase(runner, log)
	issues := inventory.NewIssueUseCase(runner, log)
	status := inventory.NewStatusChangeUseCase(runner, log)
	edits := inventory.NewEditTransactionUseCase(runner, log)
	query := inventory.NewQueryUseCase(runner)

	_, err := materials.Create(ctx, "admin", dto.CreateMaterialRequest{Code: "MAT0001", Name: "Lactose", BaseUomCode: "KG"})
	require.NoError(t, err)

	// ─── Entradas y costo promedio ───
	first, err := receipts.Receive(ctx, "receiver", dto.ReceiptRequest{
		MaterialCode: "mat0001", LotNumber: "L1", Qty: d("100"), TotalValue: dp("200.00"), ExpiryDate: "2027-06-30",
	})
	require.NoError(t, err)
	_, err = receipts.Receive(ctx, "receiver", dto.ReceiptRequest{
		MaterialCode: "MAT0001", LotNumber: "L1", Qty: d("50"), TotalValue: dp("125.00"),
	})
	require.NoError(t, err)
	a := first.Segment.SegmentID

	issue, err := issues.Issue(ctx, "op1", dto.IssueRequest{SegmentID: a, Qty: d("3")})
	require.NoError(t, err)
	assert.Equal(t, "2.1667", issue.Entry.UnitPrice.String())
	assert.Equal(t, "6.5", issue.Entry.TotalValue.String())

	// ─── FLIP, SPLIT y saldo calculado en la base ───
	whole, partial := true, false
	flip, err := status.Change(ctx, "qa", a, dto.StatusChangeRequest{NewStatus: "AVAILABLE", Reason: "released", WholeLot: &whole})
	require.NoError(t, err)
	assert.Equal(t, "FLIP", flip.Case)

	split, err := status.Change(ctx, "qa", a, dto.StatusChangeRequest{
		NewStatus: "REJECTED", Reason: "damaged drums", WholeLot: &partial, MoveQty: []byte(`"47"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "SPLIT", split.Case)
	assert.True(t, split.Source.BalanceQty.Equal(d("100")))
	assert.True(t, split.Destination.BalanceQty.Equal(d("47")))

	// ─── Edición auditada con fotos JSONB ───
	out, err := edits.Edit(ctx, "supervisor", issue.Entry.ID, dto.EditEntryRequest{Reason: "re-weighed", Qty: dp("4")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "8.67", out.Entry.TotalValue.String())
	history, err := query.ListEdits(ctx, issue.Entry.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "3", history[0].Before.Qty)
	assert.Equal(t, "4", history[0].After.Qty)

	changes, err := query.ListStatusChanges(ctx, a)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "REJECTED", changes[0].NewStatus, "más reciente primero")

	feed, err := query.AuditFeed(ctx, dto.AuditQuery{Actor: "qa"})
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestPostgres_IndiceUnicoConAliasHeredado(t *testing.T) {
	runner := startDB(t)
	ctx := context.Background()

	err := runner.Run(ctx, func(r inventory.Repos) error {
		mat := &entity.Material{Code: "MAT0002", Name: "Starch", BaseUomCode: "KG", Status: "ACTIVE", CreatedAt: time.Now()}
		if err := r.Materials.Create(ctx, mat); err != nil {
			return err
		}
		if err := r.Segments.Create(ctx, &entity.Segment{MaterialID: mat.ID, LotNumber: "L1", Status: entity.LotStatus("RELEASED"), CreatedAt: time.Now()}); err != nil {
			return err
		}
		return r.Segments.Create(ctx, &entity.Segment{MaterialID: mat.ID, LotNumber: "L1", Status: entity.StatusAvailable, CreatedAt: time.Now()})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIntegrity)

	require.NoError(t, runner.View(ctx, func(r inventory.Repos) error {
		m, err := r.Materials.GetByCode(ctx, "MAT0002")
		assert.Nil(t, m, "la transacción fallida no deja el material")
		return err
	}))
}

func TestPostgres_SalidasConcurrentesNoSobregiran(t *testing.T) {
	runner := startDB(t)
	ctx := context.Background()
	log := logger.Nop()

	_, err := inventory.NewMaterialUseCase(runner).Create(ctx, "admin", dto.CreateMaterialRequest{Code: "MAT0003", Name: "Talc", BaseUomCode: "KG"})
	require.NoError(t, err)
	rec, err := inventory.NewReceiptUseCase(runner, log).Receive(ctx, "receiver", dto.ReceiptRequest{
		MaterialCode: "MAT0003", LotNumber: "L1", Qty: d("10"),
	})
	require.NoError(t, err)

	issues := inventory.NewIssueUseCase(runner, log)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := issues.Issue(ctx, "op", dto.IssueRequest{SegmentID: rec.Segment.SegmentID, Qty: d("3")})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, ok, 1)
	assert.LessOrEqual(t, ok, 3, "en un saldo de 10 caben a lo sumo tres salidas de 3")
	seg, err := inventory.NewQueryUseCase(runner).GetSegment(ctx, rec.Segment.SegmentID)
	require.NoError(t, err)
	assert.True(t, seg.BalanceQty.Equal(d("10").Sub(d("3").Mul(decimal.NewFromInt(int64(ok))))))
	assert.False(t, seg.BalanceQty.IsNegative())
}

func TestPostgres_CambiosDeEstadoConcurrentes(t *testing.T) {
	runner := startDB(t)
	ctx := context.Background()
	log := logger.Nop()

	_, err := inventory.NewMaterialUseCase(runner).Create(ctx, "admin", dto.CreateMaterialRequest{Code: "MAT0004", Name: "Mannitol", BaseUomCode: "KG"})
	require.NoError(t, err)
	receipts := inventory.NewReceiptUseCase(runner, log)
	status := inventory.NewStatusChangeUseCase(runner, log)
	query := inventory.NewQueryUseCase(runner)

	receive := func(lot, qty string) string {
		out, err := receipts.Receive(ctx, "receiver", dto.ReceiptRequest{MaterialCode: "MAT0004", LotNumber: lot, Qty: d(qty)})
		require.NoError(t, err)
		return out.Segment.SegmentID
	}
	run := func(jobs []func() error) (ok int, errs []error) {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, job := range jobs {
			wg.Add(1)
			go func(job func() error) {
				defer wg.Done()
				err := job()
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				ok++
			}(job)
		}
		wg.Wait()
		return ok, errs
	}
	change := func(id string, req dto.StatusChangeRequest) func() error {
		return func() error {
			_, err := status.Change(ctx, "qa.lead", id, req)
			return err
		}
	}
	assertLot := func(lot, total string) {
		t.Helper()
		views, err := query.ListSegments(ctx, dto.SegmentQuery{MaterialCode: "MAT0004", Search: lot, IncludeZero: true, Limit: 100})
		require.NoError(t, err)
		seen := map[entity.LotStatus]bool{}
		sum := decimal.Zero
		for _, v := range views {
			if v.LotNumber != lot {
				continue
			}
			s := entity.LotStatus(v.Status).Normalized()
			assert.False(t, seen[s], "estado %s repetido en el lote %s", s, lot)
			seen[s] = true
			assert.False(t, v.BalanceQty.IsNegative())
			sum = sum.Add(v.BalanceQty)
		}
		assert.True(t, sum.Equal(d(total)), "lote %s: esperado %s, quedó %s", lot, total, sum)
	}
	whole, partial := true, false

	// ─── Mismo segmento y mismo destino: un solo ganador ───
	a := receive("L1", "150")
	var jobs []func() error
	for i := 0; i < 6; i++ {
		jobs = append(jobs, change(a, dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "failed assay", WholeLot: &whole}))
	}
	ok, errs := run(jobs)
	assert.Equal(t, 1, ok)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assertLot("L1", "150")

	// ─── Lote completo y parcial sobre el mismo segmento ───
	b := receive("L2", "150")
	jobs = nil
	for i := 0; i < 3; i++ {
		jobs = append(jobs,
			change(b, dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "failed assay", WholeLot: &whole}),
			change(b, dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "damaged drums", WholeLot: &partial, MoveQty: []byte(`50`)}),
		)
	}
	ok, errs = run(jobs)
	assert.GreaterOrEqual(t, ok, 1)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assertLot("L2", "150")

	// ─── Dos segmentos del mismo lote con entradas simultáneas ───
	c := receive("L3", "100")
	_, err = status.Change(ctx, "qa.lead", c, dto.StatusChangeRequest{NewStatus: "AVAILABLE", Reason: "released", WholeLot: &whole})
	require.NoError(t, err)
	e := receive("L3", "30")
	jobs = []func() error{
		change(c, dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "recall", WholeLot: &whole}),
		change(e, dto.StatusChangeRequest{NewStatus: "REJECTED", Reason: "recall", WholeLot: &whole}),
	}
	for i := 0; i < 3; i++ {
		jobs = append(jobs, func() error {
			_, err := receipts.Receive(ctx, "receiver", dto.ReceiptRequest{MaterialCode: "MAT0004", LotNumber: "L3", Qty: d("10")})
			return err
		})
	}
	ok, errs = run(jobs)
	require.Empty(t, errs, "sin interbloqueos ni conflictos agotados")
	assert.Equal(t, 5, ok)
	assertLot("L3", "160")
}
