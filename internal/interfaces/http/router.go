package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Materials    *inventory.MaterialUseCase
	Receipts     *inventory.ReceiptUseCase
	Issues       *inventory.IssueUseCase
	StatusChange *inventory.StatusChangeUseCase
	Edits        *inventory.EditTransactionUseCase
	Query        *inventory.QueryUseCase
	Logger       *logger.Logger
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token y un permiso.
func Router(app *fiber.App, deps RouterDeps) {
	val := NewValidator()
	api := app.Group("/api", RequestLogger(deps.Logger), AuthMiddleware(deps.JWTSecret))

	can := RequirePermission

	// Materiales
	materialHandler := NewMaterialHandler(deps.Materials, val)
	api.Post("/materials", can(PermMaterialsCreate), materialHandler.Create)
	api.Get("/materials/:code", can(PermLotsView), materialHandler.GetByCode)

	// Entradas, salidas y movimientos
	ledgerHandler := NewLedgerHandler(deps.Receipts, deps.Issues, deps.Edits, deps.Query, val)
	api.Post("/receipts", can(PermReceiptsCreate), ledgerHandler.Receive)
	api.Get("/receipts", can(PermLotsView), ledgerHandler.listByType(entity.EntryReceipt))
	api.Post("/issues", can(PermIssuesCreate), ledgerHandler.Issue)
	api.Get("/issues", can(PermLotsView), ledgerHandler.listByType(entity.EntryIssue))
	api.Get("/transactions", can(PermLotsView), ledgerHandler.ListTransactions)
	// El permiso de edición depende del tipo del movimiento y lo resuelve el caso de uso.
	api.Patch("/transactions/:id", ledgerHandler.Edit)
	api.Get("/transactions/:id/edits", can(PermAuditView), ledgerHandler.Edits)

	// Segmentos lote-estado
	lotHandler := NewLotHandler(deps.Query, deps.StatusChange, val)
	api.Get("/lots", can(PermLotsView), lotHandler.List)
	api.Get("/lots/:id", can(PermLotsView), lotHandler.GetByID)
	api.Get("/lots/:id/transactions", can(PermLotsView), lotHandler.Transactions)
	api.Get("/lots/:id/status-history", can(PermLotsView), lotHandler.StatusHistory)
	api.Post("/lots/:id/status", can(PermLotsStatusChange), lotHandler.ChangeStatus)
	api.Get("/summary/stock", can(PermLotsView), lotHandler.Summary)

	// Auditoría
	auditHandler := NewAuditHandler(deps.Query, val)
	api.Get("/audit/events", can(PermAuditView), auditHandler.Events)
}
