package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// LedgerHandler entradas, salidas y edición de movimientos.
type LedgerHandler struct {
	receipts *inventory.ReceiptUseCase
	issues   *inventory.IssueUseCase
	edits    *inventory.EditTransactionUseCase
	query    *inventory.QueryUseCase
	val      *Validator
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	receipts *inventory.ReceiptUseCase,
	issues *inventory.IssueUseCase,
	edits *inventory.EditTransactionUseCase,
	query *inventory.QueryUseCase,
	val *Validator,
) *LedgerHandler {
	return &LedgerHandler{receipts: receipts, issues: issues, edits: edits, query: query, val: val}
}

// Receive godoc
// @Summary      Registrar entrada de material (queda en cuarentena)
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiptRequest  true  "material_code, lot_number, qty, precios opcionales"
// @Success      201   {object}  dto.LedgerWriteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *LedgerHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if ok, err := h.val.bindBody(c, &in); !ok {
		return err
	}
	out, err := h.receipts.Receive(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Issue godoc
// @Summary      Registrar salida de material desde un segmento
// @Tags         issues
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueRequest  true  "segment_id o material_code + lot_number, qty"
// @Success      201   {object}  dto.LedgerWriteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/issues [post]
func (h *LedgerHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if ok, err := h.val.bindBody(c, &in); !ok {
		return err
	}
	out, err := h.issues.Issue(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// listByType lista movimientos de un tipo fijo (GET /api/receipts, GET /api/issues).
func (h *LedgerHandler) listByType(t entity.EntryType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q dto.EntryQuery
		if ok, err := h.val.bindQuery(c, &q); !ok {
			return err
		}
		q.Type = string(t)
		out, err := h.query.ListEntries(c.UserContext(), q)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.NewListResponse(out))
	}
}

// ListTransactions godoc
// @Summary      Listar movimientos (más recientes primero)
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        segment_id  query  string  false  "ID del segmento"
// @Param        type        query  string  false  "RECEIPT | ISSUE | STATUS_MOVE"
// @Param        limit       query  int     false  "Límite"  default(200)
// @Success      200  {object}  dto.ListResponse[dto.LedgerEntryView]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *LedgerHandler) ListTransactions(c *fiber.Ctx) error {
	var q dto.EntryQuery
	if ok, err := h.val.bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.query.ListEntries(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}

// Edit godoc
// @Summary      Editar un movimiento con motivo (queda auditado)
// @Description  Requiere issues.edit o receipts.edit según el tipo. Los STATUS_MOVE no se editan.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del movimiento"
// @Param        body  body  dto.EditEntryRequest  true  "reason y campos a cambiar"
// @Success      200   {object}  dto.EditResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [patch]
func (h *LedgerHandler) Edit(c *fiber.Ctx) error {
	id, ok := GetIdentity(c)
	if !ok {
		return writeError(c, domain.Unauthorized("identity not found in token"))
	}
	var in dto.EditEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido: "+err.Error())
	}
	out, err := h.edits.Edit(c.UserContext(), id.Username, c.Params("id"), in, editAuthorizer(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Edits godoc
// @Summary      Historial de ediciones de un movimiento
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.ListResponse[dto.EditRecordView]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/edits [get]
func (h *LedgerHandler) Edits(c *fiber.Ctx) error {
	out, err := h.query.ListEdits(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}
