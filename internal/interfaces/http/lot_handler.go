package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
)

// LotHandler saldos por segmento, cambios de estado y resumen de stock.
type LotHandler struct {
	query  *inventory.QueryUseCase
	status *inventory.StatusChangeUseCase
	val    *Validator
	now    func() time.Time
}

// NewLotHandler construye el handler.
func NewLotHandler(query *inventory.QueryUseCase, status *inventory.StatusChangeUseCase, val *Validator) *LotHandler {
	return &LotHandler{query: query, status: status, val: val, now: time.Now}
}

// List godoc
// @Summary      Saldos por segmento lote-estado
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        material_code  query  string  false  "Código de material"
// @Param        search         query  string  false  "Coincidencia parcial del lote"
// @Param        include_zero   query  bool    false  "Incluir segmentos sin saldo"
// @Param        limit          query  int     false  "Límite"  default(200)
// @Success      200  {object}  dto.ListResponse[dto.SegmentView]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	var q dto.SegmentQuery
	if ok, err := h.val.bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.query.ListSegments(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}

// GetByID godoc
// @Summary      Obtener segmento con su saldo
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del segmento"
// @Success      200  {object}  dto.SegmentView
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetSegment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Movimientos del segmento (más recientes primero)
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del segmento"
// @Param        type   query  string  false  "RECEIPT | ISSUE | STATUS_MOVE"
// @Param        limit  query  int     false  "Límite"
// @Success      200  {object}  dto.ListResponse[dto.LedgerEntryView]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transactions [get]
func (h *LotHandler) Transactions(c *fiber.Ctx) error {
	var q dto.EntryQuery
	if ok, err := h.val.bindQuery(c, &q); !ok {
		return err
	}
	q.SegmentID = c.Params("id")
	out, err := h.query.ListEntries(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}

// StatusHistory godoc
// @Summary      Historial de cambios de estado del segmento
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del segmento"
// @Success      200  {object}  dto.ListResponse[dto.StatusChangeView]
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/status-history [get]
func (h *LotHandler) StatusHistory(c *fiber.Ctx) error {
	out, err := h.query.ListStatusChanges(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}

// ChangeStatus godoc
// @Summary      Cambiar el estado de un segmento (lote completo o parcial)
// @Description  Aplica MERGE, FLIP o SPLIT según los segmentos existentes del lote.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del segmento"
// @Param        body  body  dto.StatusChangeRequest  true  "new_status, reason, whole_lot, move_qty"
// @Success      200   {object}  dto.StatusChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/status [post]
func (h *LotHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.StatusChangeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido: "+err.Error())
	}
	out, err := h.status.Change(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de stock por lotes
// @Tags         summary
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockSummary
// @Router       /api/summary/stock [get]
func (h *LotHandler) Summary(c *fiber.Ctx) error {
	out, err := h.query.Summary(c.UserContext(), h.now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
