package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
)

// AuditHandler feed unificado de auditoría.
type AuditHandler struct {
	query *inventory.QueryUseCase
	val   *Validator
}

// NewAuditHandler construye el handler.
func NewAuditHandler(query *inventory.QueryUseCase, val *Validator) *AuditHandler {
	return &AuditHandler{query: query, val: val}
}

// Events godoc
// @Summary      Feed de auditoría: cambios de estado y ediciones, más recientes primero
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to     query  string  false  "Hasta, inclusive (RFC3339 o YYYY-MM-DD)"
// @Param        actor  query  string  false  "Usuario"
// @Param        kind   query  string  false  "STATUS_CHANGE | TRANSACTION_EDIT"
// @Param        limit  query  int     false  "Límite"  default(200)
// @Success      200  {object}  dto.ListResponse[dto.AuditEvent]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/events [get]
func (h *AuditHandler) Events(c *fiber.Ctx) error {
	var q dto.AuditQuery
	if ok, err := h.val.bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.query.AuditFeed(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewListResponse(out))
}
