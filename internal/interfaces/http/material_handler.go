package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
)

// MaterialHandler consulta (y alta de carga inicial) del maestro de materiales.
type MaterialHandler struct {
	uc  *inventory.MaterialUseCase
	val *Validator
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *inventory.MaterialUseCase, val *Validator) *MaterialHandler {
	return &MaterialHandler{uc: uc, val: val}
}

// Create godoc
// @Summary      Crear material
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "Datos del material"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if ok, err := h.val.bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByCode godoc
// @Summary      Obtener material por código
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del material"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{code} [get]
func (h *MaterialHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
