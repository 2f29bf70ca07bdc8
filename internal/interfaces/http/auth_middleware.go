package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/pkg/jwt"
)

// LocalIdentity key de c.Locals con la identidad del actor autenticado.
const LocalIdentity = "identity"

// Claves de permiso. La matriz rol → permisos la resuelve el emisor del token.
const (
	PermLotsView         = "lots.view"
	PermReceiptsCreate   = "receipts.create"
	PermIssuesCreate     = "issues.create"
	PermIssuesEdit       = "issues.edit"
	PermReceiptsEdit     = "receipts.edit"
	PermLotsStatusChange = "lots.status_change"
	PermAuditView        = "audit.view"
	PermMaterialsCreate  = "materials.create"
)

// AuthMiddleware valida el Bearer Token JWT y deja la identidad del actor en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalIdentity, id)
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del contexto (después del middleware de auth).
func GetIdentity(c *fiber.Ctx) (jwt.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(jwt.Identity)
	return id, ok
}

// GetActor nombre de usuario del actor autenticado; "" si no hay identidad.
func GetActor(c *fiber.Ctx) string {
	id, _ := GetIdentity(c)
	return id.Username
}

// RequirePermission exige que el actor tenga el permiso. Debe usarse DESPUÉS de AuthMiddleware.
//   - 401 si no hay identidad en el contexto.
//   - 403 si el permiso no está concedido.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := GetIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "identidad no encontrada en el token"})
		}
		if !id.Can(permission) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "missing permission " + permission})
		}
		return c.Next()
	}
}

// editAuthorizer permiso de edición según el tipo del movimiento: issues.edit o receipts.edit.
func editAuthorizer(id jwt.Identity) inventory.EditAuthorizer {
	return func(t entity.EntryType) error {
		perm := PermReceiptsEdit
		if t == entity.EntryIssue {
			perm = PermIssuesEdit
		}
		if !id.Can(perm) {
			return domain.Forbidden("missing permission %s", perm)
		}
		return nil
	}
}
