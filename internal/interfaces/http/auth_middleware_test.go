package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/lot-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/lot-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "lot-ledger-test"
	testExpMin    = 60
)

// buildTestApp aplicación Fiber mínima con AuthMiddleware + RequirePermission y un handler
// dummy que devuelve 200 si pasa los middlewares.
func buildTestApp(permission string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission(permission),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "actor": apphttp.GetActor(c)})
		},
	)
	return app
}

// bearer genera un JWT para el usuario con los permisos indicados.
func bearer(t *testing.T, username string, permissions ...string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{Username: username, Role: "qa", Permissions: permissions}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_ConPermisoAccede(t *testing.T) {
	app := buildTestApp("lots.view")
	resp := doRequest(t, app, bearer(t, "ana", "lots.view", "audit.view"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ana", body["actor"], "el actor sale del claim username")
}

func TestRequirePermission_SinPermisoRetorna403(t *testing.T) {
	app := buildTestApp("lots.status_change")
	resp := doRequest(t, app, bearer(t, "ana", "lots.view"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
	assert.Contains(t, string(body), "lots.status_change")
}

func TestRequirePermission_SinIdentidadRetorna401(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", apphttp.RequirePermission("lots.view"), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_Rechazos(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{Username: "ana"}, testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secret-completamente-distinto", pkgjwt.Identity{Username: "ana"}, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firma con otro secret", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp("lots.view"), tc.header)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tc.code)
		})
	}
}
