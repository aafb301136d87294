package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/rmarquesvinicius/vendas-api/internal/interfaces/http"
	pkgjwt "github.com/rmarquesvinicius/vendas-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "vendas-api-test"
	testExpMin    = 60
)

// buildTestApp monta uma aplicação Fiber mínima com AuthMiddleware +
// RequireRole e um handler que devolve 200 se passar pelos middlewares.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"subject": apphttp.GetSubject(c),
			})
		},
	)
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, "maria", role, testIssuer, testExpMin)
	require.NoError(t, err, "deve gerar um token JWT válido")
	return "Bearer " + tok
}

func TestAuthMiddleware_SemToken(t *testing.T) {
	app := buildTestApp(apphttp.RoleOperator)
	req := httptest.NewRequest("GET", "/protected", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp(apphttp.RoleOperator)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer nao-e-um-jwt")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_AssinaturaErrada(t *testing.T) {
	app := buildTestApp(apphttp.RoleOperator)
	tok, err := pkgjwt.Generate("outro-secret", "maria", apphttp.RoleOperator, testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole_PapelInsuficiente(t *testing.T) {
	app := buildTestApp(apphttp.RoleOperator)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", tokenForRole(t, "leitor"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRole_PapelPermitido(t *testing.T) {
	app := buildTestApp(apphttp.RoleOperator, "leitor")
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleOperator))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
