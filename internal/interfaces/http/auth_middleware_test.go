package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	apphttp "github.com/jhoicas/factory-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/factory-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testUserName  = "Ana Planta"
	testIssuer    = "factory-api-test"
	testExpMin    = 60
)

func signToken(t *testing.T, id pkgjwt.Identity, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, testIssuer, expMin)
	require.NoError(t, err)
	return tok
}

// guardedApp GET /guarded con AuthMiddleware + RequireRole; devuelve el Actor resuelto.
func guardedApp(allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowed...),
		func(c *fiber.Ctx) error {
			a := apphttp.GetActor(c)
			return c.JSON(fiber.Map{"user_id": a.UserID, "name": a.Name, "role": a.Role, "performer": a.Performer()})
		},
	)
	return app
}

func callGuarded(t *testing.T, app *fiber.App, authorization string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body := map[string]string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthMiddleware_RechazaCabecerasInvalidas(t *testing.T) {
	expired := signToken(t, pkgjwt.Identity{UserID: testUserID, Role: entity.RoleAdmin}, -1)
	foreign, err := pkgjwt.Generate("otro-secreto", pkgjwt.Identity{UserID: testUserID, Role: entity.RoleAdmin}, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name          string
		authorization string
		code          string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema basic", "Basic dXNlcjpwaW4=", "INVALID_TOKEN"},
		{"sin esquema", signToken(t, pkgjwt.Identity{UserID: testUserID, Role: entity.RoleAdmin}, testExpMin), "INVALID_TOKEN"},
		{"basura", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"otro secreto", "Bearer " + foreign, "INVALID_TOKEN"},
	}
	app := guardedApp(entity.RoleAdmin)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := callGuarded(t, app, tc.authorization)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestAuthMiddleware_BearerSinDistinguirMayusculas(t *testing.T) {
	tok := signToken(t, pkgjwt.Identity{UserID: testUserID, Name: testUserName, Role: entity.RoleOperator}, testExpMin)
	status, _ := callGuarded(t, guardedApp(entity.RoleOperator), "bearer "+tok)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireRole_MatrizDeRoles(t *testing.T) {
	managers := []string{entity.RoleManager, entity.RoleAdmin}
	cases := []struct {
		allowed []string
		role    string
		status  int
		code    string
	}{
		{managers, entity.RoleAdmin, http.StatusOK, ""},
		{managers, entity.RoleManager, http.StatusOK, ""},
		{managers, entity.RoleOperator, http.StatusForbidden, "FORBIDDEN"},
		{[]string{entity.RoleAdmin}, entity.RoleManager, http.StatusForbidden, "FORBIDDEN"},
		{[]string{entity.RoleOperator}, entity.RoleOperator, http.StatusOK, ""},
		{managers, "", http.StatusUnauthorized, "MISSING_ROLE"},
		{managers, "bodega", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			tok := signToken(t, pkgjwt.Identity{UserID: testUserID, Name: testUserName, Role: tc.role}, testExpMin)
			status, body := callGuarded(t, guardedApp(tc.allowed...), "Bearer "+tok)
			assert.Equal(t, tc.status, status)
			if tc.code != "" {
				assert.Equal(t, tc.code, body["code"])
			}
		})
	}
}

func TestGetActor_TomaNombreDelToken(t *testing.T) {
	tok := signToken(t, pkgjwt.Identity{UserID: testUserID, Name: testUserName, Role: entity.RoleManager}, testExpMin)
	status, body := callGuarded(t, guardedApp(entity.RoleManager), "Bearer "+tok)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testUserName, body["name"])
	assert.Equal(t, entity.RoleManager, body["role"])
	assert.Equal(t, testUserName, body["performer"], "las marcas se firman con el nombre")
}

func TestGetActor_SinNombreFirmaConID(t *testing.T) {
	tok := signToken(t, pkgjwt.Identity{UserID: testUserID, Role: entity.RoleOperator}, testExpMin)
	status, body := callGuarded(t, guardedApp(entity.RoleOperator), "Bearer "+tok)
	require.Equal(t, http.StatusOK, status)

	assert.Empty(t, body["name"])
	assert.Equal(t, testUserID, body["performer"])
}

func TestGetActor_SinMiddlewareVacio(t *testing.T) {
	app := fiber.New()
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.JSON(apphttp.GetActor(c))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct{ UserID, Name, Role string }
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.UserID)
	assert.Empty(t, body.Role)
}

func TestJWT_IdentidadCompleta(t *testing.T) {
	want := pkgjwt.Identity{UserID: testUserID, Name: testUserName, Role: entity.RoleOperator}
	got, err := pkgjwt.Parse(testJWTSecret, signToken(t, want, testExpMin))
	require.NoError(t, err)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Role, got.Role)
}

func TestErrorResponse_FormatoDeRechazo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	resp, err := guardedApp(entity.RoleAdmin).Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "MISSING_TOKEN", e.Code)
	assert.NotEmpty(t, e.Message)
}
