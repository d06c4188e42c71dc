package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})
	return app
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := newProtectedApp()

	token := signToken(t, jwt.MapClaims{"sub": float64(7), "role": "Manager"})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsBadSignature(t *testing.T) {
	app := newProtectedApp()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": float64(7)})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestExtractUserIDFromClaims(t *testing.T) {
	id := extractUserIDFromClaims(jwt.MapClaims{"sub": "42"})
	require.NotNil(t, id)
	require.Equal(t, uint(42), *id)

	id = extractUserIDFromClaims(jwt.MapClaims{"user_id": float64(9)})
	require.NotNil(t, id)
	require.Equal(t, uint(9), *id)

	require.Nil(t, extractUserIDFromClaims(jwt.MapClaims{"sub": "not-a-number"}))
	require.Nil(t, extractUserIDFromClaims(jwt.MapClaims{}))
}

func TestExtractUserRoleFromClaims(t *testing.T) {
	require.Equal(t, "manager", extractUserRoleFromClaims(jwt.MapClaims{"role": " Manager "}))
	require.Equal(t, "reviewer", extractUserRoleFromClaims(jwt.MapClaims{"roles": []interface{}{"Reviewer", "manager"}}))
	require.Empty(t, extractUserRoleFromClaims(jwt.MapClaims{}))
}
