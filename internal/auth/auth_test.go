package auth

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := OwnerIDFromCtx(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"id": id, "admin": IsAdmin(c)})
	})
	return app
}

func TestMiddleware_ValidToken(t *testing.T) {
	token, err := IssueToken(testSecret, 42, RoleAdmin, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := newApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestMiddleware_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, 42, RoleCustomer, -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("other-secret", 42, RoleCustomer, time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing": "",
		"expired": "Bearer " + expired,
		"foreign": "Bearer " + foreign,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			res, err := newApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
		})
	}
}

func TestOwnerIDFromCtx_ClaimTypes(t *testing.T) {
	tests := []struct {
		name    string
		claim   any
		wantID  int
		wantErr bool
	}{
		{name: "float", claim: float64(7), wantID: 7},
		{name: "int", claim: 8, wantID: 8},
		{name: "string", claim: strconv.Itoa(9), wantID: 9},
		{name: "garbage string", claim: "abc", wantErr: true},
		{name: "zero", claim: 0, wantErr: true},
		{name: "missing", claim: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				claims := jwt.MapClaims{}
				if tt.claim != nil {
					claims["user_id"] = tt.claim
				}
				c.Locals("user", &jwt.Token{Claims: claims})

				id, err := OwnerIDFromCtx(c)
				if tt.wantErr {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
					assert.Equal(t, tt.wantID, id)
				}
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
		})
	}
}

func TestIsAdmin_NoToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.False(t, IsAdmin(c))
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}
