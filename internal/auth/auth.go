package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/storefront/internal/apperror"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	localsKey = "user"
)

// Middleware validates the bearer token and stores it under c.Locals("user").
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    localsKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperror.Respond(c, apperror.ErrUnauthenticated)
		},
	})
}

// IssueToken signs a token carrying the owner id and role claims read back by
// OwnerIDFromCtx and IsAdmin.
func IssueToken(secret string, userID int, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals(localsKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	return claims, ok
}

// OwnerIDFromCtx returns the authenticated user's id. Handlers pass it down
// explicitly; nothing below the HTTP layer reads the request context.
func OwnerIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return 0, apperror.ErrUnauthenticated
	}

	var id int
	switch v := claims["user_id"].(type) {
	case float64:
		id = int(v)
	case int:
		id = v
	case int64:
		id = int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, apperror.ErrUnauthenticated
		}
		id = n
	default:
		return 0, apperror.ErrUnauthenticated
	}

	if id <= 0 {
		return 0, apperror.ErrUnauthenticated
	}
	return id, nil
}

// IsAdmin reports whether the caller carries the operator role.
func IsAdmin(c *fiber.Ctx) bool {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == RoleAdmin
}
