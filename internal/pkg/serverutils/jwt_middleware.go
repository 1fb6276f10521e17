package serverutils

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"policygen/pkg/wizard"
)

const identityKey = "identity"

// Identity is who is calling: Authenticated or Anonymous.
type Identity interface {
	isIdentity()
}

type Authenticated struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Anonymous struct{}

func (Authenticated) isIdentity() {}
func (Anonymous) isIdentity()     {}

func parseBearer(ctx *fiber.Ctx) (Identity, error) {
	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return Anonymous{}, nil
	}
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return nil, fmt.Errorf("%w: malformed authorization header", wizard.ErrUnauthenticated)
	}
	tokenStr := strings.TrimSpace(authHeader[7:])

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", wizard.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims", wizard.ErrUnauthenticated)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: token has no user", wizard.ErrUnauthenticated)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return Authenticated{UserID: userID, Email: email, Name: name}, nil
}

// ResolveIdentity evaluates the caller once per request and caches the
// answer in Locals. A missing header is Anonymous; a bad token is an error.
func ResolveIdentity(ctx *fiber.Ctx) (Identity, error) {
	if id, ok := ctx.Locals(identityKey).(Identity); ok {
		return id, nil
	}
	id, err := parseBearer(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Locals(identityKey, id)
	if auth, ok := id.(Authenticated); ok {
		ctx.Locals("user_id", auth.UserID)
	}
	return id, nil
}

// OptionalIdentity admits anonymous callers.
func OptionalIdentity(ctx *fiber.Ctx) error {
	if _, err := ResolveIdentity(ctx); err != nil {
		return err
	}
	return ctx.Next()
}

// JwtMiddleware only admits authenticated callers.
func JwtMiddleware(ctx *fiber.Ctx) error {
	id, err := ResolveIdentity(ctx)
	if err != nil {
		return err
	}
	if _, ok := id.(Authenticated); !ok {
		return fmt.Errorf("%w: missing token", wizard.ErrUnauthenticated)
	}
	return ctx.Next()
}

// CurrentIdentity returns what the guard resolved, Anonymous if it never ran.
func CurrentIdentity(ctx *fiber.Ctx) Identity {
	if id, ok := ctx.Locals(identityKey).(Identity); ok {
		return id
	}
	return Anonymous{}
}

// RequireAuthenticated narrows the identity for owner-only actions.
func RequireAuthenticated(ctx *fiber.Ctx) (Authenticated, error) {
	if auth, ok := CurrentIdentity(ctx).(Authenticated); ok {
		return auth, nil
	}
	return Authenticated{}, wizard.ErrUnauthenticated
}
