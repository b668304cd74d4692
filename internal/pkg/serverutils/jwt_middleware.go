package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalsUserID  = "user_id"
	AnonymousUser = "anonymous"
)

// OptionalJwtMiddleware resolves the caller id from a bearer token when one
// is sent. Requests without a token continue as AnonymousUser; a token that
// is sent but invalid is rejected.
func OptionalJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if secret == "" || authHeader == "" {
			ctx.Locals(LocalsUserID, AnonymousUser)
			return ctx.Next()
		}
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Malformed token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		userID, _ := claims[LocalsUserID].(string)
		if userID == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		ctx.Locals(LocalsUserID, userID)
		return ctx.Next()
	}
}

// UserID reads the id set by OptionalJwtMiddleware.
func UserID(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals(LocalsUserID).(string); ok && id != "" {
		return id
	}
	return AnonymousUser
}
