package serverutils

import (
	"leave-auth-be/internal/entity"
	"leave-auth-be/pkg/kv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtMiddleware authenticates the Bearer token and checks it against the
// active session in the kv store, so logout is effective immediately even
// for tokens that have not expired yet. The secret must be the same one
// the auth service signs with.
func JwtMiddleware(store kv.Store, secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Missing token"})
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Invalid claims"})
		}

		userIdStr, _ := claims["user_id"].(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Invalid claims"})
		}

		active, found, err := store.Get(ctx.Context(), kv.PrefixSession+userIdStr)
		if err != nil || !found || active != tokenStr {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Session expired"})
		}

		actor := &entity.Actor{Id: userId}
		actor.Email, _ = claims["email"].(string)
		if role, ok := claims["role"].(string); ok {
			actor.Role = entity.UserRole(role)
		}
		if cat, ok := claims["category"].(string); ok && cat != "" {
			c := entity.Category(cat)
			actor.Category = &c
		}

		ctx.Locals("actor", actor)
		return ctx.Next()
	}
}

// RequireRole gates a route to the given roles. Admins always pass.
func RequireRole(roles ...entity.UserRole) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		actor := ActorFromCtx(ctx)
		if actor == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Missing token"})
		}
		if actor.Role == entity.UserRoleAdmin {
			return ctx.Next()
		}
		for _, role := range roles {
			if actor.Role == role {
				return ctx.Next()
			}
		}
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Insufficient role"})
	}
}

func ActorFromCtx(ctx *fiber.Ctx) *entity.Actor {
	actor, _ := ctx.Locals("actor").(*entity.Actor)
	return actor
}
