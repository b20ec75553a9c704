package auth

import (
	"strings"

	"pedidos-backend/internal/audit"

	"github.com/gofiber/fiber/v2"
)

const CtxClaimsKey = "auth_claims"

func bearer(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func JWTMiddleware(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Cabeçalho Authorization ausente")
		}
		tokenStr, ok := bearer(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization deve ser 'Bearer <token>'")
		}
		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Sessão inválida ou expirada")
		}
		c.Locals(CtxClaimsKey, claims)
		return c.Next()
	}
}

// OptionalJWT anexa as claims quando há token válido, sem exigir login.
func OptionalJWT(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr, ok := bearer(c); ok {
			if claims, err := issuer.Parse(tokenStr); err == nil {
				c.Locals(CtxClaimsKey, claims)
			}
		}
		return c.Next()
	}
}

func RequireRole(allowed ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return fiber.NewError(fiber.StatusForbidden, "Sessão sem perfil")
		}
		for _, r := range allowed {
			if claims.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Você não tem permissão para esta operação")
	}
}

func ClaimsFrom(c *fiber.Ctx) *JWTCustomClaims {
	claims, _ := c.Locals(CtxClaimsKey).(*JWTCustomClaims)
	return claims
}

func IsAdmin(c *fiber.Ctx) bool {
	claims := ClaimsFrom(c)
	return claims != nil && claims.IsAdmin()
}

// ActorFrom monta o autor da auditoria a partir da sessão.
func ActorFrom(c *fiber.Ctx) audit.Actor {
	claims := ClaimsFrom(c)
	if claims == nil || claims.IsAdmin() {
		return audit.AdminActor(c.IP())
	}
	id := claims.EmployeeID
	return audit.Actor{
		EmployeeID:   &id,
		Name:         claims.Name,
		Registration: claims.Registration,
		IP:           c.IP(),
	}
}
