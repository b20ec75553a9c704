package auth

import (
	"pedidos-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		resp, err := svc.Login(c.UserContext(), body, c.IP())
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// POST /api/auth/check
func CheckHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CheckRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		resp, err := svc.Check(c.UserContext(), body.Username)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// POST /api/auth/create-password
func CreatePasswordHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePasswordRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		resp, err := svc.CreatePassword(c.UserContext(), body, c.IP())
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// POST /api/auth/recover
func RecoverHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecoverRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		pw, err := svc.Recover(c.UserContext(), body, c.IP())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"password": pw})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Sessão inválida ou expirada")
		}
		return c.JSON(SessionUser{ID: claims.EmployeeID, Name: claims.Name, IsAdmin: claims.IsAdmin()})
	}
}
