package cycle

import (
	"pedidos-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/cycle/current
func CurrentHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cur, err := svc.Current(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(cur)
	}
}

// GET /api/cycles
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cycles, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(cycles)
	}
}

// POST /api/cycles
func CreateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		cy, err := svc.Create(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cy)
	}
}

// PATCH /api/cycles/:id
func UpdateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body Patch
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		cy, err := svc.Update(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(cy)
	}
}
