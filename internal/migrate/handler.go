package migrate

import (
	"pedidos-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// POST /api/migrate
func Handler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Payload
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		res, err := svc.Run(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
