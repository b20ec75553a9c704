package dashboard

import (
	"pedidos-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// GET /api/dashboard/summary
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Summary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/dashboard/annual?year=2026&group=Hortifruti
func AnnualChartHandler(svc *Service, currentYear func() int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("year", currentYear())
		if year < 2000 || year > 2100 {
			return apperror.Validation("Ano inválido")
		}
		group := c.Query("group")
		if group == "all" {
			group = ""
		}
		out, err := svc.AnnualChart(c.UserContext(), year, group)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}
