package report

import (
	"context"
	"fmt"

	"pedidos-backend/internal/httpx"
	"pedidos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderLister interface {
	ListByCycle(ctx context.Context, cycleID uint) ([]models.Order, error)
}

type CycleFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Cycle, error)
}

// GET /api/orders/cycle/:id/export
func ExportHandler(orders OrderLister, cycles CycleFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		cycle, err := cycles.FindByID(c.UserContext(), id)
		if err != nil {
			return err
		}
		list, err := orders.ListByCycle(c.UserContext(), id)
		if err != nil {
			return err
		}
		buf, err := Render(BuildSheets(list))
		if err != nil {
			return fmt.Errorf("report: gerar planilha: %w", err)
		}

		c.Attachment(fmt.Sprintf("pedidos-%02d-%d.xlsx", cycle.Month, cycle.Year))
		c.Set(fiber.HeaderContentType, xlsxMIME)
		return c.Send(buf.Bytes())
	}
}
