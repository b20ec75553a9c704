package audit

import (
	"strconv"
	"time"

	"pedidos-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?action=login_funcionario&employee_id=1&from=2026-03-01&to=2026-03-31&limit=100
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter
		f.Action = c.Query("action")

		if v := c.Query("employee_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return apperror.Validation("employee_id inválido")
			}
			uid := uint(id)
			f.EmployeeID = &uid
		}
		if v := c.Query("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return apperror.Validation("Data inicial inválida (AAAA-MM-DD)")
			}
			f.From = &t
		}
		if v := c.Query("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return apperror.Validation("Data final inválida (AAAA-MM-DD)")
			}
			// inclui o dia inteiro
			end := t.AddDate(0, 0, 1)
			f.To = &end
		}
		f.Limit = c.QueryInt("limit", 200)
		f.Offset = c.QueryInt("offset", 0)

		logs, total, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		c.Set("X-Total-Count", strconv.FormatInt(total, 10))
		return c.JSON(logs)
	}
}
