package employee

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/audit"
	"pedidos-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/employees
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// POST /api/employees
func CreateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		e, err := svc.Create(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// PATCH /api/employees/:id
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
		e, err := svc.Update(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// DELETE /api/employees/:id
func DeleteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// PATCH /api/employees/:id/unlock
func UnlockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		e, err := svc.Unlock(c.UserContext(), id, audit.AdminActor(c.IP()))
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// POST /api/employees/bulk
func BulkHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inputs, err := readInputs(c)
		if err != nil {
			return err
		}
		created, err := svc.Bulk(c.UserContext(), inputs)
		if err != nil {
			return err
		}
		return c.JSON(created)
	}
}

// POST /api/employees/sync
func SyncHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inputs, err := readInputs(c)
		if err != nil {
			return err
		}
		res, err := svc.Sync(c.UserContext(), inputs)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// readInputs aceita JSON (lista), texto delimitado ou arquivo multipart (csv/txt/xlsx).
func readInputs(c *fiber.Ctx) ([]Input, error) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, apperror.Validation("Arquivo não enviado")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.Validation("Arquivo ilegível")
		}
		defer f.Close()

		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".xlsx":
			return ParseXLSX(f)
		case ".csv", ".txt", "":
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, apperror.Validation("Arquivo ilegível")
			}
			return ParseDelimited(data)
		default:
			return nil, apperror.Validation("Formato não suportado (use .csv, .txt ou .xlsx)")
		}

	case strings.HasPrefix(ct, "text/"):
		return ParseDelimited(c.Body())

	default:
		var inputs []Input
		if err := json.Unmarshal(c.Body(), &inputs); err != nil {
			return nil, apperror.Validation("Corpo da requisição inválido")
		}
		return inputs, nil
	}
}
