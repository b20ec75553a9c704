package settings

import (
	"io"

	"pedidos-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// GET /api/settings (público; adminPassword só para o administrador)
func GetSettingsHandler(svc *Service, isAdmin func(c *fiber.Ctx) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			values map[string]string
			err    error
		)
		if isAdmin(c) {
			values, err = svc.All(c.UserContext())
		} else {
			values, err = svc.Public(c.UserContext())
		}
		if err != nil {
			return err
		}
		return c.JSON(values)
	}
}

// PATCH /api/settings
func UpdateSettingsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		patch, err := DecodePatch(c.Body())
		if err != nil {
			return err
		}
		values, err := svc.Merge(c.UserContext(), patch)
		if err != nil {
			return err
		}
		return c.JSON(values)
	}
}

// POST /api/settings/logo (multipart, campo "logo")
func UploadLogoHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("logo")
		if err != nil {
			fh, err = c.FormFile("file")
		}
		if err != nil {
			return apperror.Validation("Arquivo de logo não enviado")
		}
		if fh.Size > int64(svc.maxLogoBytes) {
			return apperror.Validation("Logo muito grande")
		}
		f, err := fh.Open()
		if err != nil {
			return apperror.Validation("Arquivo de logo ilegível")
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, int64(svc.maxLogoBytes)+1))
		if err != nil {
			return apperror.Validation("Arquivo de logo ilegível")
		}
		url, err := svc.SetLogo(c.UserContext(), data)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"logoUrl": url})
	}
}
