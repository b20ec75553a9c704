package httpx

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"pedidos-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceReq struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

func run(t *testing.T, body string) (int, string) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*apperror.Error); ok {
			return c.Status(e.Status()).JSON(fiber.Map{"message": e.Message, "fields": e.Fields})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	app.Post("/", func(c *fiber.Ctx) error {
		var req priceReq
		if err := BindAndValidate(c, &req); err != nil {
			return err
		}
		return c.SendString(req.Price.StringFixed(2))
	})

	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestBindAndValidateAcceptsDecimal(t *testing.T) {
	status, body := run(t, `{"name":"Arroz","price":"12.5"}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, "12.50", body)
}

func TestBindAndValidateReportsFields(t *testing.T) {
	status, body := run(t, `{"price":-1}`)
	assert.Equal(t, 400, status)
	assert.Contains(t, body, `"Name":"required"`)
	assert.Contains(t, body, `"Price":"gte"`)
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	status, _ := run(t, `{"name":`)
	assert.Equal(t, 400, status)
}
