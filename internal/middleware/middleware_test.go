package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"pedidos-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(h fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestID(), Logger())
	app.Get("/", h)
	return app
}

func body(t *testing.T, app *fiber.App) (int, string, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), resp.Header.Get(RequestIDHeader)
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return apperror.Forbidden("Conta bloqueada. Contate o administrador.")
	})
	status, b, id := body(t, app)
	assert.Equal(t, 403, status)
	assert.JSONEq(t, `{"message":"Conta bloqueada. Contate o administrador."}`, b)
	assert.NotEmpty(t, id)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused")
	})
	status, b, _ := body(t, app)
	assert.Equal(t, 500, status)
	assert.JSONEq(t, `{"message":"Erro interno do servidor"}`, b)
}

func TestErrorHandlerKeepsFiberErrors(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "Token ausente")
	})
	status, b, _ := body(t, app)
	assert.Equal(t, 401, status)
	assert.JSONEq(t, `{"message":"Token ausente"}`, b)
}

func TestRequestIDIsPropagated(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc-123", string(b))
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}
