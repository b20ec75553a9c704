package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLoginIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(loginsTotal.WithLabelValues("employee", "locked"))
	ObserveLogin("employee", "locked")
	assert.Equal(t, before+1, testutil.ToFloat64(loginsTotal.WithLabelValues("employee", "locked")))
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/orders/:id", func(c *fiber.Ctx) error { return c.SendStatus(204) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/orders/:id", "204"))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/orders/42", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/orders/:id", "204")))
}
