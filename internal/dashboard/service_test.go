package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"pedidos-backend/internal/cycle"
	"pedidos-backend/internal/middleware"
	"pedidos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	rows      []MonthRow
	counts    Counts
	lastYear  int
	lastGroup string
}

func (s *stubRepo) AnnualTotals(ctx context.Context, year int, group string) ([]MonthRow, error) {
	s.lastYear, s.lastGroup = year, group
	return s.rows, nil
}

func (s *stubRepo) Counts(ctx context.Context) (Counts, error) { return s.counts, nil }

type stubCycles struct{ cur *cycle.Current }

func (s stubCycles) Current(ctx context.Context) (*cycle.Current, error) { return s.cur, nil }

type stubOrders struct{ orders []models.Order }

func (s stubOrders) ListByCycle(ctx context.Context, cycleID uint) ([]models.Order, error) {
	return s.orders, nil
}

func placed(id uint, name string, total string, updated time.Time) models.Order {
	return models.Order{
		ID:           id,
		EmployeeName: name,
		Status:       models.OrderConfirmed,
		Total:        decimal.RequireFromString(total),
		Items:        []models.OrderItem{{ProductID: 1, Quantity: 1}},
		UpdatedAt:    updated,
	}
}

func TestSummaryIgnoresEmptyOrders(t *testing.T) {
	base := time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		placed(1, "Ana", "10.50", base),
		placed(2, "Bruno", "20.00", base.Add(time.Hour)),
		{ID: 3, EmployeeName: "Carla", Status: models.OrderDraft, Total: decimal.Zero},
	}
	svc := NewService(
		&stubRepo{counts: Counts{ActiveEmployees: 7, AvailableProducts: 12}},
		stubCycles{cur: &cycle.Current{Cycle: &models.Cycle{ID: 4, Month: 3, Year: 2026}, IsOpen: true}},
		stubOrders{orders: orders},
	)

	out, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, out.Orders)
	assert.True(t, out.TotalValue.Equal(decimal.RequireFromString("30.50")))
	assert.Equal(t, int64(7), out.ActiveEmployees)
	assert.Equal(t, int64(12), out.AvailableProducts)
	assert.Equal(t, "03/2026", out.CycleReference)
	require.Len(t, out.Recent, 2)
	assert.Equal(t, "Bruno", out.Recent[0].EmployeeName)
}

func TestAnnualChartFillsAllMonths(t *testing.T) {
	repo := &stubRepo{rows: []MonthRow{
		{Month: 3, Value: decimal.RequireFromString("100.455"), Employees: 4},
		{Month: 11, Value: decimal.RequireFromString("50"), Employees: 2},
	}}
	svc := NewService(repo, stubCycles{}, stubOrders{})

	chart, err := svc.AnnualChart(context.Background(), 2026, "Hortifruti")
	require.NoError(t, err)
	require.Len(t, chart.Points, 12)
	assert.Equal(t, "Jan", chart.Points[0].Label)
	assert.Equal(t, "Dez", chart.Points[11].Label)
	assert.True(t, chart.Points[0].Value.IsZero())
	assert.Equal(t, "100.46", chart.Points[2].Value.StringFixed(2))
	assert.Equal(t, 4, chart.Points[2].Employees)
	assert.Equal(t, 2, chart.Points[10].Employees)
	assert.Equal(t, "150.46", chart.Total.StringFixed(2))
	assert.Equal(t, "Hortifruti", repo.lastGroup)
}

func TestAnnualChartHandler(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, stubCycles{}, stubOrders{})
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/dashboard/annual", AnnualChartHandler(svc, func() int { return 2026 }))

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard/annual?group=all", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var chart AnnualChart
	require.NoError(t, json.Unmarshal(body, &chart))
	assert.Equal(t, 2026, chart.Year)
	assert.Equal(t, "", repo.lastGroup)

	resp, err = app.Test(httptest.NewRequest("GET", "/dashboard/annual?year=1999", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
