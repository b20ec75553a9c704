package audit

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"pedidos-backend/internal/middleware"
	"pedidos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	logs       []models.AuditLog
	lastFilter Filter
	fail       error
}

func (m *memRepo) Create(ctx context.Context, l *models.AuditLog) error {
	if m.fail != nil {
		return m.fail
	}
	l.ID = uint(len(m.logs) + 1)
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memRepo) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	m.lastFilter = f
	return m.logs, int64(len(m.logs)), nil
}

func TestWriteLogCopiesActorAndOrder(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)

	emp := &models.Employee{ID: 7, Name: "Ana", RegistrationNumber: "1001"}
	total := decimal.RequireFromString("42.50")
	orderID := uint(3)

	err := svc.WriteLog(context.Background(), LogOptions{
		Actor:          EmployeeActor(emp, "10.0.0.1"),
		Action:         models.AuditOrderCreated,
		OrderID:        &orderID,
		OrderTotal:     &total,
		CycleReference: "03/2026",
	})
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)

	got := repo.logs[0]
	require.NotNil(t, got.EmployeeID)
	assert.Equal(t, uint(7), *got.EmployeeID)
	assert.Equal(t, "1001", got.EmployeeRegistration)
	assert.Equal(t, "10.0.0.1", got.IPAddress)
	assert.True(t, got.OrderTotal.Valid)
	assert.Equal(t, "42.50", got.OrderTotal.Decimal.StringFixed(2))
}

func TestAdminActorHasNoEmployeeID(t *testing.T) {
	repo := &memRepo{}
	require.NoError(t, NewService(repo).WriteLog(context.Background(), LogOptions{
		Actor:  AdminActor("127.0.0.1"),
		Action: models.AuditLoginAdmin,
	}))
	assert.Nil(t, repo.logs[0].EmployeeID)
	assert.False(t, repo.logs[0].OrderTotal.Valid)
}

func TestRecordDoesNotPropagateFailure(t *testing.T) {
	svc := NewService(&memRepo{fail: errors.New("db down")})
	assert.NotPanics(t, func() {
		Record(context.Background(), svc, LogOptions{Action: models.AuditLoginAdmin})
		Record(context.Background(), nil, LogOptions{Action: models.AuditLoginAdmin})
	})
}

func TestListHandlerParsesFilters(t *testing.T) {
	repo := &memRepo{}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/api/audit-logs", ListAuditLogsHandler(NewService(repo)))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/audit-logs?action=conta_bloqueada&employee_id=4&from=2026-03-01&to=2026-03-31&limit=5000", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-Total-Count"))

	f := repo.lastFilter
	assert.Equal(t, "conta_bloqueada", f.Action)
	require.NotNil(t, f.EmployeeID)
	assert.Equal(t, uint(4), *f.EmployeeID)
	assert.Equal(t, "2026-04-01", f.To.Format("2006-01-02"))
	assert.Equal(t, 200, f.Limit)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/audit-logs?from=ontem", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, string(b), "Data inicial inválida")
}
