package employee

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/audit"
	"pedidos-backend/internal/middleware"
	"pedidos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditSpy struct{ entries []audit.LogOptions }

func (a *auditSpy) WriteLog(ctx context.Context, opts audit.LogOptions) error {
	a.entries = append(a.entries, opts)
	return nil
}

func seed() *memRepo {
	return newMemRepo(
		models.Employee{Name: "Ana", RegistrationNumber: "1001", Status: models.EmployeeActive, Funcao: "Caixa"},
		models.Employee{Name: "Bruno", RegistrationNumber: "1002", Status: models.EmployeeActive},
		models.Employee{Name: "Carla", RegistrationNumber: "1003", Status: models.EmployeeInactive},
	)
}

func TestSyncDeactivatesMissingAndReactivatesReturning(t *testing.T) {
	repo := seed()
	svc := NewService(repo, nil)
	ctx := context.Background()

	res, err := svc.Sync(ctx, []Input{
		{RegistrationNumber: " 1001 ", Name: "Ana Souza", Funcao: ""},
		{RegistrationNumber: "1003", Name: "Carla"},
		{RegistrationNumber: "1004", Name: "Diego"},
	})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Added: 1, Reactivated: 1, Deactivated: 1, Total: 3}, *res)

	assert.Equal(t, "Ana Souza", repo.byReg("1001").Name)
	assert.Equal(t, "Caixa", repo.byReg("1001").Funcao)
	assert.Equal(t, models.EmployeeInactive, repo.byReg("1002").Status)
	assert.Equal(t, models.EmployeeActive, repo.byReg("1003").Status)
	assert.Equal(t, models.EmployeeActive, repo.byReg("1004").Status)
	assert.False(t, repo.byReg("1004").HasPassword())

	// reimportar com 1002 de volta reativa sem duplicar
	res, err = svc.Sync(ctx, []Input{
		{RegistrationNumber: "1001"}, {RegistrationNumber: "1002"}, {RegistrationNumber: "1003"}, {RegistrationNumber: "1004"},
	})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Added: 0, Reactivated: 1, Deactivated: 0, Total: 4}, *res)
	assert.Len(t, repo.byID, 4)
}

func TestBulkSkipsExistingRegistrations(t *testing.T) {
	repo := seed()
	svc := NewService(repo, nil)

	created, err := svc.Bulk(context.Background(), []Input{
		{RegistrationNumber: "1001", Name: "Ana"},
		{RegistrationNumber: "2001", Name: "Eva"},
		{RegistrationNumber: "2001", Name: "Eva de novo"},
		{RegistrationNumber: "", Name: "Sem matrícula"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Eva", created[0].Name)
	assert.Len(t, repo.byID, 4)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	svc := NewService(seed(), nil)
	_, err := svc.Create(context.Background(), CreateRequest{Input: Input{RegistrationNumber: "1001", Name: "Outra"}})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestUpdateUnlockAndPasswordReset(t *testing.T) {
	repo := newMemRepo(models.Employee{Name: "Ana", RegistrationNumber: "1001", Status: models.EmployeeActive, IsLocked: true, FailedAttempts: 5, Password: "x"})
	svc := NewService(repo, nil)

	unlocked, empty := false, ""
	resp, err := svc.Update(context.Background(), 1, Patch{IsLocked: &unlocked, Password: &empty})
	require.NoError(t, err)
	assert.False(t, resp.IsLocked)
	assert.Zero(t, resp.FailedAttempts)
	assert.False(t, resp.HasPassword)
}

func TestUnlockWritesAudit(t *testing.T) {
	repo := newMemRepo(models.Employee{Name: "Ana", RegistrationNumber: "1001", Status: models.EmployeeActive, IsLocked: true, FailedAttempts: 5})
	spy := &auditSpy{}
	svc := NewService(repo, spy)

	resp, err := svc.Unlock(context.Background(), 1, audit.AdminActor("127.0.0.1"))
	require.NoError(t, err)
	assert.False(t, resp.IsLocked)
	assert.False(t, repo.byID[1].IsLocked)
	require.Len(t, spy.entries, 1)
	assert.Equal(t, models.AuditEmployeeUnlock, spy.entries[0].Action)

	_, err = svc.Unlock(context.Background(), 9, audit.AdminActor(""))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSyncHandlerAcceptsRawCSV(t *testing.T) {
	repo := seed()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Post("/api/employees/sync", SyncHandler(NewService(repo, nil)))

	req := httptest.NewRequest("POST", "/api/employees/sync", strings.NewReader("matricula;nome\n1001;Ana\n1002;Bruno\n"))
	req.Header.Set("Content-Type", "text/csv")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"added":0,"reactivated":0,"deactivated":0,"total":2}`, string(b))
}

func TestListHidesPassword(t *testing.T) {
	repo := newMemRepo(models.Employee{Name: "Ana", RegistrationNumber: "1001", Status: models.EmployeeActive, Password: "$2a$10$abc"})
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/api/employees", ListHandler(NewService(repo, nil)))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/employees", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(b), "$2a$")
	assert.Contains(t, string(b), `"has_password":true`)
}

func TestSyncRejectsEmptyFile(t *testing.T) {
	repo := seed()
	_, err := NewService(repo, nil).Sync(context.Background(), []Input{{Name: "sem matrícula"}})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, models.EmployeeActive, repo.byReg("1001").Status)
}
