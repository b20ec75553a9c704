//go:build integration

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"pedidos-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pedidos"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestCycleMonthYearIsUnique(t *testing.T) {
	db := openTestDB(t)

	first := models.Cycle{Month: 3, Year: 2026, StartDate: "2026-03-15T00:00:00", EndDate: "2026-03-31T23:59:59", Status: models.CycleClosed}
	require.NoError(t, db.Create(&first).Error)

	dup := first
	dup.ID = 0
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestRunTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := RunTx(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Setting{Key: "companyName", Value: "X"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderPerEmployeeAndCycleIsUnique(t *testing.T) {
	db := openTestDB(t)

	o := models.Order{EmployeeID: 1, EmployeeName: "Ana", EmployeeRegistration: "100", Status: models.OrderConfirmed, CycleID: 1}
	require.NoError(t, db.Create(&o).Error)

	dup := o
	dup.ID = 0
	err := db.Create(&dup).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
