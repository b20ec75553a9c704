package database

import (
	"context"
	"fmt"

	"pedidos-backend/internal/config"
	"pedidos-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open conecta no Postgres e aplica as migrações.
func Open(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsProduction() {
		level = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanı: não foi possível conectar: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("Banco de dados conectado. Migração concluída.")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Employee{},
		&models.Group{},
		&models.Subgroup{},
		&models.Product{},
		&models.Cycle{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditLog{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}

// RunTx executa fn dentro de uma transação. Com db nil (testes com stubs)
// fn recebe nil e roda sem transação.
func RunTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Use escolhe a transação corrente quando houver.
func Use(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
