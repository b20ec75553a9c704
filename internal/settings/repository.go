package settings

import (
	"context"

	"pedidos-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	All(ctx context.Context) ([]models.Setting, error)
	// Seed insere só as chaves que ainda não existem.
	Seed(ctx context.Context, values map[string]string) error
	Upsert(ctx context.Context, values map[string]string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) All(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	err := r.db.WithContext(ctx).Order("key asc").Find(&rows).Error
	return rows, err
}

func (r *gormRepository) Seed(ctx context.Context, values map[string]string) error {
	return r.write(ctx, values, clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	})
}

func (r *gormRepository) Upsert(ctx context.Context, values map[string]string) error {
	return r.write(ctx, values, clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	})
}

func (r *gormRepository) write(ctx context.Context, values map[string]string, onConflict clause.OnConflict) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.Setting{Key: k, Value: v})
	}
	return r.db.WithContext(ctx).Clauses(onConflict).Create(&rows).Error
}
