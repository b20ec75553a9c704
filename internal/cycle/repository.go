package cycle

import (
	"context"
	"errors"

	"pedidos-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("cycle: não encontrado")
	ErrDuplicate = errors.New("cycle: já existe ciclo para o mês")
)

type Repository interface {
	List(ctx context.Context) ([]models.Cycle, error)
	FindByID(ctx context.Context, id uint) (*models.Cycle, error)
	FindByMonthYear(ctx context.Context, month, year int) (*models.Cycle, error)
	// Create devolve ErrDuplicate quando (mês, ano) já existe.
	Create(ctx context.Context, c *models.Cycle) error
	Save(ctx context.Context, c *models.Cycle) error
	UpdateStatus(ctx context.Context, id uint, status models.CycleStatus) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List(ctx context.Context) ([]models.Cycle, error) {
	var cycles []models.Cycle
	err := r.db.WithContext(ctx).Order("year desc, month desc").Find(&cycles).Error
	return cycles, err
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*models.Cycle, error) {
	var c models.Cycle
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormRepository) FindByMonthYear(ctx context.Context, month, year int) (*models.Cycle, error) {
	var c models.Cycle
	err := r.db.WithContext(ctx).
		Where("month = ? AND year = ?", month, year).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormRepository) Create(ctx context.Context, c *models.Cycle) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormRepository) Save(ctx context.Context, c *models.Cycle) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uint, status models.CycleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
