package employee

import (
	"context"
	"errors"

	"pedidos-backend/internal/database"
	"pedidos-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("employee: não encontrado")
	ErrDuplicate = errors.New("employee: matrícula duplicada")
)

// Métodos com tx usam a transação quando não for nil.
type Repository interface {
	DB() *gorm.DB
	List(ctx context.Context, tx *gorm.DB) ([]models.Employee, error)
	FindByID(ctx context.Context, id uint) (*models.Employee, error)
	FindByRegistration(ctx context.Context, registration string) (*models.Employee, error)
	Create(ctx context.Context, tx *gorm.DB, e *models.Employee) error
	Save(ctx context.Context, tx *gorm.DB, e *models.Employee) error
	Delete(ctx context.Context, id uint) error
	UpdateLoginState(ctx context.Context, id uint, failedAttempts int, locked bool) error
	SetPassword(ctx context.Context, id uint, hash string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) DB() *gorm.DB { return r.db }

func (r *gormRepository) List(ctx context.Context, tx *gorm.DB) ([]models.Employee, error) {
	var list []models.Employee
	err := database.Use(ctx, r.db, tx).Order("name asc").Find(&list).Error
	return list, err
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *gormRepository) FindByRegistration(ctx context.Context, registration string) (*models.Employee, error) {
	var e models.Employee
	err := r.db.WithContext(ctx).
		Where("registration_number = ?", registration).
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *gormRepository) Create(ctx context.Context, tx *gorm.DB, e *models.Employee) error {
	return translate(database.Use(ctx, r.db, tx).Create(e).Error)
}

func (r *gormRepository) Save(ctx context.Context, tx *gorm.DB, e *models.Employee) error {
	return translate(database.Use(ctx, r.db, tx).Save(e).Error)
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) UpdateLoginState(ctx context.Context, id uint, failedAttempts int, locked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"failed_attempts": failedAttempts, "is_locked": locked}).Error
}

func (r *gormRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("password", hash).Error
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
