package order

import (
	"context"
	"errors"

	"pedidos-backend/internal/database"
	"pedidos-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("order: não encontrado")
	ErrDuplicate = errors.New("order: já existe pedido para funcionário e ciclo")
)

type Filter struct {
	CycleID    *uint
	EmployeeID *uint
}

// Métodos com tx usam a transação quando não for nil.
type Repository interface {
	DB() *gorm.DB
	List(ctx context.Context, f Filter) ([]models.Order, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Order, error)
	FindByEmployeeAndCycle(ctx context.Context, tx *gorm.DB, employeeID, cycleID uint) (*models.Order, error)
	// Create grava cabeçalho e itens.
	Create(ctx context.Context, tx *gorm.DB, o *models.Order) error
	ReplaceItems(ctx context.Context, tx *gorm.DB, orderID uint, items []models.OrderItem) error
	UpdateHeader(ctx context.Context, tx *gorm.DB, o *models.Order) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) DB() *gorm.DB { return r.db }

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	})
}

func (r *gormRepository) List(ctx context.Context, f Filter) ([]models.Order, error) {
	q := withItems(r.db.WithContext(ctx))
	if f.CycleID != nil {
		q = q.Where("cycle_id = ?", *f.CycleID).Order("employee_name asc")
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID).Order("cycle_id desc")
	}
	var list []models.Order
	err := q.Order("id desc").Find(&list).Error
	return list, err
}

func (r *gormRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	if err := withItems(database.Use(ctx, r.db, tx)).First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *gormRepository) FindByEmployeeAndCycle(ctx context.Context, tx *gorm.DB, employeeID, cycleID uint) (*models.Order, error) {
	var o models.Order
	err := withItems(database.Use(ctx, r.db, tx)).
		Where("employee_id = ? AND cycle_id = ?", employeeID, cycleID).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *gormRepository) Create(ctx context.Context, tx *gorm.DB, o *models.Order) error {
	return translate(database.Use(ctx, r.db, tx).Create(o).Error)
}

func (r *gormRepository) ReplaceItems(ctx context.Context, tx *gorm.DB, orderID uint, items []models.OrderItem) error {
	db := database.Use(ctx, r.db, tx)
	if err := db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = orderID
	}
	return db.Create(&items).Error
}

func (r *gormRepository) UpdateHeader(ctx context.Context, tx *gorm.DB, o *models.Order) error {
	return database.Use(ctx, r.db, tx).
		Model(&models.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":                o.Status,
			"total":                 o.Total,
			"employee_name":         o.EmployeeName,
			"employee_registration": o.EmployeeRegistration,
		}).Error
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
