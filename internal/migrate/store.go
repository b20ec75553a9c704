package migrate

import (
	"context"
	"errors"

	"pedidos-backend/internal/database"
	"pedidos-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store grava os dados importados; todos os métodos recebem a transação.
type Store interface {
	DB() *gorm.DB
	UpsertSettings(ctx context.Context, tx *gorm.DB, values map[string]string) error
	// EnsureEmployee reaproveita a matrícula existente; created=false nesse caso.
	EnsureEmployee(ctx context.Context, tx *gorm.DB, e *models.Employee) (bool, error)
	CreateGroup(ctx context.Context, tx *gorm.DB, g *models.Group) error
	CreateSubgroup(ctx context.Context, tx *gorm.DB, sg *models.Subgroup) error
	CreateProduct(ctx context.Context, tx *gorm.DB, p *models.Product) error
	EnsureCycle(ctx context.Context, tx *gorm.DB, c *models.Cycle) (bool, error)
	// SaveOrder substitui os itens quando o par funcionário/ciclo já existe.
	SaveOrder(ctx context.Context, tx *gorm.DB, o *models.Order) (bool, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) UpsertSettings(ctx context.Context, tx *gorm.DB, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.Setting{Key: k, Value: v})
	}
	return database.Use(ctx, s.db, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}

func (s *gormStore) EnsureEmployee(ctx context.Context, tx *gorm.DB, e *models.Employee) (bool, error) {
	db := database.Use(ctx, s.db, tx)
	var existing models.Employee
	err := db.Where("registration_number = ?", e.RegistrationNumber).First(&existing).Error
	if err == nil {
		*e = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, db.Create(e).Error
}

func (s *gormStore) CreateGroup(ctx context.Context, tx *gorm.DB, g *models.Group) error {
	return database.Use(ctx, s.db, tx).Omit("Subgroups").Create(g).Error
}

func (s *gormStore) CreateSubgroup(ctx context.Context, tx *gorm.DB, sg *models.Subgroup) error {
	return database.Use(ctx, s.db, tx).Create(sg).Error
}

func (s *gormStore) CreateProduct(ctx context.Context, tx *gorm.DB, p *models.Product) error {
	return database.Use(ctx, s.db, tx).Create(p).Error
}

func (s *gormStore) EnsureCycle(ctx context.Context, tx *gorm.DB, c *models.Cycle) (bool, error) {
	db := database.Use(ctx, s.db, tx)
	var existing models.Cycle
	err := db.Where("month = ? AND year = ?", c.Month, c.Year).First(&existing).Error
	if err == nil {
		*c = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, db.Create(c).Error
}

func (s *gormStore) SaveOrder(ctx context.Context, tx *gorm.DB, o *models.Order) (bool, error) {
	db := database.Use(ctx, s.db, tx)
	var existing models.Order
	err := db.Where("employee_id = ? AND cycle_id = ?", o.EmployeeID, o.CycleID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, db.Create(o).Error
	}
	if err != nil {
		return false, err
	}

	o.ID = existing.ID
	items := o.Items
	if err := db.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return false, err
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return false, err
		}
	}
	err = db.Model(&models.Order{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":                o.Status,
		"total":                 o.Total,
		"employee_name":         o.EmployeeName,
		"employee_registration": o.EmployeeRegistration,
	}).Error
	return false, err
}
