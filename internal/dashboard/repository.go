package dashboard

import (
	"context"

	"pedidos-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MonthRow struct {
	Month     int             `gorm:"column:month"`
	Value     decimal.Decimal `gorm:"column:value"`
	Employees int             `gorm:"column:employees"`
}

type Counts struct {
	ActiveEmployees   int64 `json:"active_employees"`
	AvailableProducts int64 `json:"available_products"`
}

type Repository interface {
	// AnnualTotals soma os itens congelados por mês do ciclo; group vazio = todos.
	AnnualTotals(ctx context.Context, year int, group string) ([]MonthRow, error)
	Counts(ctx context.Context) (Counts, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) AnnualTotals(ctx context.Context, year int, group string) ([]MonthRow, error) {
	sql := `
		SELECT c.month AS month,
			   COALESCE(SUM(oi.quantity * oi.unit_price), 0) AS value,
			   COUNT(DISTINCT o.employee_id) AS employees
		FROM orders o
		JOIN cycles c ON c.id = o.cycle_id
		JOIN order_items oi ON oi.order_id = o.id
		WHERE c.year = ?`
	args := []interface{}{year}
	if group != "" {
		sql += ` AND oi.group_name_snapshot = ?`
		args = append(args, group)
	}
	sql += `
		GROUP BY c.month
		ORDER BY c.month ASC`

	var rows []MonthRow
	err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return rows, err
}

func (r *gormRepository) Counts(ctx context.Context) (Counts, error) {
	var out Counts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Employee{}).Where("status = ?", models.EmployeeActive).Count(&out.ActiveEmployees).Error; err != nil {
		return out, err
	}
	err := db.Model(&models.Product{}).Where("available = ?", true).Count(&out.AvailableProducts).Error
	return out, err
}
