package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
	OrderClosed    OrderStatus = "closed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderConfirmed, OrderClosed:
		return true
	}
	return false
}

type Order struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	EmployeeID           uint            `gorm:"not null;uniqueIndex:idx_orders_employee_cycle" json:"employee_id"`
	EmployeeName         string          `gorm:"size:150;not null" json:"employee_name"`
	EmployeeRegistration string          `gorm:"size:50;not null" json:"employee_registration"`
	Status               OrderStatus     `gorm:"size:20;not null" json:"status"`
	Total                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	CycleID              uint            `gorm:"not null;uniqueIndex:idx_orders_employee_cycle;index" json:"cycle_id"`
	Items                []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// Nomes e preço congelados no momento do envio.
type OrderItem struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	OrderID              uint            `gorm:"not null;index" json:"order_id"`
	ProductID            uint            `gorm:"not null" json:"product_id"`
	Quantity             int             `gorm:"not null" json:"quantity"`
	ProductNameSnapshot  string          `gorm:"size:150;not null" json:"product_name_snapshot"`
	GroupNameSnapshot    string          `gorm:"size:100;not null" json:"group_name_snapshot"`
	SubgroupNameSnapshot *string         `gorm:"size:100" json:"subgroup_name_snapshot"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems soma preço congelado x quantidade.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
