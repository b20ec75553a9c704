package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Group struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"size:255" json:"description"`
	ItemLimit   *int       `json:"item_limit"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`
	Subgroups   []Subgroup `gorm:"foreignKey:GroupID" json:"subgroups"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

type Subgroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	ItemLimit *int      `json:"item_limit"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:150;not null" json:"name"`
	GroupID    uint            `gorm:"not null;index" json:"group_id"`
	SubgroupID *uint           `gorm:"index" json:"subgroup_id"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit       string          `gorm:"size:20" json:"unit"`
	Available  bool            `gorm:"not null" json:"available"`
	SortOrder  int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt  time.Time       `json:"-"`
	UpdatedAt  time.Time       `json:"-"`
}
