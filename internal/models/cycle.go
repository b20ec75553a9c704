package models

import "time"

type CycleStatus string

const (
	CycleOpen   CycleStatus = "open"
	CycleClosed CycleStatus = "closed"
)

// Um ciclo por (mês, ano); o índice único protege o get-or-create concorrente.
type Cycle struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Month     int         `gorm:"not null;uniqueIndex:idx_cycles_month_year" json:"month"`
	Year      int         `gorm:"not null;uniqueIndex:idx_cycles_month_year" json:"year"`
	StartDate string      `gorm:"size:25;not null" json:"start_date"`
	EndDate   string      `gorm:"size:25;not null" json:"end_date"`
	Status    CycleStatus `gorm:"size:10;not null" json:"status"`
	CreatedAt time.Time   `json:"-"`
	UpdatedAt time.Time   `json:"-"`
}

func (c *Cycle) IsClosed() bool {
	return c.Status == CycleClosed
}
