package cycle

import (
	"fmt"
	"time"

	"pedidos-backend/internal/models"
)

// OpenDay é o primeiro dia do mês em que os pedidos são aceitos.
const OpenDay = 15

// Window descreve a janela de pedidos do mês de uma data.
type Window struct {
	Month         int
	Year          int
	Day           int
	LastDay       int
	IsOpen        bool
	DaysRemaining int
	DaysUntilOpen int
	StartDate     string
	EndDate       string
}

// WindowAt calcula a janela no fuso de t. O ciclo sempre é o do mês corrente,
// mesmo antes do dia 15.
func WindowAt(t time.Time) Window {
	year, month, day := t.Date()
	lastDay := LastDayOfMonth(year, month)

	w := Window{
		Month:     int(month),
		Year:      year,
		Day:       day,
		LastDay:   lastDay,
		IsOpen:    day >= OpenDay,
		StartDate: fmt.Sprintf("%04d-%02d-%02dT00:00:00", year, int(month), OpenDay),
		EndDate:   fmt.Sprintf("%04d-%02d-%02dT23:59:59", year, int(month), lastDay),
	}
	if w.IsOpen {
		w.DaysRemaining = lastDay - day
	} else {
		w.DaysUntilOpen = OpenDay - day
	}
	return w
}

func (w Window) Status() models.CycleStatus {
	if w.IsOpen {
		return models.CycleOpen
	}
	return models.CycleClosed
}

// Reference é o rótulo usado nos logs de auditoria, ex. "03/2026".
func (w Window) Reference() string {
	return Reference(w.Month, w.Year)
}

func Reference(month, year int) string {
	return fmt.Sprintf("%02d/%d", month, year)
}

func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Bounds devolve início e fim da janela para um mês arbitrário.
func Bounds(month, year int) (string, string) {
	last := LastDayOfMonth(year, time.Month(month))
	return fmt.Sprintf("%04d-%02d-%02dT00:00:00", year, month, OpenDay),
		fmt.Sprintf("%04d-%02d-%02dT23:59:59", year, month, last)
}
