// Package dashboard agrega os números do painel do administrador.
package dashboard

import (
	"context"
	"sort"

	"pedidos-backend/internal/cycle"
	"pedidos-backend/internal/models"

	"github.com/shopspring/decimal"
)

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

const recentLimit = 5

type CycleResolver interface {
	Current(ctx context.Context) (*cycle.Current, error)
}

type OrderLister interface {
	ListByCycle(ctx context.Context, cycleID uint) ([]models.Order, error)
}

type RecentOrder struct {
	ID                   uint               `json:"id"`
	EmployeeName         string             `json:"employee_name"`
	EmployeeRegistration string             `json:"employee_registration"`
	Status               models.OrderStatus `json:"status"`
	Total                decimal.Decimal    `json:"total"`
	Items                int                `json:"items"`
}

type Summary struct {
	Cycle             *models.Cycle   `json:"cycle"`
	CycleReference    string          `json:"cycle_reference"`
	IsOpen            bool            `json:"is_open"`
	ActiveEmployees   int64           `json:"active_employees"`
	AvailableProducts int64           `json:"available_products"`
	Orders            int             `json:"orders"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Recent            []RecentOrder   `json:"recent"`
}

type ChartPoint struct {
	Label     string          `json:"label"`
	Value     decimal.Decimal `json:"valor"`
	Employees int             `json:"funcionarios"`
}

type AnnualChart struct {
	Year   int             `json:"year"`
	Group  string          `json:"group"`
	Points []ChartPoint    `json:"points"`
	Total  decimal.Decimal `json:"total"`
}

type Service struct {
	repo   Repository
	cycles CycleResolver
	orders OrderLister
}

func NewService(repo Repository, cycles CycleResolver, orders OrderLister) *Service {
	return &Service{repo: repo, cycles: cycles, orders: orders}
}

// Summary considera só pedidos com itens no ciclo atual.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	cur, err := s.cycles.Current(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByCycle(ctx, cur.Cycle.ID)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		Cycle:             cur.Cycle,
		CycleReference:    cycle.Reference(cur.Cycle.Month, cur.Cycle.Year),
		IsOpen:            cur.IsOpen,
		ActiveEmployees:   counts.ActiveEmployees,
		AvailableProducts: counts.AvailableProducts,
		TotalValue:        decimal.Zero,
		Recent:            []RecentOrder{},
	}

	placed := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if len(o.Items) == 0 {
			continue
		}
		placed = append(placed, o)
		out.TotalValue = out.TotalValue.Add(o.Total)
	}
	out.Orders = len(placed)

	sort.Slice(placed, func(i, j int) bool { return placed[i].UpdatedAt.After(placed[j].UpdatedAt) })
	for i, o := range placed {
		if i == recentLimit {
			break
		}
		out.Recent = append(out.Recent, RecentOrder{
			ID:                   o.ID,
			EmployeeName:         o.EmployeeName,
			EmployeeRegistration: o.EmployeeRegistration,
			Status:               o.Status,
			Total:                o.Total,
			Items:                len(o.Items),
		})
	}
	return out, nil
}

// AnnualChart devolve sempre os doze meses, zerando os que não têm pedidos.
func (s *Service) AnnualChart(ctx context.Context, year int, group string) (*AnnualChart, error) {
	rows, err := s.repo.AnnualTotals(ctx, year, group)
	if err != nil {
		return nil, err
	}
	chart := &AnnualChart{Year: year, Group: group, Points: make([]ChartPoint, 12), Total: decimal.Zero}
	for i := range chart.Points {
		chart.Points[i] = ChartPoint{Label: monthLabels[i], Value: decimal.Zero}
	}
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		p := &chart.Points[r.Month-1]
		p.Value = r.Value.Round(2)
		p.Employees = r.Employees
		chart.Total = chart.Total.Add(p.Value)
	}
	return chart, nil
}
