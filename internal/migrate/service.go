// Package migrate importa de uma vez os dados do protótipo que guardava tudo
// no navegador, trocando os ids antigos pelos gerados no banco.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pedidos-backend/internal/database"
	"pedidos-backend/internal/models"
	"pedidos-backend/internal/settings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const SuccessMessage = "Dados migrados com sucesso!"

type EmployeeIn struct {
	ID                 uint                  `json:"id"`
	RegistrationNumber string                `json:"registration_number"`
	Name               string                `json:"name"`
	Password           string                `json:"password"`
	Email              string                `json:"email"`
	Whatsapp           string                `json:"whatsapp"`
	Funcao             string                `json:"funcao"`
	Setor              string                `json:"setor"`
	Distribuicao       string                `json:"distribuicao"`
	Admissao           string                `json:"admissao"`
	Status             models.EmployeeStatus `json:"status"`
	FailedAttempts     int                   `json:"failed_attempts"`
	IsLocked           bool                  `json:"is_locked"`
	ProfileImageURL    *string               `json:"profile_image_url"`
}

type SubgroupIn struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ItemLimit *int   `json:"item_limit"`
	SortOrder int    `json:"sort_order"`
}

type GroupIn struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ItemLimit   *int         `json:"item_limit"`
	SortOrder   int          `json:"sort_order"`
	Subgroups   []SubgroupIn `json:"subgroups"`
}

type ProductIn struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	GroupID    uint            `json:"group_id"`
	SubgroupID *uint           `json:"subgroup_id"`
	Price      decimal.Decimal `json:"price"`
	Unit       string          `json:"unit"`
	Available  *bool           `json:"available"`
	SortOrder  int             `json:"sort_order"`
}

type CycleIn struct {
	ID        uint               `json:"id"`
	Month     int                `json:"month"`
	Year      int                `json:"year"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Status    models.CycleStatus `json:"status"`
}

type ItemIn struct {
	ProductID            uint            `json:"product_id"`
	Quantity             int             `json:"quantity"`
	ProductNameSnapshot  string          `json:"product_name_snapshot"`
	GroupNameSnapshot    string          `json:"group_name_snapshot"`
	SubgroupNameSnapshot *string         `json:"subgroup_name_snapshot"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
}

type OrderIn struct {
	ID                   uint               `json:"id"`
	EmployeeID           uint               `json:"employee_id"`
	EmployeeName         string             `json:"employee_name"`
	EmployeeRegistration string             `json:"employee_registration"`
	CycleID              uint               `json:"cycle_id"`
	Status               models.OrderStatus `json:"status"`
	Items                []ItemIn           `json:"items"`
}

type Payload struct {
	Employees []EmployeeIn    `json:"employees"`
	Groups    []GroupIn       `json:"groups"`
	Products  []ProductIn     `json:"products"`
	Cycles    []CycleIn       `json:"cycles"`
	Orders    []OrderIn       `json:"orders"`
	Settings  json.RawMessage `json:"settings"`
}

type Counts struct {
	Settings  int `json:"settings"`
	Employees int `json:"employees"`
	Groups    int `json:"groups"`
	Subgroups int `json:"subgroups"`
	Products  int `json:"products"`
	Cycles    int `json:"cycles"`
	Orders    int `json:"orders"`
}

type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Counts  Counts `json:"counts"`
}

// CacheInvalidator é avisado quando as configurações mudam.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	store    Store
	settings CacheInvalidator
}

func NewService(store Store, settingsCache CacheInvalidator) *Service {
	return &Service{store: store, settings: settingsCache}
}

// idMap traduz id antigo para novo; ids desconhecidos passam adiante.
type idMap map[uint]uint

func (m idMap) resolve(old uint) uint {
	if id, ok := m[old]; ok {
		return id
	}
	return old
}

func (s *Service) Run(ctx context.Context, p Payload) (*Result, error) {
	var values map[string]string
	if len(p.Settings) > 0 && string(p.Settings) != "null" {
		var err error
		if values, err = settings.DecodePatch(p.Settings); err != nil {
			return nil, err
		}
	}

	var counts Counts
	err := database.RunTx(ctx, s.store.DB(), func(tx *gorm.DB) error {
		counts = Counts{}
		employees, groups, subgroups, products, cycles := idMap{}, idMap{}, idMap{}, idMap{}, idMap{}

		if err := s.store.UpsertSettings(ctx, tx, values); err != nil {
			return fmt.Errorf("configurações: %w", err)
		}
		counts.Settings = len(values)

		for _, in := range p.Employees {
			e := employeeModel(in)
			if e.RegistrationNumber == "" || e.Name == "" {
				continue
			}
			created, err := s.store.EnsureEmployee(ctx, tx, e)
			if err != nil {
				return fmt.Errorf("funcionário %s: %w", in.RegistrationNumber, err)
			}
			employees[in.ID] = e.ID
			if created {
				counts.Employees++
			}
		}

		for _, in := range p.Groups {
			g := &models.Group{Name: in.Name, Description: in.Description, ItemLimit: in.ItemLimit, SortOrder: in.SortOrder}
			if err := s.store.CreateGroup(ctx, tx, g); err != nil {
				return fmt.Errorf("grupo %s: %w", in.Name, err)
			}
			groups[in.ID] = g.ID
			counts.Groups++

			for _, sub := range in.Subgroups {
				sg := &models.Subgroup{GroupID: g.ID, Name: sub.Name, ItemLimit: sub.ItemLimit, SortOrder: sub.SortOrder}
				if err := s.store.CreateSubgroup(ctx, tx, sg); err != nil {
					return fmt.Errorf("subgrupo %s: %w", sub.Name, err)
				}
				subgroups[sub.ID] = sg.ID
				counts.Subgroups++
			}
		}

		for _, in := range p.Products {
			prod := &models.Product{
				Name:      in.Name,
				GroupID:   groups.resolve(in.GroupID),
				Price:     in.Price.Round(2),
				Unit:      in.Unit,
				Available: in.Available == nil || *in.Available,
				SortOrder: in.SortOrder,
			}
			if in.SubgroupID != nil && *in.SubgroupID != 0 {
				id := subgroups.resolve(*in.SubgroupID)
				prod.SubgroupID = &id
			}
			if err := s.store.CreateProduct(ctx, tx, prod); err != nil {
				return fmt.Errorf("produto %s: %w", in.Name, err)
			}
			products[in.ID] = prod.ID
			counts.Products++
		}

		for _, in := range p.Cycles {
			c := &models.Cycle{Month: in.Month, Year: in.Year, StartDate: in.StartDate, EndDate: in.EndDate, Status: in.Status}
			if c.Status == "" {
				c.Status = models.CycleClosed
			}
			created, err := s.store.EnsureCycle(ctx, tx, c)
			if err != nil {
				return fmt.Errorf("ciclo %02d/%d: %w", in.Month, in.Year, err)
			}
			cycles[in.ID] = c.ID
			if created {
				counts.Cycles++
			}
		}

		for _, in := range p.Orders {
			o := orderModel(in, products)
			o.EmployeeID = employees.resolve(in.EmployeeID)
			o.CycleID = cycles.resolve(in.CycleID)
			if _, err := s.store.SaveOrder(ctx, tx, o); err != nil {
				return fmt.Errorf("pedido %d: %w", in.ID, err)
			}
			counts.Orders++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if len(values) > 0 && s.settings != nil {
		s.settings.Invalidate(ctx)
	}
	log.Info().Interface("counts", counts).Msg("migração concluída")
	return &Result{OK: true, Message: SuccessMessage, Counts: counts}, nil
}

func employeeModel(in EmployeeIn) *models.Employee {
	status := in.Status
	if status == "" {
		status = models.EmployeeActive
	}
	return &models.Employee{
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		Name:               strings.TrimSpace(in.Name),
		Password:           in.Password,
		Email:              strings.TrimSpace(in.Email),
		Whatsapp:           strings.TrimSpace(in.Whatsapp),
		Funcao:             in.Funcao,
		Setor:              in.Setor,
		Distribuicao:       in.Distribuicao,
		Admissao:           in.Admissao,
		Status:             status,
		FailedAttempts:     in.FailedAttempts,
		IsLocked:           in.IsLocked,
		ProfileImageURL:    in.ProfileImageURL,
	}
}

// orderModel recalcula o total a partir dos preços congelados.
func orderModel(in OrderIn, products idMap) *models.Order {
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID:            products.resolve(it.ProductID),
			Quantity:             it.Quantity,
			ProductNameSnapshot:  it.ProductNameSnapshot,
			GroupNameSnapshot:    it.GroupNameSnapshot,
			SubgroupNameSnapshot: it.SubgroupNameSnapshot,
			UnitPrice:            it.UnitPrice.Round(2),
		})
	}
	status := in.Status
	if !status.Valid() {
		status = models.OrderConfirmed
	}
	if len(items) == 0 {
		status = models.OrderDraft
	}
	return &models.Order{
		EmployeeName:         in.EmployeeName,
		EmployeeRegistration: in.EmployeeRegistration,
		Status:               status,
		Total:                models.SumItems(items),
		Items:                items,
	}
}
