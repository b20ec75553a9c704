package order

import (
	"context"
	"errors"
	"fmt"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/audit"
	"pedidos-backend/internal/catalog"
	"pedidos-backend/internal/cycle"
	"pedidos-backend/internal/database"
	"pedidos-backend/internal/metrics"
	"pedidos-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CatalogLoader interface {
	LoadIndex(ctx context.Context) (*catalog.Index, error)
}

type CycleResolver interface {
	Current(ctx context.Context) (*cycle.Current, error)
	FindByID(ctx context.Context, id uint) (*models.Cycle, error)
}

type EmployeeFinder interface {
	Get(ctx context.Context, id uint) (*models.Employee, error)
}

type BudgetReader interface {
	OrderBudget(ctx context.Context) (decimal.Decimal, bool, error)
}

// Caller é quem faz a requisição.
type Caller struct {
	EmployeeID uint
	IsAdmin    bool
	Actor      audit.Actor
}

func (c Caller) canAccess(employeeID uint) bool {
	return c.IsAdmin || c.EmployeeID == employeeID
}

type ItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=0"`
}

type SubmitRequest struct {
	EmployeeID uint        `json:"employee_id"`
	CycleID    uint        `json:"cycle_id"`
	Items      []ItemInput `json:"items" validate:"dive"`
	Agreed     bool        `json:"agreed"`
}

type UpdateRequest struct {
	Items  *[]ItemInput        `json:"items" validate:"omitempty,dive"`
	Status *models.OrderStatus `json:"status" validate:"omitempty,oneof=draft confirmed closed"`
	Agreed bool                `json:"agreed"`
}

type Service struct {
	repo      Repository
	catalog   CatalogLoader
	cycles    CycleResolver
	employees EmployeeFinder
	budget    BudgetReader
	audit     audit.Writer
}

func NewService(repo Repository, catalogLoader CatalogLoader, cycles CycleResolver, employees EmployeeFinder, budget BudgetReader, auditWriter audit.Writer) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalogLoader,
		cycles:    cycles,
		employees: employees,
		budget:    budget,
		audit:     auditWriter,
	}
}

// ToCart junta linhas repetidas; quantidade zero remove a linha.
func ToCart(items []ItemInput) (catalog.Cart, error) {
	cart := catalog.Cart{}
	for _, it := range items {
		if it.Quantity < 0 {
			return nil, apperror.Validation("Quantidade inválida")
		}
		if it.Quantity == 0 {
			continue
		}
		cart[it.ProductID] += it.Quantity
	}
	return cart, nil
}

func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *Service) ListByCycle(ctx context.Context, cycleID uint) ([]models.Order, error) {
	if _, err := s.cycles.FindByID(ctx, cycleID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filter{CycleID: &cycleID})
}

// ListByEmployee devolve o histórico; com onlyPlaced os rascunhos zerados somem.
func (s *Service) ListByEmployee(ctx context.Context, caller Caller, employeeID uint, onlyPlaced bool) ([]models.Order, error) {
	if !caller.canAccess(employeeID) {
		return nil, apperror.Forbidden("Você só pode consultar os seus pedidos")
	}
	list, err := s.repo.List(ctx, Filter{EmployeeID: &employeeID})
	if err != nil {
		return nil, err
	}
	if !onlyPlaced {
		return list, nil
	}
	out := make([]models.Order, 0, len(list))
	for _, o := range list {
		if o.Status == models.OrderDraft && o.Total.IsZero() {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, nil, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NotFound("Pedido não encontrado")
	}
	if err != nil {
		return nil, err
	}
	if !caller.canAccess(o.EmployeeID) {
		return nil, apperror.Forbidden("Você só pode consultar os seus pedidos")
	}
	return o, nil
}

// Submit confirma o pedido do funcionário no ciclo atual. Se já houver pedido
// para o par funcionário/ciclo os itens são substituídos por inteiro.
func (s *Service) Submit(ctx context.Context, caller Caller, req SubmitRequest) (*models.Order, error) {
	if !req.Agreed {
		return nil, apperror.Validation("Aceite o termo para confirmar")
	}
	cart, err := ToCart(req.Items)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, apperror.Validation("Adicione pelo menos um produto")
	}

	employeeID := req.EmployeeID
	if !caller.IsAdmin {
		if employeeID != 0 && employeeID != caller.EmployeeID {
			return nil, apperror.Forbidden("Você só pode enviar o seu próprio pedido")
		}
		employeeID = caller.EmployeeID
	}
	if employeeID == 0 {
		return nil, apperror.Validation("Funcionário não informado")
	}

	cur, err := s.cycles.Current(ctx)
	if err != nil {
		return nil, err
	}
	if req.CycleID != 0 && req.CycleID != cur.Cycle.ID {
		return nil, apperror.Validation("Pedidos só podem ser enviados para o ciclo atual")
	}
	if !cur.IsOpen || cur.Cycle.IsClosed() {
		return nil, apperror.Forbidden("O período de pedidos está fechado")
	}

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive() {
		return nil, apperror.Forbidden("Funcionário desligado. Contate o administrador.")
	}

	items, total, err := s.freeze(ctx, cart)
	if err != nil {
		return nil, err
	}

	var (
		saved   *models.Order
		created bool
	)
	err = database.RunTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existing, err := s.repo.FindByEmployeeAndCycle(ctx, tx, emp.ID, cur.Cycle.ID)
		if errors.Is(err, ErrNotFound) {
			o := &models.Order{
				EmployeeID:           emp.ID,
				EmployeeName:         emp.Name,
				EmployeeRegistration: emp.RegistrationNumber,
				CycleID:              cur.Cycle.ID,
				Status:               models.OrderConfirmed,
				Total:                total,
				Items:                items,
			}
			if err := s.repo.Create(ctx, tx, o); err != nil {
				return err
			}
			saved, created = o, true
			return nil
		}
		if err != nil {
			return err
		}

		created = len(existing.Items) == 0
		existing.EmployeeName = emp.Name
		existing.EmployeeRegistration = emp.RegistrationNumber
		existing.Status = models.OrderConfirmed
		existing.Total = total
		if err := s.replace(ctx, tx, existing, items); err != nil {
			return err
		}
		saved = existing
		return nil
	})
	if errors.Is(err, ErrDuplicate) {
		return nil, apperror.Conflict("Pedido enviado em outra sessão. Atualize a página e tente novamente.")
	}
	if err != nil {
		return nil, fmt.Errorf("order: salvar pedido: %w", err)
	}

	action, label := models.AuditOrderEdited, "edited"
	if created {
		action, label = models.AuditOrderCreated, "created"
	}
	s.record(ctx, caller, action, saved, cur.Cycle)
	metrics.ObserveOrder(label)
	log.Info().
		Uint("order_id", saved.ID).
		Uint("employee_id", saved.EmployeeID).
		Str("total", saved.Total.StringFixed(2)).
		Msg("pedido confirmado")
	return saved, nil
}

// Update substitui itens e/ou altera o status. Bloqueado com o ciclo encerrado.
func (s *Service) Update(ctx context.Context, caller Caller, id uint, req UpdateRequest) (*models.Order, error) {
	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	c, err := s.editableCycle(ctx, caller, o)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && !caller.IsAdmin {
		return nil, apperror.Forbidden("Somente o administrador altera o status do pedido")
	}
	if req.Items == nil && req.Status == nil {
		return o, nil
	}
	refilled := req.Items != nil && len(o.Items) == 0

	var items []models.OrderItem
	if req.Items != nil {
		if !caller.IsAdmin && !req.Agreed {
			return nil, apperror.Validation("Aceite o termo para confirmar")
		}
		cart, err := ToCart(*req.Items)
		if err != nil {
			return nil, err
		}
		var total decimal.Decimal
		items, total, err = s.freeze(ctx, cart)
		if err != nil {
			return nil, err
		}
		o.Total = total
		o.Status = models.OrderConfirmed
	}
	if req.Status != nil {
		o.Status = *req.Status
	}

	err = database.RunTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if items != nil {
			return s.replace(ctx, tx, o, items)
		}
		return s.repo.UpdateHeader(ctx, tx, o)
	})
	if err != nil {
		return nil, fmt.Errorf("order: atualizar pedido: %w", err)
	}

	action, label := models.AuditOrderEdited, "edited"
	if refilled {
		action, label = models.AuditOrderCreated, "created"
	}
	s.record(ctx, caller, action, o, c)
	metrics.ObserveOrder(label)
	return o, nil
}

// Clear esvazia o pedido e volta para rascunho; a linha continua existindo.
func (s *Service) Clear(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	c, err := s.editableCycle(ctx, caller, o)
	if err != nil {
		return nil, err
	}
	previous := o.Total

	o.Status = models.OrderDraft
	o.Total = decimal.Zero
	err = database.RunTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.replace(ctx, tx, o, []models.OrderItem{})
	})
	if err != nil {
		return nil, fmt.Errorf("order: excluir pedido: %w", err)
	}

	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:          caller.Actor,
		Action:         models.AuditOrderDeleted,
		OrderID:        &o.ID,
		OrderTotal:     &previous,
		CycleReference: cycle.Reference(c.Month, c.Year),
		Details:        fmt.Sprintf("Pedido de %s (%s) excluído", o.EmployeeName, o.EmployeeRegistration),
	})
	metrics.ObserveOrder("deleted")
	return o, nil
}

// editableCycle recusa alterações em ciclo encerrado. O funcionário só mexe
// no ciclo atual e aberto.
func (s *Service) editableCycle(ctx context.Context, caller Caller, o *models.Order) (*models.Cycle, error) {
	if !caller.IsAdmin {
		cur, err := s.cycles.Current(ctx)
		if err != nil {
			return nil, err
		}
		if cur.Cycle.ID != o.CycleID || !cur.IsOpen {
			return nil, apperror.Forbidden("Ciclo encerrado. O pedido não pode mais ser alterado.")
		}
	}
	c, err := s.cycles.FindByID(ctx, o.CycleID)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, apperror.Forbidden("Ciclo encerrado. O pedido não pode mais ser alterado.")
	}
	return c, nil
}

func (s *Service) freeze(ctx context.Context, cart catalog.Cart) ([]models.OrderItem, decimal.Decimal, error) {
	ix, err := s.catalog.LoadIndex(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := ix.Validate(cart); err != nil {
		return nil, decimal.Zero, err
	}
	items, total, err := ix.Freeze(cart)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if s.budget != nil {
		limit, ok, err := s.budget.OrderBudget(ctx)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if ok && total.GreaterThan(limit) {
			return nil, decimal.Zero, apperror.Validation(fmt.Sprintf("O pedido ultrapassa o limite de R$ %s", limit.StringFixed(2)))
		}
	}
	return items, total, nil
}

// replace troca os itens e grava o cabeçalho como uma unidade.
func (s *Service) replace(ctx context.Context, tx *gorm.DB, o *models.Order, items []models.OrderItem) error {
	if err := s.repo.ReplaceItems(ctx, tx, o.ID, items); err != nil {
		return err
	}
	if err := s.repo.UpdateHeader(ctx, tx, o); err != nil {
		return err
	}
	o.Items = items
	return nil
}

func (s *Service) record(ctx context.Context, caller Caller, action models.AuditAction, o *models.Order, c *models.Cycle) {
	total := o.Total
	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:          caller.Actor,
		Action:         action,
		OrderID:        &o.ID,
		OrderTotal:     &total,
		CycleReference: cycle.Reference(c.Month, c.Year),
		Details:        fmt.Sprintf("%d item(ns) para %s (%s)", countUnits(o.Items), o.EmployeeName, o.EmployeeRegistration),
	})
}

func countUnits(items []models.OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
