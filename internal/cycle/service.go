package cycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/metrics"
	"pedidos-backend/internal/models"

	"github.com/juju/clock"
	"github.com/rs/zerolog/log"
)

type Current struct {
	Cycle         *models.Cycle `json:"cycle"`
	IsOpen        bool          `json:"isOpen"`
	DaysRemaining int           `json:"daysRemaining"`
	DaysUntilOpen int           `json:"daysUntilOpen"`
}

type CreateRequest struct {
	Month     int                `json:"month" validate:"required,min=1,max=12"`
	Year      int                `json:"year" validate:"required,min=2000,max=2100"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Status    models.CycleStatus `json:"status" validate:"omitempty,oneof=open closed"`
}

type Patch struct {
	StartDate *string             `json:"start_date"`
	EndDate   *string             `json:"end_date"`
	Status    *models.CycleStatus `json:"status" validate:"omitempty,oneof=open closed"`
}

type Service struct {
	repo  Repository
	clock clock.Clock
	loc   *time.Location
}

func NewService(repo Repository, clk clock.Clock, loc *time.Location) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, clock: clk, loc: loc}
}

func (s *Service) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Current resolve o ciclo do mês corrente, criando-o na primeira consulta e
// alinhando o status gravado com o calendário.
func (s *Service) Current(ctx context.Context) (*Current, error) {
	w := WindowAt(s.Now())

	c, err := s.repo.FindByMonthYear(ctx, w.Month, w.Year)
	switch {
	case errors.Is(err, ErrNotFound):
		c, err = s.create(ctx, w)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("cycle: buscar ciclo corrente: %w", err)
	case c.Status != w.Status():
		if err := s.repo.UpdateStatus(ctx, c.ID, w.Status()); err != nil {
			return nil, fmt.Errorf("cycle: atualizar status: %w", err)
		}
		c.Status = w.Status()
	}

	return &Current{
		Cycle:         c,
		IsOpen:        w.IsOpen,
		DaysRemaining: w.DaysRemaining,
		DaysUntilOpen: w.DaysUntilOpen,
	}, nil
}

func (s *Service) create(ctx context.Context, w Window) (*models.Cycle, error) {
	c := &models.Cycle{
		Month:     w.Month,
		Year:      w.Year,
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
		Status:    w.Status(),
	}
	err := s.repo.Create(ctx, c)
	if errors.Is(err, ErrDuplicate) {
		// outra requisição criou o ciclo primeiro
		existing, rerr := s.repo.FindByMonthYear(ctx, w.Month, w.Year)
		if rerr != nil {
			return nil, fmt.Errorf("cycle: reler após conflito: %w", rerr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cycle: criar ciclo: %w", err)
	}

	metrics.ObserveCycleCreated()
	log.Info().Str("cycle", w.Reference()).Str("status", string(c.Status)).Msg("ciclo criado")
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]models.Cycle, error) {
	return s.repo.List(ctx)
}

func (s *Service) FindByID(ctx context.Context, id uint) (*models.Cycle, error) {
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NotFound("Ciclo não encontrado")
	}
	return c, err
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Cycle, error) {
	start, end := Bounds(req.Month, req.Year)
	c := &models.Cycle{
		Month:     req.Month,
		Year:      req.Year,
		StartDate: start,
		EndDate:   end,
		Status:    req.Status,
	}
	if req.StartDate != "" {
		c.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		c.EndDate = req.EndDate
	}
	if c.Status == "" {
		c.Status = models.CycleClosed
	}

	err := s.repo.Create(ctx, c)
	if errors.Is(err, ErrDuplicate) {
		return nil, apperror.Conflict("Já existe um ciclo para este mês")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uint, patch Patch) (*models.Cycle, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.StartDate != nil {
		c.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		c.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
