package audit

import (
	"context"
	"fmt"
	"time"

	"pedidos-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor é quem executou a ação. EmployeeID nil significa administrador.
type Actor struct {
	EmployeeID   *uint
	Name         string
	Registration string
	IP           string
	IsAdmin      bool
}

func AdminActor(ip string) Actor {
	return Actor{Name: "Administrador", IP: ip, IsAdmin: true}
}

func EmployeeActor(e *models.Employee, ip string) Actor {
	id := e.ID
	return Actor{EmployeeID: &id, Name: e.Name, Registration: e.RegistrationNumber, IP: ip}
}

type LogOptions struct {
	Actor          Actor
	Action         models.AuditAction
	OrderID        *uint
	OrderTotal     *decimal.Decimal
	CycleReference string
	Details        string
}

type Filter struct {
	Action     string
	EmployeeID *uint
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, l *models.AuditLog) error
	List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error)
}

// Writer é a dependência usada pelos demais serviços.
type Writer interface {
	WriteLog(ctx context.Context, opts LogOptions) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) WriteLog(ctx context.Context, opts LogOptions) error {
	entry := models.AuditLog{
		EmployeeID:           opts.Actor.EmployeeID,
		EmployeeName:         opts.Actor.Name,
		EmployeeRegistration: opts.Actor.Registration,
		Action:               opts.Action,
		OrderID:              opts.OrderID,
		CycleReference:       opts.CycleReference,
		IPAddress:            opts.Actor.IP,
		Details:              opts.Details,
	}
	if opts.OrderTotal != nil {
		entry.OrderTotal = decimal.NewNullDecimal(*opts.OrderTotal)
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("audit log não gravado: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// Record grava o log sem interromper a operação principal; falhas vão para o log.
func Record(ctx context.Context, w Writer, opts LogOptions) {
	if w == nil {
		return
	}
	if err := w.WriteLog(ctx, opts); err != nil {
		log.Error().Err(err).Str("action", string(opts.Action)).Msg("audit")
	}
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, l *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *gormRepository) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := q.Order("created_at desc, id desc").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&logs).Error
	return logs, total, err
}
