package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/audit"
	"pedidos-backend/internal/employee"
	"pedidos-backend/internal/metrics"
	"pedidos-backend/internal/models"
	"pedidos-backend/internal/password"

	"github.com/rs/zerolog/log"
)

const (
	LoginTypeAdmin    = "admin"
	LoginTypeEmployee = "employee"
	AdminUsername     = "admin"
)

type SettingsReader interface {
	AdminPassword(ctx context.Context) (string, error)
	RecoveryEmail(ctx context.Context) (string, error)
	CompanyName(ctx context.Context) (string, error)
}

// Notifier avisa o email de recuperação quando a senha é revelada.
type Notifier interface {
	SendRecoveryNotice(company, to, ip string, at time.Time) error
}

type LoginRequest struct {
	Type     string `json:"type"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

type CheckRequest struct {
	Username string `json:"username" validate:"required"`
}

type CreatePasswordRequest struct {
	EmployeeID uint   `json:"employeeId" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RecoverRequest struct {
	Email string `json:"email" validate:"required"`
}

type SessionUser struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// LoginResponse cobre as duas saídas de sucesso: sessão ou primeiro acesso.
type LoginResponse struct {
	User          *SessionUser `json:"user,omitempty"`
	Token         string       `json:"token,omitempty"`
	NeedsPassword bool         `json:"needsPassword,omitempty"`
	EmployeeID    uint         `json:"employeeId,omitempty"`
}

type CheckResponse struct {
	NeedsPassword bool   `json:"needsPassword"`
	EmployeeID    uint   `json:"employeeId"`
	Name          string `json:"name"`
}

type Service struct {
	employees employee.Repository
	settings  SettingsReader
	issuer    *TokenIssuer
	audit     audit.Writer
	notifier  Notifier
	now       func() time.Time
}

func NewService(employees employee.Repository, settings SettingsReader, issuer *TokenIssuer, auditWriter audit.Writer) *Service {
	return &Service{
		employees: employees,
		settings:  settings,
		issuer:    issuer,
		audit:     auditWriter,
		now:       time.Now,
	}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) Check(ctx context.Context, registration string) (*CheckResponse, error) {
	e, err := s.employees.FindByRegistration(ctx, strings.TrimSpace(registration))
	if errors.Is(err, employee.ErrNotFound) {
		return nil, apperror.NotFound("Matrícula não encontrada")
	}
	if err != nil {
		return nil, err
	}
	if err := checkAccess(e); err != nil {
		return nil, err
	}
	return &CheckResponse{NeedsPassword: !e.HasPassword(), EmployeeID: e.ID, Name: e.Name}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest, ip string) (*LoginResponse, error) {
	if req.Type == LoginTypeAdmin {
		return s.loginAdmin(ctx, req, ip)
	}
	return s.loginEmployee(ctx, req, ip)
}

func (s *Service) loginAdmin(ctx context.Context, req LoginRequest, ip string) (*LoginResponse, error) {
	stored, err := s.settings.AdminPassword(ctx)
	if err != nil {
		return nil, err
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(stored)) == 1
	if !userOK || !passOK {
		metrics.ObserveLogin(LoginTypeAdmin, "invalid")
		log.Warn().Str("ip", ip).Msg("login de administrador recusado")
		return nil, apperror.Unauthorized("Credenciais inválidas")
	}

	token, err := s.issuer.Issue(JWTCustomClaims{Name: AdminName, Role: RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("auth: emitir token: %w", err)
	}
	metrics.ObserveLogin(LoginTypeAdmin, "ok")
	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:  audit.AdminActor(ip),
		Action: models.AuditLoginAdmin,
	})
	return &LoginResponse{User: &SessionUser{ID: 0, Name: AdminName, IsAdmin: true}, Token: token}, nil
}

func (s *Service) loginEmployee(ctx context.Context, req LoginRequest, ip string) (*LoginResponse, error) {
	e, err := s.employees.FindByRegistration(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, employee.ErrNotFound) {
		metrics.ObserveLogin(LoginTypeEmployee, "unknown")
		return nil, apperror.Unauthorized("Matrícula não encontrada")
	}
	if err != nil {
		return nil, err
	}
	if err := checkAccess(e); err != nil {
		metrics.ObserveLogin(LoginTypeEmployee, "blocked")
		return nil, err
	}
	if !e.HasPassword() {
		metrics.ObserveLogin(LoginTypeEmployee, "first_access")
		return &LoginResponse{NeedsPassword: true, EmployeeID: e.ID}, nil
	}

	ok, needsRehash := password.Verify(e.Password, req.Password)
	if !ok {
		return nil, s.registerFailure(ctx, e, ip)
	}

	if e.FailedAttempts > 0 {
		if err := s.employees.UpdateLoginState(ctx, e.ID, 0, false); err != nil {
			return nil, err
		}
		e.FailedAttempts = 0
	}
	if needsRehash {
		if hash, err := password.Hash(req.Password); err == nil {
			if err := s.employees.SetPassword(ctx, e.ID, hash); err != nil {
				log.Error().Err(err).Uint("employee_id", e.ID).Msg("falha ao regravar senha legada")
			}
		}
	}

	resp, err := s.session(e)
	if err != nil {
		return nil, err
	}
	metrics.ObserveLogin(LoginTypeEmployee, "ok")
	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:  audit.EmployeeActor(e, ip),
		Action: models.AuditLoginEmployee,
	})
	return resp, nil
}

// registerFailure conta a tentativa errada e bloqueia na quinta.
func (s *Service) registerFailure(ctx context.Context, e *models.Employee, ip string) error {
	attempts := e.FailedAttempts + 1
	if attempts >= models.MaxFailedAttempts {
		if err := s.employees.UpdateLoginState(ctx, e.ID, attempts, true); err != nil {
			return err
		}
		metrics.ObserveLogin(LoginTypeEmployee, "locked")
		log.Warn().Str("registration", e.RegistrationNumber).Str("ip", ip).Msg("conta bloqueada por tentativas")
		audit.Record(ctx, s.audit, audit.LogOptions{
			Actor:   audit.EmployeeActor(e, ip),
			Action:  models.AuditAccountLocked,
			Details: fmt.Sprintf("%d tentativas incorretas", attempts),
		})
		return apperror.Forbidden("Conta bloqueada por excesso de tentativas. Contate o administrador.")
	}

	if err := s.employees.UpdateLoginState(ctx, e.ID, attempts, false); err != nil {
		return err
	}
	metrics.ObserveLogin(LoginTypeEmployee, "wrong_password")
	log.Warn().Str("registration", e.RegistrationNumber).Int("attempts", attempts).Msg("senha incorreta")
	return apperror.Unauthorized(fmt.Sprintf("Senha incorreta. %d tentativa(s) restante(s).", models.MaxFailedAttempts-attempts))
}

// CreatePassword define a senha do primeiro acesso e já abre a sessão.
func (s *Service) CreatePassword(ctx context.Context, req CreatePasswordRequest, ip string) (*LoginResponse, error) {
	e, err := s.employees.FindByID(ctx, req.EmployeeID)
	if errors.Is(err, employee.ErrNotFound) {
		return nil, apperror.NotFound("Funcionário não encontrado")
	}
	if err != nil {
		return nil, err
	}
	if err := checkAccess(e); err != nil {
		return nil, err
	}
	if e.HasPassword() {
		return nil, apperror.Conflict("Senha já cadastrada. Use o login.")
	}
	if len(req.Password) < password.MinLength {
		return nil, apperror.Validation(fmt.Sprintf("A senha deve ter pelo menos %d caracteres", password.MinLength))
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.employees.SetPassword(ctx, e.ID, hash); err != nil {
		return nil, err
	}
	e.Password = hash

	resp, err := s.session(e)
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:  audit.EmployeeActor(e, ip),
		Action: models.AuditPasswordCreated,
	})
	return resp, nil
}

// Recover revela a senha do administrador quando o email confere.
func (s *Service) Recover(ctx context.Context, req RecoverRequest, ip string) (string, error) {
	expected, err := s.settings.RecoveryEmail(ctx)
	if err != nil {
		return "", err
	}
	given := strings.ToLower(strings.TrimSpace(req.Email))
	if expected == "" || given != strings.ToLower(strings.TrimSpace(expected)) {
		log.Warn().Str("ip", ip).Msg("recuperação de senha recusada")
		return "", apperror.Forbidden("Email não autorizado para recuperação")
	}

	adminPassword, err := s.settings.AdminPassword(ctx)
	if err != nil {
		return "", err
	}
	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:   audit.AdminActor(ip),
		Action:  models.AuditPasswordRecover,
		Details: "Senha revelada para " + given,
	})

	if s.notifier != nil {
		company, _ := s.settings.CompanyName(ctx)
		if err := s.notifier.SendRecoveryNotice(company, expected, ip, s.now()); err != nil {
			log.Error().Err(err).Msg("falha ao enviar aviso de recuperação")
		}
	}
	return adminPassword, nil
}

func (s *Service) session(e *models.Employee) (*LoginResponse, error) {
	token, err := s.issuer.Issue(JWTCustomClaims{
		EmployeeID:   e.ID,
		Name:         e.Name,
		Registration: e.RegistrationNumber,
		Role:         RoleEmployee,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: emitir token: %w", err)
	}
	return &LoginResponse{User: &SessionUser{ID: e.ID, Name: e.Name}, Token: token}, nil
}

func checkAccess(e *models.Employee) error {
	if !e.IsActive() {
		return apperror.Forbidden("Funcionário desligado. Contate o administrador.")
	}
	if e.IsLocked {
		return apperror.Forbidden("Conta bloqueada. Contate o administrador.")
	}
	return nil
}
