package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/audit"
	"pedidos-backend/internal/database"
	"pedidos-backend/internal/metrics"
	"pedidos-backend/internal/models"
	"pedidos-backend/internal/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Response expõe se há senha sem expor a senha.
type Response struct {
	models.Employee
	HasPassword bool `json:"has_password"`
}

func toResponse(e models.Employee) Response {
	return Response{Employee: e, HasPassword: e.HasPassword()}
}

type CreateRequest struct {
	Input
	Password        string                `json:"password"`
	Status          models.EmployeeStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	ProfileImageURL *string               `json:"profile_image_url"`
}

type Patch struct {
	RegistrationNumber *string                `json:"registration_number"`
	Name               *string                `json:"name"`
	Email              *string                `json:"email"`
	Whatsapp           *string                `json:"whatsapp"`
	Funcao             *string                `json:"funcao"`
	Setor              *string                `json:"setor"`
	Distribuicao       *string                `json:"distribuicao"`
	Admissao           *string                `json:"admissao"`
	Status             *models.EmployeeStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	IsLocked           *bool                  `json:"is_locked"`
	// vazio volta o funcionário para o primeiro acesso
	Password        *string `json:"password"`
	ProfileImageURL *string `json:"profile_image_url"`
}

type SyncResult struct {
	Added       int `json:"added"`
	Reactivated int `json:"reactivated"`
	Deactivated int `json:"deactivated"`
	Total       int `json:"total"`
}

type Service struct {
	repo  Repository
	audit audit.Writer
}

func NewService(repo Repository, auditWriter audit.Writer) *Service {
	return &Service{repo: repo, audit: auditWriter}
}

func (s *Service) List(ctx context.Context) ([]Response, error) {
	list, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Response, 0, len(list))
	for _, e := range list {
		out = append(out, toResponse(e))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Employee, error) {
	e, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NotFound("Funcionário não encontrado")
	}
	return e, err
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Response, error) {
	in := req.Input.normalized()
	if in.RegistrationNumber == "" || in.Name == "" {
		return nil, apperror.Validation("Matrícula e nome são obrigatórios")
	}
	e := fromInput(in)
	if req.Status != "" {
		e.Status = req.Status
	}
	e.ProfileImageURL = req.ProfileImageURL
	if req.Password != "" {
		if len(req.Password) < password.MinLength {
			return nil, apperror.Validation(fmt.Sprintf("A senha deve ter pelo menos %d caracteres", password.MinLength))
		}
		hash, err := password.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		e.Password = hash
	}

	if err := s.repo.Create(ctx, nil, e); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperror.Conflict("Matrícula já cadastrada")
		}
		return nil, err
	}
	resp := toResponse(*e)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id uint, patch Patch) (*Response, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.RegistrationNumber != nil {
		reg := strings.TrimSpace(*patch.RegistrationNumber)
		if reg == "" {
			return nil, apperror.Validation("Matrícula não pode ficar vazia")
		}
		e.RegistrationNumber = reg
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperror.Validation("Nome não pode ficar vazio")
		}
		e.Name = name
	}
	setTrimmed(&e.Email, patch.Email)
	setTrimmed(&e.Whatsapp, patch.Whatsapp)
	setTrimmed(&e.Funcao, patch.Funcao)
	setTrimmed(&e.Setor, patch.Setor)
	setTrimmed(&e.Distribuicao, patch.Distribuicao)
	setTrimmed(&e.Admissao, patch.Admissao)
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.IsLocked != nil {
		e.IsLocked = *patch.IsLocked
		if !e.IsLocked {
			e.FailedAttempts = 0
		}
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			e.Password = ""
		} else {
			if len(*patch.Password) < password.MinLength {
				return nil, apperror.Validation(fmt.Sprintf("A senha deve ter pelo menos %d caracteres", password.MinLength))
			}
			hash, err := password.Hash(*patch.Password)
			if err != nil {
				return nil, err
			}
			e.Password = hash
		}
	}
	if patch.ProfileImageURL != nil {
		e.ProfileImageURL = patch.ProfileImageURL
	}

	if err := s.repo.Save(ctx, nil, e); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperror.Conflict("Matrícula já cadastrada")
		}
		return nil, err
	}
	resp := toResponse(*e)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound("Funcionário não encontrado")
	}
	return err
}

// Unlock zera as tentativas e libera a conta.
func (s *Service) Unlock(ctx context.Context, id uint, actor audit.Actor) (*Response, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLoginState(ctx, e.ID, 0, false); err != nil {
		return nil, err
	}
	e.FailedAttempts, e.IsLocked = 0, false

	audit.Record(ctx, s.audit, audit.LogOptions{
		Actor:   actor,
		Action:  models.AuditEmployeeUnlock,
		Details: fmt.Sprintf("Desbloqueio de %s (%s)", e.Name, e.RegistrationNumber),
	})
	resp := toResponse(*e)
	return &resp, nil
}

// Bulk cria os funcionários novos; matrículas já existentes são ignoradas.
func (s *Service) Bulk(ctx context.Context, inputs []Input) ([]Response, error) {
	created := []Response{}
	err := database.RunTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		existing, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(existing))
		for _, e := range existing {
			known[e.RegistrationNumber] = true
		}

		for _, raw := range inputs {
			in := raw.normalized()
			if in.RegistrationNumber == "" || in.Name == "" || known[in.RegistrationNumber] {
				continue
			}
			e := fromInput(in)
			if err := s.repo.Create(ctx, tx, e); err != nil {
				return fmt.Errorf("criar %s: %w", in.RegistrationNumber, err)
			}
			known[in.RegistrationNumber] = true
			created = append(created, toResponse(*e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Sync aplica o arquivo como fonte da verdade: atualiza e reativa quem está
// no arquivo, cria os novos e desativa os ativos que ficaram de fora.
func (s *Service) Sync(ctx context.Context, inputs []Input) (*SyncResult, error) {
	result := &SyncResult{}

	fileRegs := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if reg := strings.TrimSpace(in.RegistrationNumber); reg != "" {
			fileRegs[reg] = true
		}
	}
	result.Total = len(fileRegs)
	if result.Total == 0 {
		// um arquivo vazio desativaria todo mundo
		return nil, apperror.Validation("Arquivo sem funcionários válidos")
	}

	err := database.RunTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		all, err := s.repo.List(ctx, tx)
		if err != nil {
			return err
		}
		byReg := make(map[string]*models.Employee, len(all))
		for i := range all {
			byReg[all[i].RegistrationNumber] = &all[i]
		}

		for _, raw := range inputs {
			in := raw.normalized()
			if in.RegistrationNumber == "" {
				continue
			}

			existing, ok := byReg[in.RegistrationNumber]
			if !ok {
				if in.Name == "" {
					continue
				}
				e := fromInput(in)
				if err := s.repo.Create(ctx, tx, e); err != nil {
					return fmt.Errorf("criar %s: %w", in.RegistrationNumber, err)
				}
				byReg[e.RegistrationNumber] = e
				result.Added++
				continue
			}

			changed := mergeInput(existing, in)
			if existing.Status == models.EmployeeInactive {
				existing.Status = models.EmployeeActive
				result.Reactivated++
				changed = true
			}
			if changed {
				if err := s.repo.Save(ctx, tx, existing); err != nil {
					return fmt.Errorf("atualizar %s: %w", existing.RegistrationNumber, err)
				}
			}
		}

		for i := range all {
			e := &all[i]
			if e.Status == models.EmployeeActive && !fileRegs[e.RegistrationNumber] {
				e.Status = models.EmployeeInactive
				if err := s.repo.Save(ctx, tx, e); err != nil {
					return fmt.Errorf("desativar %s: %w", e.RegistrationNumber, err)
				}
				result.Deactivated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveSync(result.Added, result.Reactivated, result.Deactivated)
	log.Info().
		Int("added", result.Added).
		Int("reactivated", result.Reactivated).
		Int("deactivated", result.Deactivated).
		Int("total", result.Total).
		Msg("sincronização de funcionários")
	return result, nil
}

func fromInput(in Input) *models.Employee {
	return &models.Employee{
		RegistrationNumber: in.RegistrationNumber,
		Name:               in.Name,
		Email:              in.Email,
		Whatsapp:           in.Whatsapp,
		Funcao:             in.Funcao,
		Setor:              in.Setor,
		Distribuicao:       in.Distribuicao,
		Admissao:           in.Admissao,
		Status:             models.EmployeeActive,
	}
}

// mergeInput copia apenas campos não vazios que mudaram.
func mergeInput(e *models.Employee, in Input) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && v != *dst {
			*dst = v
			changed = true
		}
	}
	set(&e.Name, in.Name)
	set(&e.Funcao, in.Funcao)
	set(&e.Setor, in.Setor)
	set(&e.Distribuicao, in.Distribuicao)
	set(&e.Email, in.Email)
	set(&e.Whatsapp, in.Whatsapp)
	set(&e.Admissao, in.Admissao)
	return changed
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
