package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/httpx"
	"pedidos-backend/internal/models"

	"github.com/shopspring/decimal"
)

type GroupRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	ItemLimit   *int   `json:"item_limit" validate:"omitempty,gte=0"`
	SortOrder   int    `json:"sort_order"`
}

type GroupPatch struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	ItemLimit   httpx.OptionalInt `json:"item_limit"`
	SortOrder   *int              `json:"sort_order"`
}

type SubgroupRequest struct {
	GroupID   uint   `json:"group_id" validate:"required"`
	Name      string `json:"name" validate:"required,max=100"`
	ItemLimit *int   `json:"item_limit" validate:"omitempty,gte=0"`
	SortOrder int    `json:"sort_order"`
}

type SubgroupPatch struct {
	GroupID   *uint             `json:"group_id"`
	Name      *string           `json:"name"`
	ItemLimit httpx.OptionalInt `json:"item_limit"`
	SortOrder *int              `json:"sort_order"`
}

type ProductRequest struct {
	Name       string          `json:"name" validate:"required,max=150"`
	GroupID    uint            `json:"group_id" validate:"required"`
	SubgroupID *uint           `json:"subgroup_id"`
	Price      decimal.Decimal `json:"price" validate:"gte=0"`
	Unit       string          `json:"unit" validate:"max=20"`
	Available  *bool           `json:"available"`
	SortOrder  int             `json:"sort_order"`
}

type ProductPatch struct {
	Name       *string             `json:"name"`
	GroupID    *uint               `json:"group_id"`
	SubgroupID httpx.OptionalUint  `json:"subgroup_id"`
	Price      decimal.NullDecimal `json:"price"`
	Unit       *string             `json:"unit"`
	Available  *bool               `json:"available"`
	SortOrder  *int                `json:"sort_order"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LoadIndex carrega grupos, subgrupos e produtos para checagem de limites.
func (s *Service) LoadIndex(ctx context.Context) (*Index, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: listar grupos: %w", err)
	}
	subs, err := s.repo.ListSubgroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: listar subgrupos: %w", err)
	}
	products, err := s.repo.ListProducts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("catalog: listar produtos: %w", err)
	}
	return NewIndex(groups, subs, products), nil
}

// ---- grupos ----

func (s *Service) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].Subgroups == nil {
			groups[i].Subgroups = []models.Subgroup{}
		}
	}
	return groups, nil
}

func (s *Service) CreateGroup(ctx context.Context, req GroupRequest) (*models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Nome do grupo é obrigatório")
	}
	g := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		ItemLimit:   req.ItemLimit,
		SortOrder:   req.SortOrder,
		Subgroups:   []models.Subgroup{},
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) UpdateGroup(ctx context.Context, id uint, patch GroupPatch) (*models.Group, error) {
	g, err := s.repo.FindGroup(ctx, id)
	if err != nil {
		return nil, translate(err, "Grupo não encontrado")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperror.Validation("Nome do grupo não pode ficar vazio")
		}
		g.Name = name
	}
	if patch.Description != nil {
		g.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.ItemLimit.Set {
		if err := checkLimit(patch.ItemLimit.Value); err != nil {
			return nil, err
		}
		g.ItemLimit = patch.ItemLimit.Value
	}
	if patch.SortOrder != nil {
		g.SortOrder = *patch.SortOrder
	}
	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) DeleteGroup(ctx context.Context, id uint) error {
	return translate(s.repo.DeleteGroup(ctx, id), "Grupo não encontrado")
}

func (s *Service) ReorderGroups(ctx context.Context, items []SortItem) error {
	return s.repo.ReorderGroups(ctx, items)
}

// ---- subgrupos ----

func (s *Service) CreateSubgroup(ctx context.Context, req SubgroupRequest) (*models.Subgroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Nome do subgrupo é obrigatório")
	}
	if _, err := s.repo.FindGroup(ctx, req.GroupID); err != nil {
		return nil, translate(err, "Grupo não encontrado")
	}
	sub := &models.Subgroup{
		GroupID:   req.GroupID,
		Name:      name,
		ItemLimit: req.ItemLimit,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.CreateSubgroup(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) UpdateSubgroup(ctx context.Context, id uint, patch SubgroupPatch) (*models.Subgroup, error) {
	sub, err := s.repo.FindSubgroup(ctx, id)
	if err != nil {
		return nil, translate(err, "Subgrupo não encontrado")
	}
	if patch.GroupID != nil && *patch.GroupID != sub.GroupID {
		if _, err := s.repo.FindGroup(ctx, *patch.GroupID); err != nil {
			return nil, translate(err, "Grupo não encontrado")
		}
		sub.GroupID = *patch.GroupID
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperror.Validation("Nome do subgrupo não pode ficar vazio")
		}
		sub.Name = name
	}
	if patch.ItemLimit.Set {
		if err := checkLimit(patch.ItemLimit.Value); err != nil {
			return nil, err
		}
		sub.ItemLimit = patch.ItemLimit.Value
	}
	if patch.SortOrder != nil {
		sub.SortOrder = *patch.SortOrder
	}
	if err := s.repo.SaveSubgroup(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) DeleteSubgroup(ctx context.Context, id uint) error {
	return translate(s.repo.DeleteSubgroup(ctx, id), "Subgrupo não encontrado")
}

func (s *Service) ReorderSubgroups(ctx context.Context, items []SortItem) error {
	return s.repo.ReorderSubgroups(ctx, items)
}

// ---- produtos ----

func (s *Service) ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	return s.repo.ListProducts(ctx, onlyAvailable)
}

func (s *Service) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Nome do produto é obrigatório")
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("Preço inválido")
	}
	if err := s.checkPlacement(ctx, req.GroupID, req.SubgroupID); err != nil {
		return nil, err
	}
	p := &models.Product{
		Name:       name,
		GroupID:    req.GroupID,
		SubgroupID: req.SubgroupID,
		Price:      req.Price.Round(2),
		Unit:       strings.TrimSpace(req.Unit),
		Available:  req.Available == nil || *req.Available,
		SortOrder:  req.SortOrder,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, translate(err, "Produto não encontrado")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperror.Validation("Nome do produto não pode ficar vazio")
		}
		p.Name = name
	}
	groupID, subgroupID := p.GroupID, p.SubgroupID
	if patch.GroupID != nil {
		groupID = *patch.GroupID
	}
	if patch.SubgroupID.Set {
		subgroupID = patch.SubgroupID.Value
	}
	if patch.GroupID != nil || patch.SubgroupID.Set {
		if err := s.checkPlacement(ctx, groupID, subgroupID); err != nil {
			return nil, err
		}
		p.GroupID, p.SubgroupID = groupID, subgroupID
	}
	if patch.Price.Valid {
		if patch.Price.Decimal.IsNegative() {
			return nil, apperror.Validation("Preço inválido")
		}
		p.Price = patch.Price.Decimal.Round(2)
	}
	if patch.Unit != nil {
		p.Unit = strings.TrimSpace(*patch.Unit)
	}
	if patch.Available != nil {
		p.Available = *patch.Available
	}
	if patch.SortOrder != nil {
		p.SortOrder = *patch.SortOrder
	}
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	return translate(s.repo.DeleteProduct(ctx, id), "Produto não encontrado")
}

func (s *Service) ReorderProducts(ctx context.Context, items []SortItem) error {
	return s.repo.ReorderProducts(ctx, items)
}

// checkPlacement garante que o subgrupo, se houver, pertence ao grupo.
func (s *Service) checkPlacement(ctx context.Context, groupID uint, subgroupID *uint) error {
	if _, err := s.repo.FindGroup(ctx, groupID); err != nil {
		return translate(err, "Grupo não encontrado")
	}
	if subgroupID == nil {
		return nil
	}
	sub, err := s.repo.FindSubgroup(ctx, *subgroupID)
	if err != nil {
		return translate(err, "Subgrupo não encontrado")
	}
	if sub.GroupID != groupID {
		return apperror.Validation("Subgrupo não pertence ao grupo informado")
	}
	return nil
}

func checkLimit(v *int) error {
	if v != nil && *v < 0 {
		return apperror.Validation("Limite não pode ser negativo")
	}
	return nil
}

func translate(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound(msg)
	}
	return err
}
