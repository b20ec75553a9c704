package catalog

import (
	"context"
	"errors"

	"pedidos-backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("catalog: registro não encontrado")

// SortItem é uma linha do corpo de PATCH .../reorder.
type SortItem struct {
	ID        uint `json:"id" validate:"required"`
	SortOrder int  `json:"sort_order"`
}

type Repository interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	FindGroup(ctx context.Context, id uint) (*models.Group, error)
	CreateGroup(ctx context.Context, g *models.Group) error
	SaveGroup(ctx context.Context, g *models.Group) error
	// DeleteGroup remove produtos, subgrupos e o grupo numa transação.
	DeleteGroup(ctx context.Context, id uint) error
	ReorderGroups(ctx context.Context, items []SortItem) error

	ListSubgroups(ctx context.Context) ([]models.Subgroup, error)
	FindSubgroup(ctx context.Context, id uint) (*models.Subgroup, error)
	CreateSubgroup(ctx context.Context, s *models.Subgroup) error
	// SaveSubgroup leva os produtos junto quando o subgrupo muda de grupo.
	SaveSubgroup(ctx context.Context, s *models.Subgroup) error
	// DeleteSubgroup desvincula os produtos antes de remover.
	DeleteSubgroup(ctx context.Context, id uint) error
	ReorderSubgroups(ctx context.Context, items []SortItem) error

	ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error)
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	ReorderProducts(ctx context.Context, items []SortItem) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Preload("Subgroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		Order("sort_order asc, id asc").
		Find(&groups).Error
	return groups, err
}

func (r *gormRepository) FindGroup(ctx context.Context, id uint) (*models.Group, error) {
	var g models.Group
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *gormRepository) CreateGroup(ctx context.Context, g *models.Group) error {
	return r.db.WithContext(ctx).Omit("Subgroups").Create(g).Error
}

func (r *gormRepository) SaveGroup(ctx context.Context, g *models.Group) error {
	return r.db.WithContext(ctx).Omit("Subgroups").Save(g).Error
}

func (r *gormRepository) DeleteGroup(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Subgroup{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormRepository) ReorderGroups(ctx context.Context, items []SortItem) error {
	return r.reorder(ctx, &models.Group{}, items)
}

func (r *gormRepository) ListSubgroups(ctx context.Context) ([]models.Subgroup, error) {
	var subs []models.Subgroup
	err := r.db.WithContext(ctx).Order("sort_order asc, id asc").Find(&subs).Error
	return subs, err
}

func (r *gormRepository) FindSubgroup(ctx context.Context, id uint) (*models.Subgroup, error) {
	var s models.Subgroup
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *gormRepository) CreateSubgroup(ctx context.Context, s *models.Subgroup) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormRepository) SaveSubgroup(ctx context.Context, s *models.Subgroup) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(s).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("subgroup_id = ? AND group_id <> ?", s.ID, s.GroupID).
			Update("group_id", s.GroupID).Error
	})
}

func (r *gormRepository) DeleteSubgroup(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("subgroup_id = ?", id).
			Update("subgroup_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Subgroup{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormRepository) ReorderSubgroups(ctx context.Context, items []SortItem) error {
	return r.reorder(ctx, &models.Subgroup{}, items)
}

func (r *gormRepository) ListProducts(ctx context.Context, onlyAvailable bool) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	var products []models.Product
	err := q.Order("sort_order asc, id asc").Find(&products).Error
	return products, err
}

func (r *gormRepository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *gormRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *gormRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) ReorderProducts(ctx context.Context, items []SortItem) error {
	return r.reorder(ctx, &models.Product{}, items)
}

func (r *gormRepository) reorder(ctx context.Context, model interface{}, items []SortItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			if err := tx.Model(model).
				Where("id = ?", it.ID).
				Update("sort_order", it.SortOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
