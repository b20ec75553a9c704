package employee

import (
	"context"
	"sort"

	"pedidos-backend/internal/models"

	"gorm.io/gorm"
)

type memRepo struct {
	byID   map[uint]*models.Employee
	nextID uint
}

func newMemRepo(seed ...models.Employee) *memRepo {
	m := &memRepo{byID: map[uint]*models.Employee{}}
	for i := range seed {
		e := seed[i]
		if e.ID == 0 {
			m.nextID++
			e.ID = m.nextID
		} else if e.ID > m.nextID {
			m.nextID = e.ID
		}
		m.byID[e.ID] = &e
	}
	return m
}

func (m *memRepo) DB() *gorm.DB { return nil }

func (m *memRepo) List(ctx context.Context, tx *gorm.DB) ([]models.Employee, error) {
	out := []models.Employee{}
	for _, e := range m.byID {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) FindByID(ctx context.Context, id uint) (*models.Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memRepo) FindByRegistration(ctx context.Context, reg string) (*models.Employee, error) {
	for _, e := range m.byID {
		if e.RegistrationNumber == reg {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Create(ctx context.Context, tx *gorm.DB, e *models.Employee) error {
	for _, existing := range m.byID {
		if existing.RegistrationNumber == e.RegistrationNumber {
			return ErrDuplicate
		}
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memRepo) Save(ctx context.Context, tx *gorm.DB, e *models.Employee) error {
	for id, existing := range m.byID {
		if id != e.ID && existing.RegistrationNumber == e.RegistrationNumber {
			return ErrDuplicate
		}
	}
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memRepo) UpdateLoginState(ctx context.Context, id uint, failed int, locked bool) error {
	e, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.FailedAttempts, e.IsLocked = failed, locked
	return nil
}

func (m *memRepo) SetPassword(ctx context.Context, id uint, hash string) error {
	e, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.Password = hash
	return nil
}

func (m *memRepo) byReg(reg string) *models.Employee {
	for _, e := range m.byID {
		if e.RegistrationNumber == reg {
			return e
		}
	}
	return nil
}
