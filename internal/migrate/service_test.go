package migrate

import (
	"context"
	"encoding/json"
	"testing"

	"pedidos-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore gera ids a partir de 100 para que a troca de ids fique visível.
type memStore struct {
	next      uint
	settings  map[string]string
	employees []*models.Employee
	groups    []*models.Group
	subgroups []*models.Subgroup
	products  []*models.Product
	cycles    []*models.Cycle
	orders    []*models.Order
}

func newMemStore() *memStore {
	return &memStore{next: 100, settings: map[string]string{}}
}

func (m *memStore) id() uint {
	m.next++
	return m.next
}

func (m *memStore) DB() *gorm.DB { return nil }

func (m *memStore) UpsertSettings(ctx context.Context, tx *gorm.DB, values map[string]string) error {
	for k, v := range values {
		m.settings[k] = v
	}
	return nil
}

func (m *memStore) EnsureEmployee(ctx context.Context, tx *gorm.DB, e *models.Employee) (bool, error) {
	for _, existing := range m.employees {
		if existing.RegistrationNumber == e.RegistrationNumber {
			*e = *existing
			return false, nil
		}
	}
	e.ID = m.id()
	m.employees = append(m.employees, e)
	return true, nil
}

func (m *memStore) CreateGroup(ctx context.Context, tx *gorm.DB, g *models.Group) error {
	g.ID = m.id()
	m.groups = append(m.groups, g)
	return nil
}

func (m *memStore) CreateSubgroup(ctx context.Context, tx *gorm.DB, sg *models.Subgroup) error {
	sg.ID = m.id()
	m.subgroups = append(m.subgroups, sg)
	return nil
}

func (m *memStore) CreateProduct(ctx context.Context, tx *gorm.DB, p *models.Product) error {
	p.ID = m.id()
	m.products = append(m.products, p)
	return nil
}

func (m *memStore) EnsureCycle(ctx context.Context, tx *gorm.DB, c *models.Cycle) (bool, error) {
	c.ID = m.id()
	m.cycles = append(m.cycles, c)
	return true, nil
}

func (m *memStore) SaveOrder(ctx context.Context, tx *gorm.DB, o *models.Order) (bool, error) {
	o.ID = m.id()
	m.orders = append(m.orders, o)
	return true, nil
}

type invalidateSpy struct{ calls int }

func (s *invalidateSpy) Invalidate(ctx context.Context) { s.calls++ }

const prototype = `{
  "settings": {"companyName": "Brasfrut", "orderBudget": 150},
  "employees": [
    {"id": 1, "registration_number": "1001", "name": "Ana", "password": "1234"},
    {"id": 2, "registration_number": "1002", "name": "Bruno", "status": "inactive"},
    {"id": 3, "registration_number": "", "name": "Sem matrícula"}
  ],
  "groups": [
    {"id": 1, "name": "Hortifruti", "item_limit": null, "subgroups": [{"id": 1, "name": "Frutas", "item_limit": 2}]},
    {"id": 2, "name": "Mercearia", "item_limit": 4, "subgroups": []}
  ],
  "products": [
    {"id": 1, "name": "Banana", "group_id": 1, "subgroup_id": 1, "price": "5.50", "unit": "kg"},
    {"id": 2, "name": "Arroz", "group_id": 2, "subgroup_id": null, "price": 20, "unit": "un", "available": false}
  ],
  "cycles": [{"id": 1, "month": 3, "year": 2026, "status": "open"}],
  "orders": [
    {"id": 1, "employee_id": 1, "cycle_id": 1, "employee_name": "Ana", "status": "confirmed", "total": "999",
     "items": [
       {"product_id": 1, "quantity": 2, "product_name_snapshot": "Banana", "group_name_snapshot": "Hortifruti", "unit_price": "5.50"},
       {"product_id": 2, "quantity": 0, "product_name_snapshot": "Arroz", "group_name_snapshot": "Mercearia", "unit_price": "20"}
     ]}
  ]
}`

func TestRunRemapsIDs(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(prototype), &p))

	store := newMemStore()
	spy := &invalidateSpy{}
	res, err := NewService(store, spy).Run(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, SuccessMessage, res.Message)
	assert.Equal(t, Counts{Settings: 2, Employees: 2, Groups: 2, Subgroups: 1, Products: 2, Cycles: 1, Orders: 1}, res.Counts)
	assert.Equal(t, "150", store.settings["orderBudget"])
	assert.Equal(t, 1, spy.calls)

	ana := store.employees[0]
	assert.Equal(t, models.EmployeeActive, ana.Status)
	assert.Equal(t, models.EmployeeInactive, store.employees[1].Status)

	banana, arroz := store.products[0], store.products[1]
	assert.Equal(t, store.groups[0].ID, banana.GroupID)
	require.NotNil(t, banana.SubgroupID)
	assert.Equal(t, store.subgroups[0].ID, *banana.SubgroupID)
	assert.Equal(t, store.groups[0].ID, store.subgroups[0].GroupID)
	assert.True(t, banana.Available)
	assert.False(t, arroz.Available)
	assert.Nil(t, arroz.SubgroupID)

	o := store.orders[0]
	assert.Equal(t, ana.ID, o.EmployeeID)
	assert.Equal(t, store.cycles[0].ID, o.CycleID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, banana.ID, o.Items[0].ProductID)
	assert.Equal(t, "11.00", o.Total.StringFixed(2))
}

func TestRunReusesExistingRegistration(t *testing.T) {
	store := newMemStore()
	store.employees = append(store.employees, &models.Employee{ID: 7, RegistrationNumber: "1001", Name: "Ana"})

	res, err := NewService(store, nil).Run(context.Background(), Payload{
		Employees: []EmployeeIn{{ID: 1, RegistrationNumber: "1001", Name: "Ana"}},
		Orders:    []OrderIn{{ID: 1, EmployeeID: 1, CycleID: 50}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Counts.Employees)
	assert.Len(t, store.employees, 1)

	// ciclo desconhecido mantém o id informado; pedido vazio vira rascunho
	o := store.orders[0]
	assert.Equal(t, uint(7), o.EmployeeID)
	assert.Equal(t, uint(50), o.CycleID)
	assert.Equal(t, models.OrderDraft, o.Status)
}
