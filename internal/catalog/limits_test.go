package catalog

import (
	"testing"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }

// Hortifruti (limite 3) tem Frutas (limite 2) e Verduras (sem limite); Ovos fica direto no grupo.
// Mercearia não tem subgrupos e limita a 4. Limpeza não tem limite.
func fixture() *Index {
	groups := []models.Group{
		{ID: 1, Name: "Hortifruti", ItemLimit: intPtr(3), Subgroups: []models.Subgroup{
			{ID: 10, GroupID: 1, Name: "Frutas", ItemLimit: intPtr(2)},
			{ID: 11, GroupID: 1, Name: "Verduras"},
		}},
		{ID: 2, Name: "Mercearia", ItemLimit: intPtr(4)},
		{ID: 3, Name: "Limpeza"},
	}
	products := []models.Product{
		{ID: 100, Name: "Banana", GroupID: 1, SubgroupID: uintPtr(10), Price: decimal.RequireFromString("5.50"), Available: true},
		{ID: 101, Name: "Maçã", GroupID: 1, SubgroupID: uintPtr(10), Price: decimal.RequireFromString("7.00"), Available: true},
		{ID: 102, Name: "Ovos", GroupID: 1, Price: decimal.RequireFromString("12.00"), Available: true},
		{ID: 103, Name: "Alface", GroupID: 1, SubgroupID: uintPtr(11), Price: decimal.RequireFromString("2.00"), Available: true},
		{ID: 104, Name: "Caqui", GroupID: 1, SubgroupID: uintPtr(99), Price: decimal.RequireFromString("3.00"), Available: true},
		{ID: 200, Name: "Arroz", GroupID: 2, Price: decimal.RequireFromString("20.00"), Available: true},
		{ID: 201, Name: "Feijão", GroupID: 2, Price: decimal.RequireFromString("8.90"), Available: true},
		{ID: 300, Name: "Sabão", GroupID: 3, Price: decimal.RequireFromString("4.00"), Available: false},
		{ID: 301, Name: "Detergente", GroupID: 3, Price: decimal.RequireFromString("2.50"), Available: true},
	}
	return NewIndex(groups, nil, products)
}

func TestSubgroupLimitRejectsThirdUnit(t *testing.T) {
	ix := fixture()
	cart := Cart{}

	require.NoError(t, ix.Add(cart, 100))
	require.NoError(t, ix.Add(cart, 100))
	err := ix.Add(cart, 101)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, Cart{100: 2}, cart)

	ix.Remove(cart, 100)
	require.NoError(t, ix.Add(cart, 101))
	assert.Equal(t, Cart{100: 1, 101: 1}, cart)
}

func TestGroupLimitCapsAcrossProducts(t *testing.T) {
	ix := fixture()
	cart := Cart{}

	for _, pid := range []uint{200, 201, 201, 200} {
		require.NoError(t, ix.Add(cart, pid))
	}
	assert.False(t, ix.CanAdd(cart, 200))
	assert.False(t, ix.CanAdd(cart, 201))
	assert.Error(t, ix.Add(cart, 201))
}

func TestUnlimitedGroupAlwaysAllows(t *testing.T) {
	ix := fixture()
	cart := Cart{301: 50}
	assert.True(t, ix.CanAdd(cart, 301))
}

func TestSubgroupWithoutLimitIsUnlimited(t *testing.T) {
	ix := fixture()
	cart := Cart{103: 10}
	assert.True(t, ix.CanAdd(cart, 103))
	assert.Equal(t, ScopeNone, ix.LimitFor(103).Scope)
}

func TestUnknownSubgroupIsUnlimited(t *testing.T) {
	ix := fixture()
	assert.Equal(t, ScopeNone, ix.LimitFor(104).Scope)
}

// Grupo com subgrupos e limite próprio: produto sem subgrupo segue o limite do
// grupo, contando todas as unidades do grupo; produtos com subgrupo ignoram o
// limite do grupo.
func TestGroupLimitWithSubgroupsAppliesOnlyToDirectProducts(t *testing.T) {
	ix := fixture()

	l := ix.LimitFor(102)
	assert.Equal(t, ScopeGroup, l.Scope)
	assert.Equal(t, 3, l.Max)

	cart := Cart{100: 2, 103: 1}
	assert.False(t, ix.CanAdd(cart, 102))
	assert.True(t, ix.CanAdd(cart, 103))

	assert.Equal(t, ScopeSubgroup, ix.LimitFor(100).Scope)
}

func TestRemoveDropsLineAtZero(t *testing.T) {
	ix := fixture()
	cart := Cart{200: 1}
	ix.Remove(cart, 200)
	_, ok := cart[200]
	assert.False(t, ok)

	ix.Remove(cart, 200)
	assert.Empty(t, cart)
}

func TestAddRejectsUnavailableProduct(t *testing.T) {
	ix := fixture()
	err := ix.Add(Cart{}, 300)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestTotalUsesCurrentPrices(t *testing.T) {
	ix := fixture()
	total := ix.Total(Cart{100: 2, 201: 1})
	assert.Equal(t, "19.90", total.StringFixed(2))
}

func TestValidate(t *testing.T) {
	ix := fixture()

	tests := []struct {
		name    string
		cart    Cart
		wantErr string
	}{
		{"empty", Cart{}, "Adicione pelo menos um produto"},
		{"within limits", Cart{100: 1, 101: 1, 200: 4, 301: 9}, ""},
		{"subgroup over", Cart{100: 2, 101: 1}, "Limite de 2 item(ns) atingido em Frutas"},
		{"group over", Cart{200: 3, 201: 2}, "Limite de 4 item(ns) atingido em Mercearia"},
		{"direct product counts whole group", Cart{102: 1, 100: 2, 103: 1}, "Limite de 3 item(ns) atingido em Hortifruti"},
		{"unknown product", Cart{999: 1}, "Produto 999 não encontrado"},
		{"unavailable", Cart{300: 1}, "Produto indisponível: Sabão"},
		{"zero quantity", Cart{200: 0}, "Quantidade inválida para Arroz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ix.Validate(tt.cart)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestFreezeSnapshotsNamesAndPrices(t *testing.T) {
	ix := fixture()

	items, total, err := ix.Freeze(Cart{101: 2, 200: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Maçã", items[0].ProductNameSnapshot)
	assert.Equal(t, "Hortifruti", items[0].GroupNameSnapshot)
	require.NotNil(t, items[0].SubgroupNameSnapshot)
	assert.Equal(t, "Frutas", *items[0].SubgroupNameSnapshot)
	assert.Equal(t, "7.00", items[0].UnitPrice.StringFixed(2))

	assert.Equal(t, "Arroz", items[1].ProductNameSnapshot)
	assert.Nil(t, items[1].SubgroupNameSnapshot)
	assert.Equal(t, "34.00", total.StringFixed(2))
}
