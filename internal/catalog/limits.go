package catalog

import (
	"fmt"
	"sort"

	"pedidos-backend/internal/apperror"
	"pedidos-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Cart mapeia product_id -> quantidade. Quantidade zero nunca fica no mapa.
type Cart map[uint]int

type LimitScope int

const (
	ScopeNone LimitScope = iota
	ScopeSubgroup
	ScopeGroup
)

// Limit é o teto que governa um produto.
type Limit struct {
	Scope LimitScope
	ID    uint
	Max   int
	Name  string
}

// Index é uma fotografia do catálogo usada para checar limites e congelar itens.
type Index struct {
	groups    map[uint]*models.Group
	subgroups map[uint]*models.Subgroup
	products  map[uint]*models.Product

	// grupos com ao menos um subgrupo
	hasSubgroups map[uint]bool
}

func NewIndex(groups []models.Group, subgroups []models.Subgroup, products []models.Product) *Index {
	ix := &Index{
		groups:       make(map[uint]*models.Group, len(groups)),
		subgroups:    make(map[uint]*models.Subgroup, len(subgroups)),
		products:     make(map[uint]*models.Product, len(products)),
		hasSubgroups: make(map[uint]bool),
	}
	for i := range groups {
		ix.groups[groups[i].ID] = &groups[i]
		for j := range groups[i].Subgroups {
			sg := groups[i].Subgroups[j]
			ix.subgroups[sg.ID] = &sg
			ix.hasSubgroups[sg.GroupID] = true
		}
	}
	for i := range subgroups {
		ix.subgroups[subgroups[i].ID] = &subgroups[i]
		ix.hasSubgroups[subgroups[i].GroupID] = true
	}
	for i := range products {
		ix.products[products[i].ID] = &products[i]
	}
	return ix
}

func (ix *Index) Product(id uint) (*models.Product, bool) {
	p, ok := ix.products[id]
	return p, ok
}

// LimitFor aplica a precedência: subgrupo (quando o grupo tem subgrupos e o
// produto pertence a um), senão o limite do grupo, senão ilimitado.
// Um subgrupo desconhecido ou com limite nulo não limita.
// Produto sem subgrupo num grupo com subgrupos cai na regra do grupo.
func (ix *Index) LimitFor(productID uint) Limit {
	p, ok := ix.products[productID]
	if !ok {
		return Limit{Scope: ScopeNone}
	}

	if ix.hasSubgroups[p.GroupID] && p.SubgroupID != nil {
		sg, ok := ix.subgroups[*p.SubgroupID]
		if !ok || sg.ItemLimit == nil {
			return Limit{Scope: ScopeNone}
		}
		return Limit{Scope: ScopeSubgroup, ID: sg.ID, Max: *sg.ItemLimit, Name: sg.Name}
	}

	if g, ok := ix.groups[p.GroupID]; ok && g.ItemLimit != nil {
		return Limit{Scope: ScopeGroup, ID: g.ID, Max: *g.ItemLimit, Name: g.Name}
	}
	return Limit{Scope: ScopeNone}
}

// Consumption soma as quantidades do carrinho dentro do escopo do limite.
// No escopo de grupo conta todos os produtos do grupo, com ou sem subgrupo.
func (ix *Index) Consumption(cart Cart, l Limit) int {
	total := 0
	for pid, qty := range cart {
		p, ok := ix.products[pid]
		if !ok {
			continue
		}
		switch l.Scope {
		case ScopeSubgroup:
			if p.SubgroupID != nil && *p.SubgroupID == l.ID {
				total += qty
			}
		case ScopeGroup:
			if p.GroupID == l.ID {
				total += qty
			}
		}
	}
	return total
}

// CanAdd informa se mais uma unidade do produto cabe no carrinho.
func (ix *Index) CanAdd(cart Cart, productID uint) bool {
	l := ix.LimitFor(productID)
	if l.Scope == ScopeNone {
		return true
	}
	return ix.Consumption(cart, l) < l.Max
}

// Add incrementa uma unidade respeitando disponibilidade e limites.
func (ix *Index) Add(cart Cart, productID uint) error {
	p, ok := ix.products[productID]
	if !ok {
		return apperror.NotFound("Produto não encontrado")
	}
	if !p.Available {
		return apperror.Validation(fmt.Sprintf("Produto indisponível: %s", p.Name))
	}
	if !ix.CanAdd(cart, productID) {
		l := ix.LimitFor(productID)
		return apperror.Validation(limitMessage(l))
	}
	cart[productID]++
	return nil
}

// Remove decrementa sempre; em zero a linha sai do carrinho.
func (ix *Index) Remove(cart Cart, productID uint) {
	qty, ok := cart[productID]
	if !ok {
		return
	}
	if qty <= 1 {
		delete(cart, productID)
		return
	}
	cart[productID] = qty - 1
}

// Total usa os preços atuais do catálogo (carrinho ainda não congelado).
func (ix *Index) Total(cart Cart) decimal.Decimal {
	total := decimal.Zero
	for pid, qty := range cart {
		if p, ok := ix.products[pid]; ok {
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return total
}

// Validate confere um carrinho inteiro enviado pelo cliente: produtos existentes
// e disponíveis, quantidades positivas e nenhum teto acima do limite.
func (ix *Index) Validate(cart Cart) error {
	if len(cart) == 0 {
		return apperror.Validation("Adicione pelo menos um produto")
	}

	seen := make(map[Limit]bool)
	for _, pid := range sortedIDs(cart) {
		qty := cart[pid]
		p, ok := ix.products[pid]
		if !ok {
			return apperror.Validation(fmt.Sprintf("Produto %d não encontrado", pid))
		}
		if qty < 1 {
			return apperror.Validation(fmt.Sprintf("Quantidade inválida para %s", p.Name))
		}
		if !p.Available {
			return apperror.Validation(fmt.Sprintf("Produto indisponível: %s", p.Name))
		}

		l := ix.LimitFor(pid)
		if l.Scope == ScopeNone || seen[l] {
			continue
		}
		seen[l] = true
		if ix.Consumption(cart, l) > l.Max {
			return apperror.Validation(limitMessage(l))
		}
	}
	return nil
}

// Freeze copia nome, grupo, subgrupo e preço atuais para as linhas do pedido.
func (ix *Index) Freeze(cart Cart) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(cart))
	for _, pid := range sortedIDs(cart) {
		p, ok := ix.products[pid]
		if !ok {
			return nil, decimal.Zero, apperror.Validation(fmt.Sprintf("Produto %d não encontrado", pid))
		}
		item := models.OrderItem{
			ProductID:           pid,
			Quantity:            cart[pid],
			ProductNameSnapshot: p.Name,
			UnitPrice:           p.Price,
		}
		if g, ok := ix.groups[p.GroupID]; ok {
			item.GroupNameSnapshot = g.Name
		}
		if p.SubgroupID != nil {
			if sg, ok := ix.subgroups[*p.SubgroupID]; ok {
				name := sg.Name
				item.SubgroupNameSnapshot = &name
			}
		}
		items = append(items, item)
	}
	return items, models.SumItems(items), nil
}

func limitMessage(l Limit) string {
	return fmt.Sprintf("Limite de %d item(ns) atingido em %s", l.Max, l.Name)
}

func sortedIDs(cart Cart) []uint {
	ids := make([]uint, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
