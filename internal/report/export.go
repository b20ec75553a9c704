// Package report monta a planilha de pedidos de um ciclo: uma aba por grupo,
// funcionários nas linhas e produtos nas colunas.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"pedidos-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	emptySheet   = "Pedidos"
)

type Row struct {
	Registration string
	Name         string
	Quantities   map[string]int
	Total        int
}

type Sheet struct {
	Group    string
	Products []string
	Rows     []Row
}

// Header devolve Matrícula, Funcionário, produtos e Total.
func (s Sheet) Header() []interface{} {
	out := make([]interface{}, 0, len(s.Products)+3)
	out = append(out, "Matrícula", "Funcionário")
	for _, p := range s.Products {
		out = append(out, p)
	}
	return append(out, "Total")
}

func (s Sheet) values(r Row) []interface{} {
	out := make([]interface{}, 0, len(s.Products)+3)
	out = append(out, r.Registration, r.Name)
	for _, p := range s.Products {
		if q := r.Quantities[p]; q > 0 {
			out = append(out, q)
		} else {
			out = append(out, "")
		}
	}
	return append(out, r.Total)
}

// BuildSheets agrega os itens congelados por grupo. Só entram produtos que
// aparecem em algum pedido e funcionários com itens no grupo.
func BuildSheets(orders []models.Order) []Sheet {
	type key struct {
		group    string
		employee uint
	}
	products := map[string]map[string]bool{}
	rows := map[key]*Row{}

	for _, o := range orders {
		for _, it := range o.Items {
			if it.Quantity <= 0 {
				continue
			}
			group := it.GroupNameSnapshot
			if products[group] == nil {
				products[group] = map[string]bool{}
			}
			products[group][it.ProductNameSnapshot] = true

			k := key{group: group, employee: o.EmployeeID}
			r, ok := rows[k]
			if !ok {
				r = &Row{Registration: o.EmployeeRegistration, Name: o.EmployeeName, Quantities: map[string]int{}}
				rows[k] = r
			}
			r.Quantities[it.ProductNameSnapshot] += it.Quantity
			r.Total += it.Quantity
		}
	}

	sheets := make([]Sheet, 0, len(products))
	for group, names := range products {
		s := Sheet{Group: group}
		for name := range names {
			s.Products = append(s.Products, name)
		}
		sort.Strings(s.Products)
		for k, r := range rows {
			if k.group == group {
				s.Rows = append(s.Rows, *r)
			}
		}
		sort.Slice(s.Rows, func(i, j int) bool {
			if s.Rows[i].Name != s.Rows[j].Name {
				return s.Rows[i].Name < s.Rows[j].Name
			}
			return s.Rows[i].Registration < s.Rows[j].Registration
		})
		sheets = append(sheets, s)
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Group < sheets[j].Group })
	return sheets
}

// SheetName aplica as regras de nome de aba do Excel e evita repetição.
func SheetName(group string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(group))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Grupo"
	}
	name = truncate(name, maxSheetName)

	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}

// Render grava as abas num arquivo xlsx em memória.
func Render(sheets []Sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	first := f.GetSheetName(0)
	if len(sheets) == 0 {
		if err := f.SetSheetName(first, emptySheet); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(emptySheet, "A1", &[]interface{}{"Matrícula", "Funcionário", "Total"}); err != nil {
			return nil, err
		}
		return f.WriteToBuffer()
	}

	used := map[string]bool{}
	for i, s := range sheets {
		name := SheetName(s.Group, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, name, s, header); err != nil {
			return nil, fmt.Errorf("report: aba %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.WriteToBuffer()
}

func writeSheet(f *excelize.File, name string, s Sheet, headerStyle int) error {
	head := s.Header()
	if err := f.SetSheetRow(name, "A1", &head); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, r := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := s.values(r)
		if err := f.SetSheetRow(name, cell, &vals); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(name, "B", "B", 32); err != nil {
		return err
	}
	return f.SetPanes(name, &excelize.Panes{Freeze: true, XSplit: 2, YSplit: 1, TopLeftCell: "C2", ActivePane: "bottomRight"})
}
