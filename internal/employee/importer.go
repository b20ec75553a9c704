package employee

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"pedidos-backend/internal/apperror"

	"github.com/xuri/excelize/v2"
)

// Input é uma linha de funcionário vinda de JSON, CSV ou planilha.
type Input struct {
	RegistrationNumber string `json:"registration_number"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Whatsapp           string `json:"whatsapp"`
	Funcao             string `json:"funcao"`
	Setor              string `json:"setor"`
	Distribuicao       string `json:"distribuicao"`
	Admissao           string `json:"admissao"`
}

func (in Input) normalized() Input {
	return Input{
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		Name:               strings.TrimSpace(in.Name),
		Email:              strings.TrimSpace(in.Email),
		Whatsapp:           strings.TrimSpace(in.Whatsapp),
		Funcao:             strings.TrimSpace(in.Funcao),
		Setor:              strings.TrimSpace(in.Setor),
		Distribuicao:       strings.TrimSpace(in.Distribuicao),
		Admissao:           strings.TrimSpace(in.Admissao),
	}
}

// Colunas: matrícula, nome, email, whatsapp, função, setor, distribuição, admissão (opcional).
var headerWords = map[string]bool{
	"matricula":           true,
	"registration_number": true,
	"registro":            true,
	"mat":                 true,
	"nome":                true,
	"name":                true,
}

// ParseDelimited lê texto separado por vírgula, ponto e vírgula ou tab.
func ParseDelimited(data []byte) ([]Input, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperror.Validation("Arquivo vazio")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("Arquivo inválido: %v", err))
		}
		rows = append(rows, rec)
	}
	return rowsToInputs(rows), nil
}

// ParseXLSX lê a primeira aba da planilha.
func ParseXLSX(r io.Reader) ([]Input, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.Validation("Planilha não pôde ser lida")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.Validation("Planilha sem abas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.Validation("Aba não pôde ser lida")
	}
	return rowsToInputs(rows), nil
}

func rowsToInputs(rows [][]string) []Input {
	out := make([]Input, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && headerWords[normalizeHeader(row[0])] {
			continue
		}
		in := Input{
			RegistrationNumber: cell(row, 0),
			Name:               cell(row, 1),
			Email:              cell(row, 2),
			Whatsapp:           cell(row, 3),
			Funcao:             cell(row, 4),
			Setor:              cell(row, 5),
			Distribuicao:       cell(row, 6),
			Admissao:           cell(row, 7),
		}
		if in.RegistrationNumber == "" || in.Name == "" {
			continue
		}
		out = append(out, in)
	}
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// detectDelimiter escolhe o separador mais frequente na primeira linha.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{';', '\t', ','} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// normalizeHeader remove acentos e caixa: "Matrícula" -> "matricula".
func normalizeHeader(s string) string {
	replacements := map[rune]string{
		'á': "a", 'à': "a", 'â': "a", 'ã': "a",
		'é': "e", 'ê': "e",
		'í': "i",
		'ó': "o", 'ô': "o", 'õ': "o",
		'ú': "u",
		'ç': "c",
	}
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if rep, ok := replacements[r]; ok {
			b.WriteString(rep)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
