package employee

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDelimitedDetectsSeparator(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"comma", "1001,Ana Souza,ana@x.com,11999,Caixa,Loja,Centro\n1002,Bruno,,,,,\n"},
		{"semicolon", "1001;Ana Souza;ana@x.com;11999;Caixa;Loja;Centro\n1002;Bruno;;;;;\n"},
		{"tab", "1001\tAna Souza\tana@x.com\t11999\tCaixa\tLoja\tCentro\n1002\tBruno\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseDelimited([]byte(tt.data))
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "1001", rows[0].RegistrationNumber)
			assert.Equal(t, "Ana Souza", rows[0].Name)
			assert.Equal(t, "Centro", rows[0].Distribuicao)
			assert.Equal(t, "Bruno", rows[1].Name)
			assert.Empty(t, rows[1].Email)
		})
	}
}

func TestParseDelimitedSkipsHeaderAndIncompleteRows(t *testing.T) {
	data := "\xef\xbb\xbfMatrícula;Nome;Email\n1001;Ana\n;Sem Matricula\n1003;\n1004;Carla;c@x.com;;;;;2020-01-02\n"
	rows, err := ParseDelimited([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1001", rows[0].RegistrationNumber)
	assert.Equal(t, "2020-01-02", rows[1].Admissao)
}

func TestParseDelimitedRejectsEmpty(t *testing.T) {
	_, err := ParseDelimited([]byte("  \n"))
	assert.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"matricula", "nome", "email"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"2001", "Diego", "d@x.com", "", "Estoquista"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"2002", ""}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ParseXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Diego", rows[0].Name)
	assert.Equal(t, "Estoquista", rows[0].Funcao)
}
