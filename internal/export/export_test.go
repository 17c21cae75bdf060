package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/export"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_QuotesEveryCell(t *testing.T) {
	out := export.CSV([]export.Record{
		{{Key: "A", Value: "x;y"}, {Key: "B", Value: nil}},
	})

	s := string(out)
	require.True(t, strings.HasPrefix(s, "\ufeff"))
	lines := strings.Split(strings.TrimPrefix(s, "\ufeff"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"A";"B"`, lines[0])
	assert.Equal(t, `"x;y";""`, lines[1])
}

func TestCSV_EscapesQuotesAndNewlines(t *testing.T) {
	out := export.CSV([]export.Record{
		{{Key: "Descricao", Value: "Honorários \"êxito\"\r\nparcela 1\rfim"}, {Key: "Valor", Value: decimal.RequireFromString("1500.50")}},
		{{Key: "Descricao", Value: "Custas"}},
	})

	body := strings.TrimPrefix(string(out), "\ufeff")
	assert.NotContains(t, body, "\r")
	assert.Contains(t, body, `"Honorários ""êxito""`+"\nparcela 1\nfim"+`";"1500.5"`)
	assert.True(t, strings.HasSuffix(body, `"Custas";""`))
}

func TestCSV_Empty(t *testing.T) {
	assert.Nil(t, export.CSV(nil))
}

func TestBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", export.BRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "-R$ 10,00", export.BRL(decimal.NewFromInt(-10)))
}

func TestPDF_RendersDocument(t *testing.T) {
	out, err := export.PDF(export.Document{
		Title: "Relatório de Receitas",
		Firm:  &domain.FirmSettings{Name: "Silva & Souza Advogados", CNPJ: "00.000.000/0001-00"},
		Records: []export.Record{
			{{Key: "Data", Value: "01/03/2024"}, {Key: "Descricao", Value: "Honorários"}, {Key: "Valor", Value: "R$ 1.500,00"}},
		},
		Summary: []string{"Total: R$ 1.500,00"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
