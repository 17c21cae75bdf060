package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorPrimary = &props.Color{Red: 24, Green: 24, Blue: 27}
	colorGray    = &props.Color{Red: 113, Green: 113, Blue: 122}
)

// Document is a printable report.
type Document struct {
	Title       string
	Firm        *domain.FirmSettings
	Filters     string
	Records     []Record
	Summary     []string
	GeneratedAt time.Time
}

// PDF renders the document as an A4 page set: firm header, title, filter
// line, a table with one column per record field, and summary lines.
func PDF(doc Document) ([]byte, error) {
	author := "LexFlow"
	if doc.Firm != nil && doc.Firm.Name != "" {
		author = doc.Firm.Name
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(doc.Title, true).
		WithAuthor(author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, author))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if doc.Filters != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New(doc.Filters, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)))
	}

	if len(doc.Records) > 0 {
		keys := doc.Records[0].Keys()
		widths := columnWidths(len(keys))
		m.AddRows(tableHeaderRow(keys, widths))
		for _, r := range doc.Records {
			m.AddRows(tableRow(r, keys, widths))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, s := range doc.Summary {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1}),
		)))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return out.GetBytes(), nil
}

func headerRow(doc Document, firmName string) core.Row {
	details := []string{}
	if f := doc.Firm; f != nil {
		if f.CNPJ != "" {
			details = append(details, "CNPJ: "+f.CNPJ)
		}
		if f.Phone != "" {
			details = append(details, "Tel: "+f.Phone)
		}
		if f.Email != "" {
			details = append(details, f.Email)
		}
	}
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(firmName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(strings.Join(details, "   |   "), props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(doc.Title, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1}),
			text.New("Gerado em "+generated.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func tableHeaderRow(keys []string, widths []int) core.Row {
	cols := make([]core.Col, len(keys))
	for i, k := range keys {
		cols[i] = col.New(widths[i]).Add(text.New(k, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 2, Left: 1, Right: 1, Color: colorPrimary,
		}))
	}
	return row.New(8).Add(cols...)
}

func tableRow(r Record, keys []string, widths []int) core.Row {
	cols := make([]core.Col, len(keys))
	for i, k := range keys {
		v, _ := r.Get(k)
		cols[i] = col.New(widths[i]).Add(text.New(FormatCell(v), props.Text{
			Size: 8, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(cols...)
}

// columnWidths spreads the 12-unit grid over n columns, wider first.
func columnWidths(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > 12 {
		n = 12
	}
	widths := make([]int, n)
	base, extra := 12/n, 12%n
	for i := range widths {
		widths[i] = base
		if i < extra {
			widths[i]++
		}
	}
	return widths
}
