// Package export renders report rows as CSV spreadsheets and PDF documents.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field is one named cell of a record. Nil values render as empty cells.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered row. Column order is the field order.
type Record []Field

// Keys returns the column names of the record.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

const (
	csvBOM       = "\ufeff"
	csvDelimiter = ";"
)

// CSV renders records as a spreadsheet-friendly file: UTF-8 BOM, `;`
// delimiter, every cell double-quoted with embedded quotes doubled, line
// breaks inside cells normalised to LF, and rows joined by LF. The header
// comes from the first record; missing keys in later records are empty.
func CSV(records []Record) []byte {
	if len(records) == 0 {
		return nil
	}
	headers := records[0].Keys()

	var buf bytes.Buffer
	buf.WriteString(csvBOM)
	writeLine(&buf, headers)
	for _, r := range records {
		cells := make([]string, len(headers))
		for i, h := range headers {
			v, _ := r.Get(h)
			cells[i] = FormatCell(v)
		}
		buf.WriteString("\n")
		writeLine(&buf, cells)
	}
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			buf.WriteString(csvDelimiter)
		}
		buf.WriteString(quote(c))
	}
}

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func quote(s string) string {
	s = newlineNormalizer.Replace(s)
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatCell renders a value for a CSV cell.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
