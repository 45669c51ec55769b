// Package report renders datasets and query results as console tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bankcap/banketl/internal/model"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetOutputMirror(w)
	return t
}

// Dataset prints the enriched dataset with its row index.
func Dataset(w io.Writer, ds model.Dataset) {
	t := newTable(w)
	header := table.Row{""}
	for _, c := range model.Columns() {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, rec := range ds {
		row := table.Row{i, rec.Name}
		for _, amt := range rec.FormattedAmounts() {
			row = append(row, amt)
		}
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.Render()
}

// Rows prints an arbitrary query result.
func Rows(w io.Writer, columns []string, rows [][]any) {
	t := newTable(w)
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = FormatValue(v)
		}
		t.AppendRow(row)
	}
	t.Render()
}

// FormatValue renders a driver value. Floats use the shortest representation
// that round-trips and always keep a decimal point (Inf and NaN excepted).
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if strings.ContainsAny(s, ".IN") {
			return s
		}
		return s + ".0"
	case int64:
		return strconv.FormatInt(x, 10)
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
