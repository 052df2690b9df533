package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. A positive wrap soft-wraps cells wider
// than that many characters.
type column struct {
	header string
	align  text.Align
	wrap   int
}

var (
	planColumns = []column{
		{header: "#", align: text.AlignRight},
		{header: "Source", align: text.AlignLeft},
		{header: "Target", align: text.AlignLeft},
	}
	outcomeColumns = []column{
		{header: "Directory", align: text.AlignLeft},
		{header: "Status", align: text.AlignLeft},
		{header: "Format", align: text.AlignLeft},
		{header: "Pages", align: text.AlignRight},
		{header: "Source", align: text.AlignRight},
		{header: "Archive", align: text.AlignRight},
		{header: "Detail", align: text.AlignLeft, wrap: 60},
	}
	historyColumns = []column{
		{header: "ID", align: text.AlignRight},
		{header: "Finished", align: text.AlignLeft},
		{header: "Directory", align: text.AlignLeft},
		{header: "Status", align: text.AlignLeft},
		{header: "Format", align: text.AlignLeft},
		{header: "Pages", align: text.AlignRight},
		{header: "Archive", align: text.AlignRight},
		{header: "Took", align: text.AlignRight},
		{header: "Detail", align: text.AlignLeft, wrap: 60},
	}
	memberColumns = []column{
		{header: "Name", align: text.AlignLeft},
		{header: "Method", align: text.AlignLeft},
		{header: "Size", align: text.AlignRight},
		{header: "Stored", align: text.AlignRight},
		{header: "CRC32", align: text.AlignLeft},
	}
)

// renderTable draws rows under columns in the rounded style. A non-nil
// footer is drawn below the rows. Short rows are padded with empty cells.
func renderTable(columns []column, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(columns, func(i int) string { return columns[i].header }))
	for _, row := range rows {
		tw.AppendRow(toRow(columns, cell(row)))
	}
	if footer != nil {
		tw.AppendFooter(toRow(columns, cell(footer)))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       c.align,
			AlignHeader: text.AlignLeft,
			AlignFooter: c.align,
		}
		if c.wrap > 0 {
			configs[i].WidthMax = c.wrap
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(columns []column, value func(int) string) table.Row {
	row := make(table.Row, len(columns))
	for i := range columns {
		row[i] = value(i)
	}
	return row
}

func cell(values []string) func(int) string {
	return func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
}

// writeJSON encodes v as indented JSON. Paths keep their literal characters.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
