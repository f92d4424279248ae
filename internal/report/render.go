package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Format selects the output rendering for a report table.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name coming from CLI flags.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatTable, FormatCSV, FormatJSON:
		return Format(value), nil
	}
	return "", fmt.Errorf("unknown output format %q, expected table, csv, or json", value)
}

// Render writes the table to w in the requested format.
func Render(w io.Writer, table Table, format Format) error {
	switch format {
	case FormatCSV:
		return renderCSV(w, table)
	case FormatJSON:
		return renderJSON(w, table)
	default:
		return renderTable(w, table)
	}
}

func renderTable(w io.Writer, table Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for i, column := range table.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, column)
	}
	fmt.Fprintln(tw)

	for _, row := range table.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

func renderCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, table Table) error {
	records := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(map[string]string, len(table.Columns))
		for i, column := range table.Columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(records)
}
