package report

// Table is a generic query result: ordered columns plus stringified rows.
// Keeping the surface untyped lets one renderer serve every report query.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
