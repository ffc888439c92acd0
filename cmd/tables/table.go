package tables

// Row maps column name to cell value. Blank cells are empty strings.
type Row map[string]string

// Table is an ordered sequence of rows sharing a column set. Column
// order is the order the columns appeared in the source file; row
// order is source-file order. Tables are built once by the reader and
// treated as read-only afterwards.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Select returns a copy of the table narrowed to the given columns, in
// the given order. Columns the table does not have are skipped. Row
// values are shared with the receiver, not copied.
func (t *Table) Select(columns []string) *Table {
	kept := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) {
			kept = append(kept, c)
		}
	}

	narrowed := &Table{
		Columns: kept,
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		nr := make(Row, len(kept))
		for _, c := range kept {
			nr[c] = row[c]
		}
		narrowed.Rows[i] = nr
	}
	return narrowed
}
