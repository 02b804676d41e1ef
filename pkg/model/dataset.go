// pkg/model/dataset.go
package model

// Row is one record keyed by source column name. Cells are raw strings as
// read from the input; typed interpretation happens in the cleaning pipeline.
type Row map[string]string

// Dataset is a table of rows with a stable column order. The original
// upload is never mutated in place: the cleaning pipeline and fix engine
// always operate on a copy.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// NewDataset builds an empty dataset with the given column order.
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols, Rows: nil}
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset(d.Columns)
	out.Rows = make([]Row, len(d.Rows))
	for i, row := range d.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Append adds a row, filling absent columns with the missing marker.
func (d *Dataset) Append(row Row) {
	cp := make(Row, len(d.Columns))
	for _, col := range d.Columns {
		v, ok := row[col]
		if !ok {
			v = Missing
		}
		cp[col] = v
	}
	d.Rows = append(d.Rows, cp)
}

// Get returns the cell at (row, column), or the missing marker when the
// row holds no value for that column.
func (d *Dataset) Get(row int, column string) string {
	if row < 0 || row >= len(d.Rows) {
		return Missing
	}
	v, ok := d.Rows[row][column]
	if !ok {
		return Missing
	}
	return v
}

// Set writes the cell at (row, column). Out-of-range rows are ignored.
func (d *Dataset) Set(row int, column, value string) {
	if row < 0 || row >= len(d.Rows) {
		return
	}
	d.Rows[row][column] = value
}

// Column returns all values of one column in row order.
func (d *Dataset) Column(column string) []string {
	out := make([]string, len(d.Rows))
	for i := range d.Rows {
		out[i] = d.Get(i, column)
	}
	return out
}

// Equal reports whether two datasets hold identical columns and cells.
func (d *Dataset) Equal(other *Dataset) bool {
	if other == nil || len(d.Columns) != len(other.Columns) || len(d.Rows) != len(other.Rows) {
		return false
	}
	for i, col := range d.Columns {
		if other.Columns[i] != col {
			return false
		}
	}
	for i := range d.Rows {
		for _, col := range d.Columns {
			if d.Get(i, col) != other.Get(i, col) {
				return false
			}
		}
	}
	return true
}
