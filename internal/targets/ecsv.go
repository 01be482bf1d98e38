// internal/targets/ecsv.go
package targets

import (
	"pfs-target-uploader/internal/ecsv"
)

// ecsvDatatype maps the logical column kinds to ECSV datatype names.
func ecsvDatatype(name string) string {
	switch Datatype[name] {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	default:
		return "string"
	}
}

// ToTable converts a target list to an ECSV table, preserving column order
// and carrying meta through.
func (l *List) ToTable() *ecsv.Table {
	cols := make([]ecsv.Column, len(l.Columns))
	for i, name := range l.Columns {
		dt := "string"
		if _, known := Datatype[name]; known {
			dt = ecsvDatatype(name)
		}
		cols[i] = ecsv.Column{Name: name, Datatype: dt}
	}
	rows := make([][]string, len(l.Rows))
	for i, row := range l.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return &ecsv.Table{Columns: cols, Rows: rows, Meta: l.Meta}
}

// FromTable converts an ECSV table back to a target list.
func FromTable(t *ecsv.Table) *List {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.Name
	}
	list := &List{Columns: columns, Rows: t.Rows, Meta: t.Meta}
	for _, c := range columns {
		if _, known := Datatype[c]; !known {
			list.Unknown = append(list.Unknown, c)
		}
	}
	return list
}
