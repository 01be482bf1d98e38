// internal/targets/model.go

// Package targets models uploaded target lists and validates them before
// they are handed to the pointing planner.
package targets

import (
	"strconv"
)

// Required columns of an uploaded target list.
var RequiredKeys = []string{
	"obj_id",
	"ob_code",
	"ra",
	"dec",
	"equinox",
	"priority",
	"exptime",
	"resolution",
}

// Optional columns. Filters must be in the known filter-name table; fluxes
// can be fiber, psf, total, etc.
var OptionalKeys = []string{
	"pmra",
	"pmdec",
	"parallax",
	"tract",
	"patch",
	"filter_g",
	"filter_r",
	"filter_i",
	"filter_z",
	"filter_y",
	"filter_j",
	"flux_g",
	"flux_r",
	"flux_i",
	"flux_z",
	"flux_y",
	"flux_j",
	"flux_error_g",
	"flux_error_r",
	"flux_error_i",
	"flux_error_z",
	"flux_error_y",
	"flux_error_j",
}

// FluxKeys are the columns inspected by the flux validation stage.
var FluxKeys = []string{
	"flux_g", "flux_r", "flux_i", "flux_z", "flux_y", "flux_j",
}

// FilterNames lists the filters registered in the target database.
var FilterNames = []string{
	"g_hsc",
	"r_old_hsc",
	"r2_hsc",
	"i_old_hsc",
	"i2_hsc",
	"z_hsc",
	"y_hsc",
	"g_ps1",
	"r_ps1",
	"i_ps1",
	"z_ps1",
	"y_ps1",
	"bp_gaia",
	"rp_gaia",
	"g_gaia",
	"u_sdss",
	"g_sdss",
	"r_sdss",
	"i_sdss",
	"z_sdss",
}

// Kind is the logical datatype of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Datatype maps known column names to their logical type. Integer columns
// are coerced strictly on load.
var Datatype = map[string]Kind{
	"ob_code":      KindString,
	"obj_id":       KindInt,
	"ra":           KindFloat,
	"dec":          KindFloat,
	"equinox":      KindString,
	"exptime":      KindFloat,
	"priority":     KindInt,
	"resolution":   KindString,
	"pmra":         KindFloat,
	"pmdec":        KindFloat,
	"parallax":     KindFloat,
	"tract":        KindInt,
	"patch":        KindInt,
	"filter_g":     KindString,
	"filter_r":     KindString,
	"filter_i":     KindString,
	"filter_z":     KindString,
	"filter_y":     KindString,
	"filter_j":     KindString,
	"flux_g":       KindFloat,
	"flux_r":       KindFloat,
	"flux_i":       KindFloat,
	"flux_z":       KindFloat,
	"flux_y":       KindFloat,
	"flux_j":       KindFloat,
	"flux_error_g": KindFloat,
	"flux_error_r": KindFloat,
	"flux_error_i": KindFloat,
	"flux_error_z": KindFloat,
	"flux_error_y": KindFloat,
	"flux_error_j": KindFloat,
}

// Target is a typed view of one row, available once the required columns
// validate.
type Target struct {
	ObjID      int64   `json:"obj_id"`
	ObCode     string  `json:"ob_code"`
	RA         float64 `json:"ra"`
	Dec        float64 `json:"dec"`
	Equinox    string  `json:"equinox"`
	Priority   int     `json:"priority"`
	Exptime    float64 `json:"exptime"` // seconds
	Resolution string  `json:"resolution"`
}

// List is a parsed target list. Cells are kept as normalized strings so
// that optional and unknown columns survive untouched.
type List struct {
	Columns []string
	Rows    [][]string
	// Unknown holds input columns outside the required/optional tables.
	Unknown []string
	Meta    map[string]interface{}
}

// Len returns the number of data rows.
func (l *List) Len() int {
	return len(l.Rows)
}

// HasColumn reports whether the named column is present.
func (l *List) HasColumn(name string) bool {
	return l.columnIndex(name) >= 0
}

func (l *List) columnIndex(name string) int {
	for i, c := range l.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the raw cells of the named column, or nil.
func (l *List) Column(name string) []string {
	j := l.columnIndex(name)
	if j < 0 {
		return nil
	}
	out := make([]string, len(l.Rows))
	for i, row := range l.Rows {
		out[i] = row[j]
	}
	return out
}

// Cell returns the raw value at row i of the named column, or "".
func (l *List) Cell(i int, name string) string {
	j := l.columnIndex(name)
	if j < 0 || i < 0 || i >= len(l.Rows) {
		return ""
	}
	return l.Rows[i][j]
}

// Float parses the named cell of row i as float64.
func (l *List) Float(i int, name string) (float64, error) {
	return strconv.ParseFloat(l.Cell(i, name), 64)
}

// Targets builds the typed row view. It assumes the required columns are
// present and their values already validated.
func (l *List) Targets() ([]Target, error) {
	out := make([]Target, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		objID, err := strconv.ParseInt(l.Cell(i, "obj_id"), 10, 64)
		if err != nil {
			return nil, err
		}
		priority, err := strconv.Atoi(l.Cell(i, "priority"))
		if err != nil {
			return nil, err
		}
		ra, err := l.Float(i, "ra")
		if err != nil {
			return nil, err
		}
		dec, err := l.Float(i, "dec")
		if err != nil {
			return nil, err
		}
		exptime, err := l.Float(i, "exptime")
		if err != nil {
			return nil, err
		}
		out = append(out, Target{
			ObjID:      objID,
			ObCode:     l.Cell(i, "ob_code"),
			RA:         ra,
			Dec:        dec,
			Equinox:    l.Cell(i, "equinox"),
			Priority:   priority,
			Exptime:    exptime,
			Resolution: l.Cell(i, "resolution"),
		})
	}
	return out, nil
}

// TotalFiberHours returns sum(exptime)/3600 over all rows. Rows whose
// exptime cell does not parse contribute nothing.
func (l *List) TotalFiberHours() float64 {
	var sum float64
	for i := 0; i < l.Len(); i++ {
		if v, err := l.Float(i, "exptime"); err == nil {
			sum += v
		}
	}
	return sum / 3600.0
}
