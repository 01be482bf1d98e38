// internal/targets/summary.go
package targets

import (
	"strconv"

	"pfs-target-uploader/internal/ecsv"
)

// SummaryRow aggregates one priority bucket across both resolution modes.
// FH is fiber-hours, sum(exptime)/3600.
type SummaryRow struct {
	Priority string  `json:"priority"`
	NL       int     `json:"n_l"`
	TexpL    float64 `json:"texp_l_fh"`
	NM       int     `json:"n_m"`
	TexpM    float64 `json:"texp_m_fh"`
}

// Summarize groups the list by priority 0-9 and resolution, returning one
// row per priority plus a total row.
func Summarize(l *List) []SummaryRow {
	const nPriority = 10
	nL := make([]int, nPriority)
	nM := make([]int, nPriority)
	expL := make([]float64, nPriority)
	expM := make([]float64, nPriority)

	for i := 0; i < l.Len(); i++ {
		p, err := strconv.Atoi(l.Cell(i, "priority"))
		if err != nil || p < 0 || p >= nPriority {
			continue
		}
		exptime, err := l.Float(i, "exptime")
		if err != nil {
			continue
		}
		switch l.Cell(i, "resolution") {
		case "L":
			nL[p]++
			expL[p] += exptime
		case "M":
			nM[p]++
			expM[p] += exptime
		}
	}

	rows := make([]SummaryRow, 0, nPriority+1)
	total := SummaryRow{Priority: "total"}
	for p := 0; p < nPriority; p++ {
		row := SummaryRow{
			Priority: strconv.Itoa(p),
			NL:       nL[p],
			TexpL:    expL[p] / 3600.0,
			NM:       nM[p],
			TexpM:    expM[p] / 3600.0,
		}
		total.NL += row.NL
		total.TexpL += row.TexpL
		total.NM += row.NM
		total.TexpM += row.TexpM
		rows = append(rows, row)
	}
	return append(rows, total)
}

// SummaryTable renders the summary rows as an ECSV table.
func SummaryTable(rows []SummaryRow, meta map[string]interface{}) *ecsv.Table {
	t := &ecsv.Table{
		Columns: []ecsv.Column{
			{Name: "priority", Datatype: "string"},
			{Name: "N_L", Datatype: "int64"},
			{Name: "Texp_L (FH)", Datatype: "float64"},
			{Name: "N_M", Datatype: "int64"},
			{Name: "Texp_M (FH)", Datatype: "float64"},
		},
		Meta: meta,
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Priority,
			strconv.Itoa(r.NL),
			strconv.FormatFloat(r.TexpL, 'f', -1, 64),
			strconv.Itoa(r.NM),
			strconv.FormatFloat(r.TexpM, 'f', -1, 64),
		})
	}
	return t
}
