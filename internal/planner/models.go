// internal/planner/models.go

// Package planner talks to the external pointing-solver service and
// interprets its results. The fiber-assignment and visibility math lives
// entirely on the other side of the wire.
package planner

import (
	"strconv"

	"pfs-target-uploader/internal/ecsv"
)

// Solver run status codes as reported by the planner service.
const (
	// StatusComplete means the solver finished within its time budget.
	StatusComplete = 999
	// StatusTruncated means the solver stopped early because the time
	// budget (15 minutes by default) ran out.
	StatusTruncated = 1
)

const (
	// MaxRequestTimeNormal is the maximum requested observing time in
	// hours for an openuse normal program.
	MaxRequestTimeNormal = 35.0
	// PointingExposureMinutes is the exposure time of one pointing.
	PointingExposureMinutes = 15
)

// DefaultWeights are the solver's optimization weights.
var DefaultWeights = []float64{4.02, 0.01, 0.01}

// PPC is one PFS pointing center produced by the simulation.
type PPC struct {
	Code               string  `json:"ppc_code"`
	RA                 float64 `json:"ppc_ra"`
	Dec                float64 `json:"ppc_dec"`
	PA                 float64 `json:"ppc_pa"`
	Priority           int     `json:"ppc_priority"`
	FiberUsageFraction float64 `json:"fiber_usage_fraction"`
	Resolution         string  `json:"ppc_resolution"`
}

// ResolutionSummary is one row of the pointing summary (psl) table. The
// final row aggregates both resolution modes under Resolution "total".
type ResolutionSummary struct {
	Resolution           string             `json:"resolution"`
	NPPC                 int                `json:"n_ppc"`
	TexpHours            float64            `json:"texp_h"`
	TexpFiberHours       float64            `json:"texp_fiberhour"`
	RequestTimeHours     float64            `json:"request_time_h"`
	UsedFiberFraction    float64            `json:"used_fiber_fraction"`
	FracPPCBelow30       float64            `json:"frac_ppc_below_30"`
	CompletionAll        float64            `json:"completion_all"`
	CompletionByPriority map[string]float64 `json:"completion_by_priority,omitempty"`
}

// Result is the full simulation output.
type Result struct {
	Status  int                 `json:"status"`
	PPCs    []PPC               `json:"ppc"`
	Summary []ResolutionSummary `json:"psl"`
}

// TotalRow returns the aggregate summary row, or nil when the summary is
// empty.
func (r *Result) TotalRow() *ResolutionSummary {
	if len(r.Summary) == 0 {
		return nil
	}
	return &r.Summary[len(r.Summary)-1]
}

var pslColumns = []ecsv.Column{
	{Name: "resolution", Datatype: "string"},
	{Name: "N_ppc", Datatype: "int64"},
	{Name: "Texp (h)", Datatype: "float64"},
	{Name: "Texp (fiberhour)", Datatype: "float64"},
	{Name: "Request time (h)", Datatype: "float64"},
	{Name: "Used fiber fraction (%)", Datatype: "float64"},
	{Name: "Fraction of PPC < 30% (%)", Datatype: "float64"},
	{Name: "P_all", Datatype: "float64"},
	{Name: "P_0", Datatype: "float64"},
}

var ppcColumns = []ecsv.Column{
	{Name: "ppc_code", Datatype: "string"},
	{Name: "ppc_ra", Datatype: "float64"},
	{Name: "ppc_dec", Datatype: "float64"},
	{Name: "ppc_pa", Datatype: "float64"},
	{Name: "ppc_priority", Datatype: "int64"},
	{Name: "Fiber usage fraction (%)", Datatype: "float64"},
	{Name: "ppc_resolution", Datatype: "string"},
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PSLTable renders the summary rows as an ECSV table.
func PSLTable(rows []ResolutionSummary, meta map[string]interface{}) *ecsv.Table {
	t := &ecsv.Table{Columns: pslColumns, Meta: meta}
	for _, r := range rows {
		p0 := r.CompletionByPriority["0"]
		t.Rows = append(t.Rows, []string{
			r.Resolution,
			strconv.Itoa(r.NPPC),
			ftoa(r.TexpHours),
			ftoa(r.TexpFiberHours),
			ftoa(r.RequestTimeHours),
			ftoa(r.UsedFiberFraction),
			ftoa(r.FracPPCBelow30),
			ftoa(r.CompletionAll),
			ftoa(p0),
		})
	}
	return t
}

// PPCTable renders the pointing list as an ECSV table.
func PPCTable(ppcs []PPC, meta map[string]interface{}) *ecsv.Table {
	t := &ecsv.Table{Columns: ppcColumns, Meta: meta}
	for _, p := range ppcs {
		t.Rows = append(t.Rows, []string{
			p.Code,
			ftoa(p.RA),
			ftoa(p.Dec),
			ftoa(p.PA),
			strconv.Itoa(p.Priority),
			ftoa(p.FiberUsageFraction),
			p.Resolution,
		})
	}
	return t
}

// PlaceholderPSLTable returns the single-row empty psl table written when
// the simulation was skipped.
func PlaceholderPSLTable(meta map[string]interface{}) *ecsv.Table {
	t := &ecsv.Table{Columns: pslColumns, Meta: meta}
	t.Rows = append(t.Rows, []string{"", "0", "nan", "nan", "nan", "nan", "nan", "nan", "nan"})
	return t
}

// PlaceholderPPCTable returns the single-row empty ppc table written when
// the simulation was skipped.
func PlaceholderPPCTable(meta map[string]interface{}) *ecsv.Table {
	t := &ecsv.Table{Columns: ppcColumns, Meta: meta}
	t.Rows = append(t.Rows, []string{"", "nan", "nan", "nan", "-1", "nan", ""})
	return t
}
