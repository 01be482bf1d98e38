// internal/planner/assess.go
package planner

import (
	"math"
)

// Assessment is the human-facing judgement of a simulation result shown
// before submission.
type Assessment struct {
	// RequestTimeHours is the total requested observing time including
	// overhead, rounded up to 0.1 h.
	RequestTimeHours float64  `json:"request_time_hours"`
	Status           int      `json:"status"`
	ExceedsNormalCap bool     `json:"exceeds_normal_cap"`
	Truncated        bool     `json:"truncated"`
	OK               bool     `json:"ok"`
	Warnings         []string `json:"warnings,omitempty"`
	Note             string   `json:"note,omitempty"`
}

const (
	warnOverCap = "The total requested time exceeds 35 hours (maximum for a normal program). " +
		"Please make sure to adjust it to your requirement before proceeding to the submission. " +
		"Note that targets observable in the input observing period are considered."
	warnTruncated = "Calculation stops because time (15 min) is running out. " +
		"If you would get the complete outputs, please modify the input list or consult with the observatory."
	noteSuccess = "The total requested time is reasonable for normal program. " +
		"Note that targets observable in the input period are considered."
)

// RoundRequestTime rounds a requested observing time up to 0.1 h.
func RoundRequestTime(hours float64) float64 {
	return math.Ceil(hours*10.0) / 10.0
}

// Assess evaluates a simulation result against the normal-program cap and
// the solver status.
func Assess(r *Result) Assessment {
	var rot float64
	if total := r.TotalRow(); total != nil {
		rot = RoundRequestTime(total.RequestTimeHours)
	}

	a := Assessment{
		RequestTimeHours: rot,
		Status:           r.Status,
		ExceedsNormalCap: rot > MaxRequestTimeNormal,
		Truncated:        r.Status == StatusTruncated,
	}

	if a.ExceedsNormalCap {
		a.Warnings = append(a.Warnings, warnOverCap)
	}
	if a.Truncated {
		a.Warnings = append(a.Warnings, warnTruncated)
	}
	if len(a.Warnings) == 0 {
		a.OK = true
		a.Note = noteSuccess
	}
	return a
}
