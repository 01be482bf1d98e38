// internal/targets/validate.go
package targets

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Allow only [A-Za-z0-9] and _+-. for string values.
var stringPattern = regexp.MustCompile(`^[A-Za-z0-9_+\-\.]+$`)

// ValidationError is one human-readable finding of the pipeline.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// KeyCheck is the column-presence stage result.
type KeyCheck struct {
	Status      bool     `json:"status"`
	DescSuccess []string `json:"desc_success,omitempty"`
	DescError   []string `json:"desc_error,omitempty"`
	DescWarning []string `json:"desc_warning,omitempty"`
}

// StringCheck is the string-pattern stage result.
type StringCheck struct {
	Status          bool              `json:"status"`
	StatusOptional  bool              `json:"status_optional"`
	ColumnStatus    map[string]bool   `json:"column_status"`
	ColumnSuccess   map[string][]bool `json:"column_success"`
	SuccessRequired []bool            `json:"success_required"`
	SuccessOptional []bool            `json:"success_optional"`
}

// ValueCheck is the value-range stage result.
type ValueCheck struct {
	Status        bool              `json:"status"`
	ColumnStatus  map[string]bool   `json:"column_status"`
	ColumnSuccess map[string][]bool `json:"column_success"`
	Success       []bool            `json:"success"`
}

// FluxCheck is the flux-presence stage result.
type FluxCheck struct {
	Status      bool   `json:"status"`
	Success     []bool `json:"success"`
	Description string `json:"description"`
}

// UniqueCheck is the ob_code uniqueness stage result.
type UniqueCheck struct {
	Status      bool   `json:"status"`
	Flags       []bool `json:"flags,omitempty"`
	Description string `json:"description"`
}

// VisibilityCheck carries the per-target observability flags returned by
// the planner service. Computing them is not this package's concern.
type VisibilityCheck struct {
	Status      bool   `json:"status"`
	Success     []bool `json:"success"`
	Description string `json:"description"`
}

// Result is the full staged validation report. A nil stage means the stage
// was skipped because an earlier one failed.
type Result struct {
	Status     bool             `json:"status"`
	Required   *KeyCheck        `json:"required_keys,omitempty"`
	Optional   *KeyCheck        `json:"optional_keys,omitempty"`
	Strings    *StringCheck     `json:"str,omitempty"`
	Values     *ValueCheck      `json:"values,omitempty"`
	Flux       *FluxCheck       `json:"flux,omitempty"`
	Unique     *UniqueCheck     `json:"unique,omitempty"`
	Visibility *VisibilityCheck `json:"visibility,omitempty"`
}

// CheckKeys verifies required column presence and reports optional columns.
func CheckKeys(l *List) (*KeyCheck, *KeyCheck) {
	required := &KeyCheck{Status: true}
	for _, k := range RequiredKeys {
		if l.HasColumn(k) {
			required.DescSuccess = append(required.DescSuccess,
				fmt.Sprintf("Required key `%s` is found", k))
		} else {
			required.Status = false
			required.DescError = append(required.DescError,
				fmt.Sprintf("Required key `%s` is missing", k))
		}
	}

	optional := &KeyCheck{Status: true}
	for _, k := range OptionalKeys {
		if l.HasColumn(k) {
			optional.DescSuccess = append(optional.DescSuccess,
				fmt.Sprintf("Optional key `%s` is found", k))
		} else {
			optional.Status = false
			optional.DescWarning = append(optional.DescWarning,
				fmt.Sprintf("Optional key `%s` is missing", k))
		}
	}
	return required, optional
}

// CheckStrings verifies every string-typed cell against the allowed
// character pattern. Required-column violations fail the stage; optional
// ones only clear StatusOptional.
func CheckStrings(l *List) *StringCheck {
	n := l.Len()
	res := &StringCheck{
		Status:          true,
		StatusOptional:  true,
		ColumnStatus:    make(map[string]bool),
		ColumnSuccess:   make(map[string][]bool),
		SuccessRequired: allTrue(n),
		SuccessOptional: allTrue(n),
	}

	check := func(keys []string, rowFlags []bool, stageStatus *bool) {
		for _, k := range keys {
			if !l.HasColumn(k) || Datatype[k] != KindString {
				continue
			}
			cells := l.Column(k)
			match := make([]bool, n)
			columnOK := true
			for i, c := range cells {
				match[i] = stringPattern.MatchString(c)
				if !match[i] {
					columnOK = false
					rowFlags[i] = false
				}
			}
			res.ColumnStatus[k] = columnOK
			res.ColumnSuccess[k] = match
			if !columnOK {
				*stageStatus = false
			}
		}
	}

	check(RequiredKeys, res.SuccessRequired, &res.Status)
	check(OptionalKeys, res.SuccessOptional, &res.StatusOptional)
	return res
}

// CheckValues verifies the required columns against their allowed ranges:
// ra in [0, 360], dec in [-90, 90], equinox "J"/"B" + float year, priority
// in [0, 9], exptime > 0, resolution "L" or "M".
func CheckValues(l *List) *ValueCheck {
	n := l.Len()
	res := &ValueCheck{
		Status:        true,
		ColumnStatus:  make(map[string]bool),
		ColumnSuccess: make(map[string][]bool),
		Success:       allTrue(n),
	}

	rowCheck := func(name string, ok func(i int) bool) {
		flags := make([]bool, n)
		columnOK := true
		for i := 0; i < n; i++ {
			flags[i] = ok(i)
			if !flags[i] {
				columnOK = false
				res.Success[i] = false
			}
		}
		res.ColumnStatus[name] = columnOK
		res.ColumnSuccess[name] = flags
		if !columnOK {
			res.Status = false
		}
	}

	rowCheck("ra", func(i int) bool {
		v, err := l.Float(i, "ra")
		return err == nil && v >= 0.0 && v <= 360.0
	})
	rowCheck("dec", func(i int) bool {
		v, err := l.Float(i, "dec")
		return err == nil && v >= -90.0 && v <= 90.0
	})
	rowCheck("equinox", func(i int) bool {
		return validEquinox(l.Cell(i, "equinox"))
	})
	rowCheck("priority", func(i int) bool {
		v, err := l.Float(i, "priority")
		return err == nil && v >= 0.0 && v <= 9.0
	})
	rowCheck("exptime", func(i int) bool {
		v, err := l.Float(i, "exptime")
		return err == nil && v > 0.0
	})
	rowCheck("resolution", func(i int) bool {
		r := l.Cell(i, "resolution")
		return r == "L" || r == "M"
	})

	return res
}

// validEquinox accepts a string starting with "J" or "B" whose remainder
// parses as a float. The year range is deliberately not checked.
func validEquinox(e string) bool {
	if len(e) < 2 {
		return false
	}
	if e[0] != 'J' && e[0] != 'B' {
		return false
	}
	_, err := strconv.ParseFloat(e[1:], 64)
	return err == nil
}

// CheckFlux verifies that every row carries at least one finite positive
// flux value among the flux columns.
func CheckFlux(l *List) *FluxCheck {
	n := l.Len()
	res := &FluxCheck{Status: true, Success: make([]bool, n)}

	present := make([]string, 0, len(FluxKeys))
	for _, k := range FluxKeys {
		if l.HasColumn(k) {
			present = append(present, k)
		}
	}

	for i := 0; i < n; i++ {
		for _, k := range present {
			v, err := l.Float(i, k)
			if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 {
				res.Success[i] = true
				break
			}
		}
		if !res.Success[i] {
			res.Status = false
		}
	}

	if res.Status {
		res.Description = "All rows have at least one flux value."
	} else {
		res.Description = "Rows without any flux value detected. At least one flux is required per target."
	}
	return res
}

// CheckUnique verifies that all ob_code values are unique. Every row of a
// duplicated code is flagged.
func CheckUnique(l *List) *UniqueCheck {
	if l == nil || l.Len() == 0 {
		return &UniqueCheck{
			Status:      false,
			Description: "Empty data detected (maybe failure in loading the inputs)",
		}
	}

	codes := l.Column("ob_code")
	counts := make(map[string]int, len(codes))
	for _, c := range codes {
		counts[c]++
	}

	flags := make([]bool, len(codes))
	hasDup := false
	for i, c := range codes {
		if counts[c] > 1 {
			flags[i] = true
			hasDup = true
		}
	}

	if hasDup {
		return &UniqueCheck{
			Status:      false,
			Flags:       flags,
			Description: "Duplicate 'ob_code' found. 'ob_code' must be unique.",
		}
	}
	return &UniqueCheck{
		Status:      true,
		Flags:       flags,
		Description: "All 'ob_code' entries are unique.",
	}
}

// Validate runs the stages in order, stopping at the first failure. Later
// stage results stay nil when skipped.
func Validate(l *List) *Result {
	res := &Result{}

	if l == nil || l.Len() == 0 {
		res.Unique = CheckUnique(l)
		return res
	}

	res.Required, res.Optional = CheckKeys(l)
	if !res.Required.Status {
		return res
	}

	res.Strings = CheckStrings(l)
	if !res.Strings.Status {
		return res
	}

	res.Values = CheckValues(l)
	if !res.Values.Status {
		return res
	}

	res.Flux = CheckFlux(l)
	if !res.Flux.Status {
		return res
	}

	res.Unique = CheckUnique(l)
	if !res.Unique.Status {
		return res
	}

	res.Status = true
	return res
}

// ApplyVisibility attaches planner-computed observability flags to a
// completed validation result.
func (r *Result) ApplyVisibility(flags []bool) {
	any := false
	for _, f := range flags {
		if f {
			any = true
			break
		}
	}
	desc := "No target is observable in the requested period."
	if any {
		desc = "At least one target is observable in the requested period."
	}
	r.Visibility = &VisibilityCheck{Status: any, Success: flags, Description: desc}
}

// FailedStage names the first failed stage, or "".
func (r *Result) FailedStage() string {
	switch {
	case r.Status:
		return ""
	case r.Required != nil && !r.Required.Status:
		return "required_keys"
	case r.Strings != nil && !r.Strings.Status:
		return "str"
	case r.Values != nil && !r.Values.Status:
		return "values"
	case r.Flux != nil && !r.Flux.Status:
		return "flux"
	case r.Unique != nil && !r.Unique.Status:
		return "unique"
	default:
		return "unknown"
	}
}

// Errors flattens the report into the API's error list.
func (r *Result) Errors() []ValidationError {
	var out []ValidationError
	if r.Required != nil {
		for _, d := range r.Required.DescError {
			out = append(out, ValidationError{Field: "columns", Code: "MISSING_REQUIRED_COLUMN", Message: d})
		}
	}
	if r.Strings != nil && !r.Strings.Status {
		for k, ok := range r.Strings.ColumnStatus {
			if !ok && isRequiredKey(k) {
				out = append(out, ValidationError{
					Field:   k,
					Code:    "INVALID_CHARACTERS",
					Message: fmt.Sprintf("Column `%s` contains characters outside [A-Za-z0-9_+-.]", k),
				})
			}
		}
	}
	if r.Values != nil && !r.Values.Status {
		for k, ok := range r.Values.ColumnStatus {
			if !ok {
				out = append(out, ValidationError{
					Field:   k,
					Code:    "VALUE_OUT_OF_RANGE",
					Message: fmt.Sprintf("Column `%s` has values outside the allowed range", k),
				})
			}
		}
	}
	if r.Flux != nil && !r.Flux.Status {
		out = append(out, ValidationError{Field: "flux", Code: "MISSING_FLUX", Message: r.Flux.Description})
	}
	if r.Unique != nil && !r.Unique.Status {
		out = append(out, ValidationError{Field: "ob_code", Code: "DUPLICATE_OB_CODE", Message: r.Unique.Description})
	}
	return out
}

func isRequiredKey(k string) bool {
	for _, r := range RequiredKeys {
		if r == k {
			return true
		}
	}
	return false
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}
