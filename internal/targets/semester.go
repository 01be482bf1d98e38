// internal/targets/semester.go
package targets

import (
	"fmt"
	"time"
)

// Subaru semesters: A runs Feb 1 - Jul 31, B runs Aug 1 - Jan 31 of the
// following year. Dates are interpreted in HST.
type Semester string

const (
	SemesterA Semester = "A"
	SemesterB Semester = "B"
)

// Nightly observing window used for the visibility estimate.
const (
	NightBegin = "18:30:00"
	NightEnd   = "05:30:00"
)

// SemesterOf returns the semester containing date and its nominal year.
// January belongs to semester B of the previous year.
func SemesterOf(date time.Time) (Semester, int) {
	switch m := date.Month(); {
	case m == time.January:
		return SemesterB, date.Year() - 1
	case m <= time.July:
		return SemesterA, date.Year()
	default:
		return SemesterB, date.Year()
	}
}

// SemesterRange returns the start and end dates of a semester in loc.
func SemesterRange(year int, s Semester, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch s {
	case SemesterA:
		return time.Date(year, time.February, 1, 0, 0, 0, 0, loc),
			time.Date(year, time.July, 31, 0, 0, 0, 0, loc), nil
	case SemesterB:
		return time.Date(year, time.August, 1, 0, 0, 0, 0, loc),
			time.Date(year+1, time.January, 31, 0, 0, 0, 0, loc), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown semester %q", s)
	}
}

// NextSemesterRange returns the date range of the semester after the one
// containing ref. The observation-period date pickers default to this.
func NextSemesterRange(ref time.Time, loc *time.Location) (time.Time, time.Time) {
	s, year := SemesterOf(ref)
	if s == SemesterA {
		begin, end, _ := SemesterRange(year, SemesterB, loc)
		return begin, end
	}
	begin, end, _ := SemesterRange(year+1, SemesterA, loc)
	return begin, end
}

// SemesterLabel formats a semester as e.g. "2026A".
func SemesterLabel(year int, s Semester) string {
	return fmt.Sprintf("%d%s", year, s)
}
