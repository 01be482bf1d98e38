// internal/targets/semester_test.go
package targets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemesterOf(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		wantSem  Semester
		wantYear int
	}{
		{name: "february starts A", date: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), wantSem: SemesterA, wantYear: 2026},
		{name: "july ends A", date: time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), wantSem: SemesterA, wantYear: 2026},
		{name: "august starts B", date: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), wantSem: SemesterB, wantYear: 2026},
		{name: "december is B", date: time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC), wantSem: SemesterB, wantYear: 2026},
		{name: "january belongs to previous B", date: time.Date(2027, time.January, 10, 0, 0, 0, 0, time.UTC), wantSem: SemesterB, wantYear: 2026},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem, year := SemesterOf(tt.date)
			assert.Equal(t, tt.wantSem, sem)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestSemesterRange(t *testing.T) {
	begin, end, err := SemesterRange(2026, SemesterA, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), begin)
	assert.Equal(t, time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), end)

	begin, end, err = SemesterRange(2026, SemesterB, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), begin)
	assert.Equal(t, time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC), end)

	_, _, err = SemesterRange(2026, Semester("C"), time.UTC)
	assert.Error(t, err)
}

func TestNextSemesterRange(t *testing.T) {
	// during 2026A the pickers default to 2026B
	begin, end := NextSemesterRange(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), begin)
	assert.Equal(t, time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC), end)

	// during 2026B (including the following January) they default to 2027A
	begin, end = NextSemesterRange(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2027, time.February, 1, 0, 0, 0, 0, time.UTC), begin)
	assert.Equal(t, time.Date(2027, time.July, 31, 0, 0, 0, 0, time.UTC), end)

	begin, _ = NextSemesterRange(time.Date(2027, time.January, 5, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2027, time.February, 1, 0, 0, 0, 0, time.UTC), begin)
}

func TestSemesterLabel(t *testing.T) {
	assert.Equal(t, "2026A", SemesterLabel(2026, SemesterA))
	assert.Equal(t, "2025B", SemesterLabel(2025, SemesterB))
}
