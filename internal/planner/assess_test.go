// internal/planner/assess_test.go
package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRequestTime(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0.0, want: 0.0},
		{in: 10.0, want: 10.0},
		{in: 10.01, want: 10.1},
		{in: 10.09, want: 10.1},
		{in: 34.91, want: 35.0},
		{in: 34.99, want: 35.0},
		{in: 35.01, want: 35.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundRequestTime(tt.in), 1e-9, "RoundRequestTime(%v)", tt.in)
	}
}

func resultWith(status int, requestTime float64) *Result {
	return &Result{
		Status: status,
		Summary: []ResolutionSummary{
			{Resolution: "low", NPPC: 4, RequestTimeHours: requestTime / 2},
			{Resolution: "total", NPPC: 8, RequestTimeHours: requestTime},
		},
	}
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name          string
		result        *Result
		wantOK        bool
		wantOverCap   bool
		wantTruncated bool
		wantWarnings  int
	}{
		{
			name:   "complete within cap",
			result: resultWith(StatusComplete, 12.3),
			wantOK: true,
		},
		{
			name:        "complete over cap",
			result:      resultWith(StatusComplete, 40.0),
			wantOverCap: true, wantWarnings: 1,
		},
		{
			name:          "truncated within cap",
			result:        resultWith(StatusTruncated, 20.0),
			wantTruncated: true, wantWarnings: 1,
		},
		{
			name:          "truncated and over cap",
			result:        resultWith(StatusTruncated, 50.0),
			wantOverCap:   true,
			wantTruncated: true, wantWarnings: 2,
		},
		{
			name:   "exactly at cap is fine",
			result: resultWith(StatusComplete, 35.0),
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.result)
			assert.Equal(t, tt.wantOK, a.OK)
			assert.Equal(t, tt.wantOverCap, a.ExceedsNormalCap)
			assert.Equal(t, tt.wantTruncated, a.Truncated)
			assert.Len(t, a.Warnings, tt.wantWarnings)
			if tt.wantOK {
				assert.NotEmpty(t, a.Note)
			} else {
				assert.Empty(t, a.Note)
			}
		})
	}
}

func TestAssess_RoundsUpBeforeComparingToCap(t *testing.T) {
	// 34.95 rounds up to 35.0, still within the cap
	a := Assess(resultWith(StatusComplete, 34.95))
	assert.InDelta(t, 35.0, a.RequestTimeHours, 1e-9)
	assert.False(t, a.ExceedsNormalCap)

	// 35.01 rounds up to 35.1, over the cap
	a = Assess(resultWith(StatusComplete, 35.01))
	assert.InDelta(t, 35.1, a.RequestTimeHours, 1e-9)
	assert.True(t, a.ExceedsNormalCap)
}

func TestAssess_EmptySummary(t *testing.T) {
	a := Assess(&Result{Status: StatusComplete})
	assert.Zero(t, a.RequestTimeHours)
	assert.True(t, a.OK)
}

func TestTotalRow(t *testing.T) {
	r := resultWith(StatusComplete, 10.0)
	total := r.TotalRow()
	require.NotNil(t, total)
	assert.Equal(t, "total", total.Resolution)

	assert.Nil(t, (&Result{}).TotalRow())
}
