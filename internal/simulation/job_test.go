// internal/simulation/job_test.go
package simulation

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pfs-target-uploader/internal/common/errors"
)

func validJob() *Job {
	return NewJob("targets.csv", "csv",
		[]byte("obj_id,ob_code\n1,obj_a\n"), "2026-08-01", "2027-01-31", true)
}

func TestNewJob(t *testing.T) {
	job := validJob()

	_, err := uuid.Parse(job.ID)
	assert.NoError(t, err)
	assert.Equal(t, "targets.csv", job.OriginalFilename)
	assert.Equal(t, "csv", job.Format)
	assert.True(t, job.Submit)
	assert.False(t, job.EnqueuedAt.IsZero())
}

func TestJobEncodeDecode(t *testing.T) {
	job := validJob()
	payload, err := job.Encode()
	require.NoError(t, err)

	got, err := DecodeJob(payload)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Data, got.Data)
	assert.Equal(t, job.DateBegin, got.DateBegin)
	assert.True(t, got.Submit)
}

func TestDecodeJob_SchemaFailures(t *testing.T) {
	base := func() map[string]interface{} {
		payload, _ := validJob().Encode()
		var m map[string]interface{}
		_ = json.Unmarshal(payload, &m)
		return m
	}

	tests := []struct {
		name   string
		mutate func(m map[string]interface{})
	}{
		{
			name:   "missing id",
			mutate: func(m map[string]interface{}) { delete(m, "id") },
		},
		{
			name:   "short id",
			mutate: func(m map[string]interface{}) { m["id"] = "abc" },
		},
		{
			name:   "unknown format",
			mutate: func(m map[string]interface{}) { m["format"] = "xlsx" },
		},
		{
			name:   "empty data",
			mutate: func(m map[string]interface{}) { m["data"] = "" },
		},
		{
			name:   "malformed date",
			mutate: func(m map[string]interface{}) { m["date_begin"] = "01-08-2026" },
		},
		{
			name:   "missing date_end",
			mutate: func(m map[string]interface{}) { delete(m, "date_end") },
		},
		{
			name:   "unexpected field",
			mutate: func(m map[string]interface{}) { m["priority_boost"] = 99 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			payload, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = DecodeJob(payload)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeJobPayloadInvalid, apperrors.CodeOf(err))
			assert.False(t, apperrors.IsRetryable(err))
		})
	}
}

func TestDecodeJob_NotJSON(t *testing.T) {
	_, err := DecodeJob([]byte("definitely not json"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeJobPayloadInvalid, apperrors.CodeOf(err))
}

func TestDecodeJob_NonUUIDIDRejected(t *testing.T) {
	payload, err := validJob().Encode()
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &m))
	m["id"] = "000000000000000000000000000000000000" // right length, not a uuid
	payload, err = json.Marshal(m)
	require.NoError(t, err)

	_, err = DecodeJob(payload)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeJobPayloadInvalid, apperrors.CodeOf(err))
}
