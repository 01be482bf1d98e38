// internal/simulation/job.go

// Package simulation runs the upload pipeline, synchronously for the API
// and asynchronously through a Redis-backed job queue.
package simulation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	apperrors "pfs-target-uploader/internal/common/errors"
)

// Job is one queued simulation request. The target list travels inline;
// uploads are capped well below any queue payload concern.
type Job struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	Format           string    `json:"format"` // "csv" or "ecsv"
	Data             []byte    `json:"data"`
	DateBegin        string    `json:"date_begin"`
	DateEnd          string    `json:"date_end"`
	ContactEmail     string    `json:"contact_email,omitempty"`
	Submit           bool      `json:"submit"`
	EnqueuedAt       time.Time `json:"enqueued_at"`
}

// NewJob creates a Job with a fresh UUID.
func NewJob(filename, format string, data []byte, dateBegin, dateEnd string, submit bool) *Job {
	return &Job{
		ID:               uuid.NewString(),
		OriginalFilename: filename,
		Format:           format,
		Data:             data,
		DateBegin:        dateBegin,
		DateEnd:          dateEnd,
		Submit:           submit,
		EnqueuedAt:       time.Now().UTC(),
	}
}

const jobSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "minLength": 36, "maxLength": 36},
		"original_filename": {"type": "string", "minLength": 1},
		"format": {"type": "string", "enum": ["csv", "ecsv"]},
		"data": {"type": "string", "minLength": 1},
		"date_begin": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
		"date_end": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
		"contact_email": {"type": "string"},
		"submit": {"type": "boolean"},
		"enqueued_at": {"type": "string"}
	},
	"required": ["id", "original_filename", "format", "data", "date_begin", "date_end"],
	"additionalProperties": false
}`

var jobSchemaLoader = gojsonschema.NewStringLoader(jobSchema)

// DecodeJob validates a raw queue payload against the job schema and
// decodes it. Schema failures are non-retryable.
func DecodeJob(payload []byte) (*Job, error) {
	result, err := gojsonschema.Validate(jobSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, apperrors.NewJobPayloadInvalidError(err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, apperrors.NewJobPayloadInvalidError(strings.Join(msgs, "; "))
	}

	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, apperrors.NewJobPayloadInvalidError(err.Error())
	}
	if _, err := uuid.Parse(job.ID); err != nil {
		return nil, apperrors.NewJobPayloadInvalidError(fmt.Sprintf("invalid job id %q", job.ID))
	}
	return &job, nil
}

// Encode serializes the job for the queue.
func (j *Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}
