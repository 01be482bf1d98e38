// internal/common/errors/errors.go

// Package errors provides standardized error handling for the target
// uploader service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTargetListFormatInvalid ErrorCode = "TARGET_LIST_FORMAT_INVALID"
	ErrCodeEmptyTargetList         ErrorCode = "EMPTY_TARGET_LIST"
	ErrCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrCodeNoVisibleTargets        ErrorCode = "NO_VISIBLE_TARGETS"

	ErrCodePlannerUnavailable ErrorCode = "PLANNER_UNAVAILABLE"
	ErrCodePlannerTimeout     ErrorCode = "PLANNER_TIMEOUT"

	ErrCodeStorageWriteFailed   ErrorCode = "STORAGE_WRITE_FAILED"
	ErrCodeRegistryInsertFailed ErrorCode = "REGISTRY_INSERT_FAILED"
	ErrCodeRegistryQueryFailed  ErrorCode = "REGISTRY_QUERY_FAILED"
	ErrCodeIndexWriteFailed     ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeUploadNotFound       ErrorCode = "UPLOAD_NOT_FOUND"

	ErrCodeJobPayloadInvalid      ErrorCode = "JOB_PAYLOAD_INVALID"
	ErrCodeQueueUnavailable       ErrorCode = "QUEUE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether err is a retryable StandardError. Unknown
// errors are treated as retryable transport failures.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return true
}

// HTTPStatus maps an error to the HTTP status code of the API envelope.
func HTTPStatus(err error) int {
	var se *StandardError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Code {
	case ErrCodeTargetListFormatInvalid, ErrCodeEmptyTargetList, ErrCodeJobPayloadInvalid:
		return http.StatusBadRequest
	case ErrCodeValidationFailed, ErrCodeNoVisibleTargets:
		return http.StatusUnprocessableEntity
	case ErrCodeUploadNotFound:
		return http.StatusNotFound
	case ErrCodePlannerUnavailable, ErrCodePlannerTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTargetListFormatInvalidError creates a non-retryable ingest error.
func NewTargetListFormatInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTargetListFormatInvalid,
		Message:   "Target list could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyTargetListError creates a non-retryable empty-input error.
func NewEmptyTargetListError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyTargetList,
		Message:   "Empty data detected (maybe failure in loading the inputs)",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable validation error.
func NewValidationFailedError(stage string, count int) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Target list validation failed",
		Details:   fmt.Sprintf("stage: %s, errors: %d", stage, count),
		Retryable: false,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
	}
}

// NewNoVisibleTargetsError creates a non-retryable visibility error.
func NewNoVisibleTargetsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoVisibleTargets,
		Message:   "Cannot simulate pointing for 0 visible targets",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlannerUnavailableError creates a retryable planner transport error.
func NewPlannerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlannerUnavailable,
		Message:   "Pointing planner service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlannerTimeoutError creates a retryable planner timeout error.
func NewPlannerTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodePlannerTimeout,
		Message:   "Pointing planner request timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageWriteFailedError creates a retryable storage error.
func NewStorageWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageWriteFailed,
		Message:   "Submission package write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInsertFailedError creates a retryable database insert error.
func NewRegistryInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInsertFailed,
		Message:   "Upload registry insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryQueryFailedError creates a retryable database query error.
func NewRegistryQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryQueryFailed,
		Message:   "Upload registry query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable search index error.
func NewIndexWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Upload search index write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadNotFoundError creates a non-retryable lookup error.
func NewUploadNotFoundError(uploadID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadNotFound,
		Message:   "Upload not found",
		Details:   fmt.Sprintf("uploadId: %s", uploadID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobPayloadInvalidError creates a non-retryable queue payload error.
func NewJobPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobPayloadInvalid,
		Message:   "Simulation job payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueUnavailableError creates a retryable queue transport error.
func NewQueueUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueUnavailable,
		Message:   "Simulation queue error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
