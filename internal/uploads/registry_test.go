// internal/uploads/registry_test.go
package uploads

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/database"
	"pfs-target-uploader/internal/common/logger"
)

func newMockRegistry(t *testing.T) (*Registry, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRegistry(&database.PostgresClient{DB: db}, logger.NewNoOpLogger()), mock
}

func testRecord() *Record {
	return &Record{
		UploadID:         "0123456789abcdef",
		OriginalFilename: "targets.csv",
		UploadedAt:       time.Date(2026, time.August, 24, 10, 30, 0, 0, time.UTC),
		NObj:             42,
		FiberHours:       10.5,
		PPPStatus:        true,
		OutputDir:        "/data/2026/08/20260824-103000-0123456789abcdef",
		ZipFile:          "pfs_target-20260824-103000-0123456789abcdef.zip",
		FilesizeKB:       12.3,
	}
}

func recordColumns() []string {
	return []string{
		"upload_id", "original_filename", "uploaded_at", "n_obj", "fiber_hours",
		"ppp_status", "output_dir", "zip_file", "filesize_kb",
	}
}

func TestRegistryInsert(t *testing.T) {
	reg, mock := newMockRegistry(t)
	rec := testRecord()

	mock.ExpectExec("INSERT INTO uploads").
		WithArgs(
			rec.UploadID, rec.OriginalFilename, rec.UploadedAt, rec.NObj,
			rec.FiberHours, rec.PPPStatus, rec.OutputDir, rec.ZipFile, rec.FilesizeKB,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, reg.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryInsert_Failure(t *testing.T) {
	reg, mock := newMockRegistry(t)

	mock.ExpectExec("INSERT INTO uploads").
		WillReturnError(fmt.Errorf("connection reset"))

	err := reg.Insert(context.Background(), testRecord())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRegistryInsertFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestRegistryGetByID(t *testing.T) {
	reg, mock := newMockRegistry(t)
	rec := testRecord()

	rows := sqlmock.NewRows(recordColumns()).AddRow(
		rec.UploadID, rec.OriginalFilename, rec.UploadedAt, rec.NObj,
		rec.FiberHours, rec.PPPStatus, rec.OutputDir, rec.ZipFile, rec.FilesizeKB,
	)
	mock.ExpectQuery("SELECT (.+) FROM uploads WHERE upload_id").
		WithArgs(rec.UploadID).
		WillReturnRows(rows)

	got, err := reg.GetByID(context.Background(), rec.UploadID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryGetByID_NotFound(t *testing.T) {
	reg, mock := newMockRegistry(t)

	mock.ExpectQuery("SELECT (.+) FROM uploads WHERE upload_id").
		WithArgs("ffffffffffffffff").
		WillReturnError(sql.ErrNoRows)

	_, err := reg.GetByID(context.Background(), "ffffffffffffffff")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUploadNotFound, apperrors.CodeOf(err))
	assert.False(t, apperrors.IsRetryable(err))
}

func TestRegistryList(t *testing.T) {
	reg, mock := newMockRegistry(t)
	rec := testRecord()

	rows := sqlmock.NewRows(recordColumns()).
		AddRow(
			"fedcba9876543210", "other.csv", rec.UploadedAt.Add(time.Hour), 7,
			1.0, false, "/data/other", "other.zip", 3.4,
		).
		AddRow(
			rec.UploadID, rec.OriginalFilename, rec.UploadedAt, rec.NObj,
			rec.FiberHours, rec.PPPStatus, rec.OutputDir, rec.ZipFile, rec.FilesizeKB,
		)
	mock.ExpectQuery("SELECT (.+) FROM uploads ORDER BY uploaded_at DESC LIMIT").
		WithArgs(2).
		WillReturnRows(rows)

	got, err := reg.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fedcba9876543210", got[0].UploadID)
	assert.Equal(t, *rec, got[1])
}

func TestRegistryList_DefaultLimit(t *testing.T) {
	reg, mock := newMockRegistry(t)

	mock.ExpectQuery("SELECT (.+) FROM uploads ORDER BY uploaded_at DESC LIMIT").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	got, err := reg.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
