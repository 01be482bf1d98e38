// internal/uploads/properties_test.go
package uploads

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/ecsv"
)

func writeSubmission(t *testing.T, store *Store, uploadID string, uploadTime time.Time) *WriteResult {
	t.Helper()
	pkg := &Package{
		UploadID:         uploadID,
		UploadTime:       uploadTime,
		OriginalFilename: "targets.csv",
		OriginalData:     []byte("data"),
		Target: &ecsv.Table{
			Columns: []ecsv.Column{
				{Name: "ob_code", Datatype: "string"},
				{Name: "exptime", Datatype: "float64"},
			},
			Rows: [][]string{
				{"obj_a", "900"},
				{"obj_b", "1800"},
			},
		},
		TargetSummary: smallTable("priority"),
		PSL: &ecsv.Table{
			Columns: []ecsv.Column{
				{Name: "resolution", Datatype: "string"},
				{Name: "Texp (h)", Datatype: "float64"},
				{Name: "Texp (fiberhour)", Datatype: "float64"},
				{Name: "Request time (h)", Datatype: "float64"},
			},
			Rows: [][]string{
				{"low", "0.5", "1.2", "0.8"},
				{"medium", "0.25", "0.6", "0.4"},
				{"total", "0.75", "1.8", "1.2"},
			},
		},
		PPC:       smallTable("ppc_code"),
		PPPStatus: true,
	}
	res, err := store.Write(pkg)
	require.NoError(t, err)
	return res
}

func TestScanDataDir(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, logger.NewNoOpLogger())

	older := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2026, time.August, 24, 10, 30, 0, 0, time.UTC)
	writeSubmission(t, store, "aaaaaaaaaaaaaaaa", older)
	writeSubmission(t, store, "bbbbbbbbbbbbbbbb", newer)

	props, err := ScanDataDir(context.Background(), root, 4, logger.NewNoOpLogger())
	require.NoError(t, err)
	require.Len(t, props, 2)

	// newest first
	assert.Equal(t, "bbbbbbbbbbbbbbbb", props[0].UploadID)
	assert.Equal(t, "aaaaaaaaaaaaaaaa", props[1].UploadID)

	got := props[0]
	assert.Equal(t, "targets.csv", got.Filename)
	assert.Equal(t, 2, got.NObj)
	assert.Equal(t, newer, got.Timestamp)
	// (900 + 1800) / 3600
	assert.InDelta(t, 0.75, got.ExptimeFH, 1e-9)
	assert.InDelta(t, 0.5, got.ExptimeSciLH, 1e-9)
	assert.InDelta(t, 0.6, got.ExptimeSciMFH, 1e-9)
	assert.InDelta(t, 0.8, got.TotalTimeLH, 1e-9)
	assert.InDelta(t, 0.4, got.TotalTimeMH, 1e-9)
	assert.Greater(t, got.FilesizeKB, 0.0)
	assert.FileExists(t, got.FullpathTarget)
	assert.FileExists(t, got.FullpathPSL)
}

func TestScanDataDir_SkipsBrokenDirectories(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, logger.NewNoOpLogger())
	writeSubmission(t, store, "aaaaaaaaaaaaaaaa",
		time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC))

	// a directory without the expected ecsv pair
	broken := filepath.Join(root, "2026", "03", "20260306-090000-cccccccccccccccc")
	require.NoError(t, os.MkdirAll(broken, 0o755))

	props, err := ScanDataDir(context.Background(), root, 4, logger.NewNoOpLogger())
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "aaaaaaaaaaaaaaaa", props[0].UploadID)
}

func TestScanDataDir_EmptyRoot(t *testing.T) {
	props, err := ScanDataDir(context.Background(), t.TempDir(), 0, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Empty(t, props)
}
