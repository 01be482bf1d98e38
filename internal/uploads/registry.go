// internal/uploads/registry.go
package uploads

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pfs-target-uploader/internal/common/database"
	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
)

// Record is one registered upload.
type Record struct {
	UploadID         string    `json:"upload_id"`
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	NObj             int       `json:"n_obj"`
	FiberHours       float64   `json:"fiber_hours"`
	PPPStatus        bool      `json:"ppp_status"`
	OutputDir        string    `json:"output_dir"`
	ZipFile          string    `json:"zip_file"`
	FilesizeKB       float64   `json:"filesize_kb"`
}

// Registry persists upload records in Postgres.
type Registry struct {
	db     *database.PostgresClient
	logger logger.Logger
}

// NewRegistry creates a Registry on top of the shared Postgres client.
func NewRegistry(db *database.PostgresClient, log logger.Logger) *Registry {
	return &Registry{db: db, logger: log}
}

const insertQuery = `
	INSERT INTO uploads (
		upload_id, original_filename, uploaded_at, n_obj, fiber_hours,
		ppp_status, output_dir, zip_file, filesize_kb
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const selectColumns = `
	upload_id, original_filename, uploaded_at, n_obj, fiber_hours,
	ppp_status, output_dir, zip_file, filesize_kb`

// Insert registers a new upload.
func (r *Registry) Insert(ctx context.Context, rec *Record) error {
	_, err := r.db.Exec(ctx, insertQuery,
		rec.UploadID,
		rec.OriginalFilename,
		rec.UploadedAt,
		rec.NObj,
		rec.FiberHours,
		rec.PPPStatus,
		rec.OutputDir,
		rec.ZipFile,
		rec.FilesizeKB,
	)
	if err != nil {
		return apperrors.NewRegistryInsertFailedError(err)
	}
	r.logger.Info("upload registered", map[string]interface{}{
		"upload_id": rec.UploadID,
		"n_obj":     rec.NObj,
	})
	return nil
}

// GetByID fetches one upload record.
func (r *Registry) GetByID(ctx context.Context, uploadID string) (*Record, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM uploads WHERE upload_id = $1`, uploadID)

	var rec Record
	err := row.Scan(
		&rec.UploadID,
		&rec.OriginalFilename,
		&rec.UploadedAt,
		&rec.NObj,
		&rec.FiberHours,
		&rec.PPPStatus,
		&rec.OutputDir,
		&rec.ZipFile,
		&rec.FilesizeKB,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewUploadNotFoundError(uploadID)
	}
	if err != nil {
		return nil, apperrors.NewRegistryQueryFailedError(err)
	}
	return &rec, nil
}

// List returns up to limit uploads, newest first.
func (r *Registry) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+selectColumns+` FROM uploads ORDER BY uploaded_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewRegistryQueryFailedError(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.UploadID,
			&rec.OriginalFilename,
			&rec.UploadedAt,
			&rec.NObj,
			&rec.FiberHours,
			&rec.PPPStatus,
			&rec.OutputDir,
			&rec.ZipFile,
			&rec.FilesizeKB,
		); err != nil {
			return nil, apperrors.NewRegistryQueryFailedError(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRegistryQueryFailedError(err)
	}
	return out, nil
}
