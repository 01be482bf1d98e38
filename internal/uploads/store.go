// internal/uploads/store.go
package uploads

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/ecsv"
)

const readmeText = `# README for output files from the online PFS pointing planner (PPP)

A ZIP file generated by the online PPP in the PFS target uploader contains the following files.

- README.txt: This file
- target*.ecsv: cleaned target list (ECSV)
- target_summary*.ecsv: summary table of input targets grouped by priority and resolution (ECSV)
- psl*.ecsv: summary of the online PPP simulation including requested observing time, completion rate, etc. (ECSV)
- ppc*.ecsv: list of PFS pointings derived by the online PPP simulation sorted by pointing priority and grouped by resolution (ECSV)
- <original target list>: original input target list

About the Enhanced Character-Separated Values (ECSV) format, visit https://docs.astropy.org/en/stable/io/ascii/ecsv.html
`

// Package is everything written out for one submission.
type Package struct {
	UploadID         string
	UploadTime       time.Time
	OriginalFilename string
	OriginalData     []byte
	Target           *ecsv.Table
	TargetSummary    *ecsv.Table
	PSL              *ecsv.Table
	PPC              *ecsv.Table
	PPPStatus        bool
}

// WriteResult describes where a submission landed.
type WriteResult struct {
	OutputDir  string
	ZipFile    string
	FilesizeKB float64
}

// Store writes submission packages under the configured output directory.
type Store struct {
	outputDir string
	logger    logger.Logger
}

// NewStore creates a Store rooted at outputDir.
func NewStore(outputDir string, log logger.Logger) *Store {
	return &Store{outputDir: outputDir, logger: log}
}

type outFile struct {
	name string
	data []byte
}

// render produces the files of the package in output order. When export is
// true the upload ID is left out of filenames and table metadata.
func (p *Package) render(export bool) ([]outFile, error) {
	token := p.UploadID
	if export {
		token = "export"
	}

	stamp := func(t *ecsv.Table) *ecsv.Table {
		if t.Meta == nil {
			t.Meta = map[string]interface{}{}
		}
		t.Meta["original_filename"] = p.OriginalFilename
		if !export {
			t.Meta["upload_id"] = p.UploadID
			t.Meta["upload_at"] = p.UploadTime.UTC().Format(time.RFC3339)
			t.Meta["ppp_status"] = p.PPPStatus
		}
		return t
	}

	tables := []struct {
		prefix string
		table  *ecsv.Table
	}{
		{"target", p.Target},
		{"target_summary", p.TargetSummary},
		{"psl", p.PSL},
		{"ppc", p.PPC},
	}

	var files []outFile
	for _, t := range tables {
		if t.table == nil {
			return nil, fmt.Errorf("missing %s table", t.prefix)
		}
		var buf bytes.Buffer
		if err := ecsv.Write(&buf, stamp(t.table)); err != nil {
			return nil, err
		}
		files = append(files, outFile{
			name: fmt.Sprintf("%s_%s.ecsv", t.prefix, token),
			data: buf.Bytes(),
		})
	}

	files = append(files,
		outFile{name: p.OriginalFilename, data: p.OriginalData},
		outFile{name: "README.txt", data: []byte(readmeText)},
	)
	return files, nil
}

// Write persists the package under
// <output_dir>/<YYYY>/<MM>/<YYYYMMDD-HHMMSS>-<id>/ together with a zip
// bundling every file under a pfs_target-<stamp>-<id>/ prefix.
func (s *Store) Write(p *Package) (*WriteResult, error) {
	dt := p.UploadTime.UTC()
	outdir := filepath.Join(
		s.outputDir,
		fmt.Sprintf("%04d", dt.Year()),
		fmt.Sprintf("%02d", int(dt.Month())),
		fmt.Sprintf("%s-%s", dt.Format("20060102-150405"), p.UploadID),
	)

	if _, err := os.Stat(outdir); err == nil {
		s.logger.Warn("output directory already exists", map[string]interface{}{
			"outdir": outdir,
		})
	}
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, apperrors.NewStorageWriteFailedError(err)
	}
	s.logger.Info("output directory created", map[string]interface{}{"outdir": outdir})

	files, err := p.render(false)
	if err != nil {
		return nil, apperrors.NewStorageWriteFailedError(err)
	}

	zipPrefix := fmt.Sprintf("pfs_target-%s-%s", dt.Format("20060102-150405"), p.UploadID)
	zipName := zipPrefix + ".zip"

	var zipBuf bytes.Buffer
	zw := zip.NewWriter(&zipBuf)
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(outdir, f.name), f.data, 0o644); err != nil {
			return nil, apperrors.NewStorageWriteFailedError(err)
		}
		w, err := zw.Create(zipPrefix + "/" + f.name)
		if err != nil {
			return nil, apperrors.NewStorageWriteFailedError(err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, apperrors.NewStorageWriteFailedError(err)
		}
		s.logger.Info("file saved", map[string]interface{}{
			"filename": f.name,
			"outdir":   outdir,
		})
	}
	if err := zw.Close(); err != nil {
		return nil, apperrors.NewStorageWriteFailedError(err)
	}
	if err := os.WriteFile(filepath.Join(outdir, zipName), zipBuf.Bytes(), 0o644); err != nil {
		return nil, apperrors.NewStorageWriteFailedError(err)
	}

	var sizeKB float64
	if fi, err := os.Stat(filepath.Join(outdir, fmt.Sprintf("target_%s.ecsv", p.UploadID))); err == nil {
		sizeKB = float64(fi.Size()) / 1000.0
	}

	return &WriteResult{OutputDir: outdir, ZipFile: zipName, FilesizeKB: sizeKB}, nil
}

// Export renders the package as an in-memory zip without an upload ID in
// filenames or metadata.
func Export(p *Package) (string, *bytes.Buffer, error) {
	files, err := p.render(true)
	if err != nil {
		return "", nil, err
	}

	zipPrefix := fmt.Sprintf("pfs_target-%s", p.UploadTime.UTC().Format("20060102-150405"))
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(zipPrefix + "/" + f.name)
		if err != nil {
			return "", nil, err
		}
		if _, err := w.Write(f.data); err != nil {
			return "", nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return "", nil, err
	}
	return zipPrefix + ".zip", &buf, nil
}
