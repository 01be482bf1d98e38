// internal/uploads/properties.go
package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/ecsv"
)

// Properties summarizes one submission directory found on disk.
type Properties struct {
	UploadID       string    `json:"upload_id"`
	NObj           int       `json:"n_obj"`
	ExptimeFH      float64   `json:"exptime_tgt_fh"`
	ExptimeSciLH   float64   `json:"exptime_sci_l_h"`
	ExptimeSciMH   float64   `json:"exptime_sci_m_h"`
	ExptimeSciLFH  float64   `json:"exptime_sci_l_fh"`
	ExptimeSciMFH  float64   `json:"exptime_sci_m_fh"`
	TotalTimeLH    float64   `json:"time_tot_l_h"`
	TotalTimeMH    float64   `json:"time_tot_m_h"`
	Filename       string    `json:"filename"`
	FilesizeKB     float64   `json:"filesize_kb"`
	Timestamp      time.Time `json:"timestamp"`
	FullpathTarget string    `json:"fullpath_tgt"`
	FullpathPSL    string    `json:"fullpath_psl"`
}

// ScanDataDir rebuilds the admin listing by walking the
// <datadir>/YYYY/MM/* submission directories. Broken entries are skipped
// with a warning. Directories are read concurrently, at most maxParallel
// at a time, and the result is sorted newest first.
func ScanDataDir(ctx context.Context, datadir string, maxParallel int, log logger.Logger) ([]Properties, error) {
	dirs, err := filepath.Glob(filepath.Join(datadir, "????", "??", "*"))
	if err != nil {
		return nil, err
	}
	if maxParallel <= 0 {
		maxParallel = 8
	}

	var mu sync.Mutex
	var out []Properties

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for _, d := range dirs {
		dir := d
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			props, err := readSubmissionDir(dir)
			if err != nil {
				log.Warn("skipping broken submission directory", map[string]interface{}{
					"dir":   dir,
					"error": err.Error(),
				})
				return nil
			}
			mu.Lock()
			out = append(out, *props)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if len(out) == 0 {
		log.Warn("no submissions found in data directory", map[string]interface{}{
			"datadir": datadir,
		})
	}
	return out, nil
}

// readSubmissionDir reads the target/psl ECSV pair of one submission. The
// upload ID is the directory-name suffix.
func readSubmissionDir(dir string) (*Properties, error) {
	base := filepath.Base(dir)
	if len(base) < TokenLength {
		return nil, fmt.Errorf("directory name %q too short for an upload id", base)
	}
	uid := base[len(base)-TokenLength:]

	targetPath := filepath.Join(dir, fmt.Sprintf("target_%s.ecsv", uid))
	pslPath := filepath.Join(dir, fmt.Sprintf("psl_%s.ecsv", uid))

	tf, err := os.Open(targetPath)
	if err != nil {
		return nil, err
	}
	defer tf.Close()
	target, err := ecsv.Read(tf)
	if err != nil {
		return nil, err
	}

	pf, err := os.Open(pslPath)
	if err != nil {
		return nil, err
	}
	defer pf.Close()
	psl, err := ecsv.Read(pf)
	if err != nil {
		return nil, err
	}

	props := &Properties{
		UploadID:       uid,
		NObj:           len(target.Rows),
		FullpathTarget: targetPath,
		FullpathPSL:    pslPath,
	}

	if fi, err := os.Stat(targetPath); err == nil {
		props.FilesizeKB = float64(fi.Size()) / 1000.0
	}

	if v, ok := target.Meta["original_filename"].(string); ok {
		props.Filename = v
	}
	if v, ok := target.Meta["upload_id"].(string); ok {
		props.UploadID = v
	}
	if v, ok := target.Meta["upload_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			props.Timestamp = ts
		}
	}

	exptimeIdx := target.ColumnIndex("exptime")
	if exptimeIdx >= 0 {
		var sum float64
		for _, row := range target.Rows {
			if v, err := strconv.ParseFloat(row[exptimeIdx], 64); err == nil {
				sum += v
			}
		}
		props.ExptimeFH = sum / 3600.0
	}

	for i := range psl.Rows {
		cell := func(name string) float64 {
			v, _ := strconv.ParseFloat(psl.Cell(i, name), 64)
			return v
		}
		switch psl.Cell(i, "resolution") {
		case "low":
			props.ExptimeSciLH = cell("Texp (h)")
			props.ExptimeSciLFH = cell("Texp (fiberhour)")
			props.TotalTimeLH = cell("Request time (h)")
		case "medium":
			props.ExptimeSciMH = cell("Texp (h)")
			props.ExptimeSciMFH = cell("Texp (fiberhour)")
			props.TotalTimeMH = cell("Request time (h)")
		}
	}

	return props, nil
}
