// internal/simulation/service.go
package simulation

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"pfs-target-uploader/internal/common/config"
	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/common/metrics"
	"pfs-target-uploader/internal/planner"
	"pfs-target-uploader/internal/targets"
	"pfs-target-uploader/internal/uploads"
)

// Planner is the slice of the planner client the pipeline needs.
type Planner interface {
	CheckVisibility(ctx context.Context, req *planner.VisibilityRequest) ([]bool, error)
	Simulate(ctx context.Context, req *planner.SimulateRequest) (*planner.Result, error)
}

// PackageStore persists submission packages.
type PackageStore interface {
	Write(p *uploads.Package) (*uploads.WriteResult, error)
}

// UploadRegistry records submissions.
type UploadRegistry interface {
	Insert(ctx context.Context, rec *uploads.Record) error
}

// UploadIndex mirrors submissions into the search index.
type UploadIndex interface {
	Index(ctx context.Context, rec *uploads.Record) error
}

// Receipts notifies the submitter and the operators.
type Receipts interface {
	SendReceipt(ctx context.Context, to string, rec *uploads.Record) error
	NotifyOperator(ctx context.Context, rec *uploads.Record) error
}

// Service ties the pipeline together: load, validate, visibility,
// simulate, assess, package, register, notify.
type Service struct {
	planner  Planner
	store    PackageStore
	registry UploadRegistry
	index    UploadIndex
	notifier Receipts
	cfg      *config.Config
	logger   logger.Logger
}

// NewService builds the pipeline service. index and notifier may be nil;
// their steps are then skipped.
func NewService(
	p Planner,
	store PackageStore,
	registry UploadRegistry,
	index UploadIndex,
	notifier Receipts,
	cfg *config.Config,
	log logger.Logger,
) *Service {
	return &Service{
		planner:  p,
		store:    store,
		registry: registry,
		index:    index,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
	}
}

// RunRequest is one pipeline invocation.
type RunRequest struct {
	Filename       string
	Format         string // "csv" or "ecsv"; derived from Filename when empty
	Data           []byte
	DateBegin      string // YYYY-MM-DD, HST
	DateEnd        string
	ContactEmail   string
	SkipSimulation bool
}

// RunResult carries everything the pipeline produced.
type RunResult struct {
	List       *targets.List       `json:"-"`
	Validation *targets.Result     `json:"validation"`
	Visible    []bool              `json:"visible,omitempty"`
	Simulation *planner.Result     `json:"simulation,omitempty"`
	Assessment *planner.Assessment `json:"assessment,omitempty"`
}

// SubmitResult is the receipt of a packaged submission.
type SubmitResult struct {
	UploadID   string              `json:"upload_id"`
	UploadedAt time.Time           `json:"uploaded_at"`
	OutputDir  string              `json:"output_dir"`
	ZipFile    string              `json:"zip_file"`
	NObj       int                 `json:"n_obj"`
	FiberHours float64             `json:"fiber_hours"`
	Assessment *planner.Assessment `json:"assessment,omitempty"`
}

// LoadAndValidate parses the uploaded file and runs the staged validation.
// format is "csv" or "ecsv"; when empty it is taken from the filename
// extension.
func (s *Service) LoadAndValidate(filename, format string, data []byte) (*targets.List, *targets.Result, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}

	var (
		list *targets.List
		err  error
	)
	if format == "ecsv" {
		list, err = targets.ParseECSV(bytes.NewReader(data))
	} else {
		list, err = targets.ParseCSV(bytes.NewReader(data))
	}
	if err != nil {
		metrics.ValidationRuns.WithLabelValues("error", "load").Inc()
		return nil, nil, apperrors.NewTargetListFormatInvalidError(err.Error())
	}

	result := targets.Validate(list)
	if result.Status {
		metrics.ValidationRuns.WithLabelValues("success", "").Inc()
	} else {
		metrics.ValidationRuns.WithLabelValues("failure", result.FailedStage()).Inc()
	}
	return list, result, nil
}

// Run executes the pipeline up to the assessment, without packaging.
func (s *Service) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	list, validation, err := s.LoadAndValidate(req.Filename, req.Format, req.Data)
	if err != nil {
		return nil, err
	}
	out := &RunResult{List: list, Validation: validation}

	if !validation.Status {
		stage := validation.FailedStage()
		s.logger.Warn("validation failed", map[string]interface{}{
			"filename": req.Filename,
			"stage":    stage,
		})
		if stage == "unique" && list.Len() == 0 {
			return out, apperrors.NewEmptyTargetListError()
		}
		return out, apperrors.NewValidationFailedError(stage, len(validation.Errors()))
	}

	if req.SkipSimulation {
		return out, nil
	}

	tgts, err := list.Targets()
	if err != nil {
		return out, apperrors.NewTargetListFormatInvalidError(err.Error())
	}

	visible, err := s.planner.CheckVisibility(ctx, &planner.VisibilityRequest{
		Targets:      tgts,
		DateBegin:    req.DateBegin,
		DateEnd:      req.DateEnd,
		MinElevation: s.cfg.Planner.MinElevation,
		MaxElevation: s.cfg.Planner.MaxElevation,
	})
	if err != nil {
		return out, err
	}
	validation.ApplyVisibility(visible)
	out.Visible = visible

	visibleTargets := make([]targets.Target, 0, len(tgts))
	for i, t := range tgts {
		if visible[i] {
			visibleTargets = append(visibleTargets, t)
		}
	}
	if len(visibleTargets) == 0 {
		return out, apperrors.NewNoVisibleTargetsError()
	}

	result, err := s.planner.Simulate(ctx, &planner.SimulateRequest{
		Targets:         visibleTargets,
		Weights:         s.cfg.Planner.Weights,
		SolverBudgetSec: s.cfg.Planner.SolverBudget,
		DateBegin:       req.DateBegin,
		DateEnd:         req.DateEnd,
	})
	if err != nil {
		return out, err
	}
	out.Simulation = result

	assessment := planner.Assess(result)
	out.Assessment = &assessment
	return out, nil
}

// Submit runs the pipeline and packages, registers, and announces the
// submission. Index and notification failures are logged, not fatal.
func (s *Service) Submit(ctx context.Context, req *RunRequest) (*SubmitResult, error) {
	run, err := s.Run(ctx, req)
	if err != nil {
		metrics.UploadsSubmitted.WithLabelValues("rejected").Inc()
		return nil, err
	}

	uploadID, err := uploads.NewToken()
	if err != nil {
		return nil, apperrors.NewStorageWriteFailedError(err)
	}
	uploadTime := time.Now().UTC()
	pkg := buildPackage(run, req, uploadID, uploadTime)

	written, err := s.store.Write(pkg)
	if err != nil {
		metrics.UploadsSubmitted.WithLabelValues("failed").Inc()
		return nil, err
	}

	rec := &uploads.Record{
		UploadID:         uploadID,
		OriginalFilename: req.Filename,
		UploadedAt:       uploadTime,
		NObj:             run.List.Len(),
		FiberHours:       run.List.TotalFiberHours(),
		PPPStatus:        pkg.PPPStatus,
		OutputDir:        written.OutputDir,
		ZipFile:          written.ZipFile,
		FilesizeKB:       written.FilesizeKB,
	}
	if err := s.registry.Insert(ctx, rec); err != nil {
		metrics.UploadsSubmitted.WithLabelValues("failed").Inc()
		return nil, err
	}

	if s.index != nil {
		if err := s.index.Index(ctx, rec); err != nil {
			s.logger.WithError(err).Warn("search index update failed", map[string]interface{}{
				"upload_id": uploadID,
			})
		}
	}
	if s.notifier != nil {
		if err := s.notifier.SendReceipt(ctx, req.ContactEmail, rec); err != nil {
			s.logger.WithError(err).Warn("receipt email failed", map[string]interface{}{
				"upload_id": uploadID,
			})
		}
		if err := s.notifier.NotifyOperator(ctx, rec); err != nil {
			s.logger.WithError(err).Warn("operator notification failed", map[string]interface{}{
				"upload_id": uploadID,
			})
		}
	}

	metrics.UploadsSubmitted.WithLabelValues("accepted").Inc()
	s.logger.Info("submission packaged", map[string]interface{}{
		"upload_id": uploadID,
		"outdir":    written.OutputDir,
		"n_obj":     rec.NObj,
	})

	return &SubmitResult{
		UploadID:   uploadID,
		UploadedAt: uploadTime,
		OutputDir:  written.OutputDir,
		ZipFile:    written.ZipFile,
		NObj:       rec.NObj,
		FiberHours: rec.FiberHours,
		Assessment: run.Assessment,
	}, nil
}

// buildPackage assembles the submission package from a pipeline run,
// falling back to placeholder psl/ppc tables when the simulation was
// skipped.
func buildPackage(run *RunResult, req *RunRequest, uploadID string, uploadTime time.Time) *uploads.Package {
	pppStatus := run.Simulation != nil
	pkg := &uploads.Package{
		UploadID:         uploadID,
		UploadTime:       uploadTime,
		OriginalFilename: req.Filename,
		OriginalData:     req.Data,
		Target:           run.List.ToTable(),
		TargetSummary:    targets.SummaryTable(targets.Summarize(run.List), nil),
		PPPStatus:        pppStatus,
	}
	if pppStatus {
		pkg.PSL = planner.PSLTable(run.Simulation.Summary, nil)
		pkg.PPC = planner.PPCTable(run.Simulation.PPCs, nil)
	} else {
		pkg.PSL = planner.PlaceholderPSLTable(nil)
		pkg.PPC = planner.PlaceholderPPCTable(nil)
	}
	return pkg
}

// Export runs the pipeline and renders the package as an in-memory zip
// without registering anything. The zip carries no upload ID.
func (s *Service) Export(ctx context.Context, req *RunRequest) (string, *bytes.Buffer, error) {
	run, err := s.Run(ctx, req)
	if err != nil {
		return "", nil, err
	}

	pkg := buildPackage(run, req, "", time.Now().UTC())
	name, buf, err := uploads.Export(pkg)
	if err != nil {
		return "", nil, apperrors.NewStorageWriteFailedError(err)
	}
	s.logger.Info("submission exported", map[string]interface{}{
		"filename": req.Filename,
		"zip":      name,
	})
	return name, buf, nil
}

// RunJob executes one dequeued job. The job's declared format wins over
// the filename extension.
func (s *Service) RunJob(ctx context.Context, job *Job) error {
	req := &RunRequest{
		Filename:     job.OriginalFilename,
		Format:       job.Format,
		Data:         job.Data,
		DateBegin:    job.DateBegin,
		DateEnd:      job.DateEnd,
		ContactEmail: job.ContactEmail,
	}
	if job.Submit {
		_, err := s.Submit(ctx, req)
		return err
	}
	_, err := s.Run(ctx, req)
	return err
}
