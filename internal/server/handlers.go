// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/simulation"
	"pfs-target-uploader/internal/targets"
	"pfs-target-uploader/internal/uploads"
)

// errorEnvelope is the JSON error body of every failed API call.
type errorEnvelope struct {
	Error *apperrors.StandardError `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var se *apperrors.StandardError
	if !errors.As(err, &se) {
		se = &apperrors.StandardError{
			Code:      "INTERNAL_ERROR",
			Message:   "Internal server error",
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
		}
	}
	s.writeJSON(w, apperrors.HTTPStatus(se), errorEnvelope{Error: se})
}

// readUpload extracts the uploaded target list and the observation-period
// form fields from a multipart request, enforcing the upload size cap.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*simulation.RunRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		return nil, apperrors.NewTargetListFormatInvalidError(err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, apperrors.NewTargetListFormatInvalidError("missing `file` form field")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.NewTargetListFormatInvalidError(err.Error())
	}
	if len(data) == 0 {
		return nil, apperrors.NewEmptyTargetListError()
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".ecsv" {
		return nil, apperrors.NewTargetListFormatInvalidError("only CSV or ECSV format is supported")
	}

	req := &simulation.RunRequest{
		Filename:     filepath.Base(header.Filename),
		Format:       strings.TrimPrefix(ext, "."),
		Data:         data,
		DateBegin:    r.FormValue("date_begin"),
		DateEnd:      r.FormValue("date_end"),
		ContactEmail: r.FormValue("contact_email"),
	}
	if req.DateBegin == "" || req.DateEnd == "" {
		// Default to the upcoming semester, HST.
		loc, _ := time.LoadLocation(s.cfg.Semester.Timezone)
		begin, end := targets.NextSemesterRange(time.Now(), loc)
		req.DateBegin = begin.Format("2006-01-02")
		req.DateEnd = end.Format("2006-01-02")
	}
	return req, nil
}

// handleValidate runs the staged validation and returns the full report.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	_, result, err := s.service.LoadAndValidate(req.Filename, req.Format, req.Data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"validation": result,
		"errors":     result.Errors(),
	})
}

// handleSimulate runs the pipeline synchronously, or enqueues it with
// ?async=1 and returns the job ID.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("async") == "1" {
		if s.queue == nil {
			s.writeError(w, apperrors.NewQueueUnavailableError(
				errors.New("async simulation is not enabled")))
			return
		}
		job := simulation.NewJob(req.Filename, req.Format, req.Data, req.DateBegin, req.DateEnd, false)
		job.ContactEmail = req.ContactEmail
		if err := s.queue.Enqueue(r.Context(), job); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
		return
	}

	result, err := s.service.Run(r.Context(), req)
	if err != nil {
		// A failed validation still returns its report.
		if result != nil && result.Validation != nil &&
			apperrors.CodeOf(err) == apperrors.ErrCodeValidationFailed {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"validation": result.Validation,
				"errors":     result.Validation.Errors(),
			})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleSubmit re-runs the pipeline and packages the submission.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.service.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, result)
}

// handleExport runs the pipeline and streams the submission package as a
// zip, without registering an upload.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	name, buf, err := s.service.Export(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.WithError(err).Error("failed to stream export zip", nil)
	}
}

// handleListUploads returns uploads, newest first. ?q= searches the index
// when one is wired; ?source=disk rebuilds the listing from the data
// directory instead of the registry.
func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if r.URL.Query().Get("source") == "disk" {
		props, err := uploads.ScanDataDir(r.Context(), s.cfg.Storage.OutputDir, 0, s.logger)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if len(props) > limit {
			props = props[:limit]
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"uploads": props})
		return
	}

	if q := r.URL.Query().Get("q"); q != "" && s.search != nil {
		records, err := s.search.Search(r.Context(), q, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"uploads": records})
		return
	}

	records, err := s.registry.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"uploads": records})
}

// handleGetUpload returns one upload record by ID.
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	rec, err := s.registry.GetByID(r.Context(), uploadID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleHealthz pings the wired dependencies.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	report := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			report[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			report[name] = "ok"
		}
	}
	s.writeJSON(w, status, map[string]interface{}{
		"status": http.StatusText(status),
		"checks": report,
	})
}
