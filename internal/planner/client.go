// internal/planner/client.go
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	apperrors "pfs-target-uploader/internal/common/errors"
	commonhttp "pfs-target-uploader/internal/common/http"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/targets"
)

// Client is a JSON client for the pointing-planner service.
type Client struct {
	baseURL string
	http    *commonhttp.Client
	logger  logger.Logger
}

// NewClient creates a planner client against baseURL.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    commonhttp.NewClient(timeout),
		logger:  log,
	}
}

// VisibilityRequest asks which targets fit their requested exposure time
// inside the nightly windows of the observation period.
type VisibilityRequest struct {
	Targets      []targets.Target `json:"targets"`
	DateBegin    string           `json:"date_begin"` // YYYY-MM-DD, HST
	DateEnd      string           `json:"date_end"`   // YYYY-MM-DD, HST
	MinElevation float64          `json:"min_elevation"`
	MaxElevation float64          `json:"max_elevation"`
}

// VisibilityResponse carries the per-target observable flags, index
// aligned with the request.
type VisibilityResponse struct {
	Observable []bool `json:"observable"`
}

// SimulateRequest runs the pointing simulation over the visible targets.
type SimulateRequest struct {
	Targets         []targets.Target `json:"targets"`
	Weights         []float64        `json:"weights"`
	SolverBudgetSec int              `json:"solver_budget_sec"`
	DateBegin       string           `json:"date_begin"`
	DateEnd         string           `json:"date_end"`
}

// CheckVisibility calls POST /visibility.
func (c *Client) CheckVisibility(ctx context.Context, req *VisibilityRequest) ([]bool, error) {
	if len(req.Targets) == 0 {
		return []bool{}, nil
	}
	var resp VisibilityResponse
	if err := c.post(ctx, "/visibility", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Observable) != len(req.Targets) {
		return nil, apperrors.NewPlannerUnavailableError(
			fmt.Errorf("visibility response has %d flags for %d targets",
				len(resp.Observable), len(req.Targets)))
	}
	return resp.Observable, nil
}

// Simulate calls POST /simulate.
func (c *Client) Simulate(ctx context.Context, req *SimulateRequest) (*Result, error) {
	if len(req.Weights) == 0 {
		req.Weights = DefaultWeights
	}
	var resp Result
	if err := c.post(ctx, "/simulate", req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != StatusComplete && resp.Status != StatusTruncated {
		return nil, apperrors.NewPlannerUnavailableError(
			fmt.Errorf("unexpected solver status %d", resp.Status))
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewPlannerUnavailableError(err)
	}

	start := time.Now()
	resp, err := c.http.PostJSON(ctx, c.baseURL+path, payload)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("planner request timed out", map[string]interface{}{
				"path":     path,
				"duration": time.Since(start).String(),
			})
			return apperrors.NewPlannerTimeoutError()
		}
		return apperrors.NewPlannerUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.NewPlannerUnavailableError(
			fmt.Errorf("planner returned %d: %s", resp.StatusCode, string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewPlannerUnavailableError(err)
	}

	c.logger.Debug("planner request completed", map[string]interface{}{
		"path":     path,
		"duration": time.Since(start).String(),
	})
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
