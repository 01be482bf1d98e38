// internal/planner/client_test.go
package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/targets"
)

func testTargets(n int) []targets.Target {
	out := make([]targets.Target, n)
	for i := range out {
		out[i] = targets.Target{
			ObjID:      int64(i + 1),
			ObCode:     "obj",
			RA:         150.0,
			Dec:        2.0,
			Equinox:    "J2000.0",
			Exptime:    900,
			Resolution: "L",
		}
	}
	return out
}

func TestCheckVisibility(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/visibility", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req VisibilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Targets, 2)
		assert.Equal(t, "2026-08-01", req.DateBegin)

		json.NewEncoder(w).Encode(VisibilityResponse{Observable: []bool{true, false}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	flags, err := c.CheckVisibility(context.Background(), &VisibilityRequest{
		Targets:   testTargets(2),
		DateBegin: "2026-08-01",
		DateEnd:   "2027-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, flags)
}

func TestCheckVisibility_NoTargets(t *testing.T) {
	c := NewClient("http://planner.invalid", time.Second, logger.NewNoOpLogger())
	flags, err := c.CheckVisibility(context.Background(), &VisibilityRequest{})
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestCheckVisibility_FlagCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VisibilityResponse{Observable: []bool{true}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	_, err := c.CheckVisibility(context.Background(), &VisibilityRequest{Targets: testTargets(3)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePlannerUnavailable, apperrors.CodeOf(err))
}

func TestSimulate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simulate", r.URL.Path)

		var req SimulateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultWeights, req.Weights)
		assert.Equal(t, 900, req.SolverBudgetSec)

		json.NewEncoder(w).Encode(Result{
			Status: StatusComplete,
			PPCs:   []PPC{{Code: "PPC_L_1", RA: 150.0, Dec: 2.0, Resolution: "L"}},
			Summary: []ResolutionSummary{
				{Resolution: "low", NPPC: 1, RequestTimeHours: 0.3},
				{Resolution: "total", NPPC: 1, RequestTimeHours: 0.3},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	res, err := c.Simulate(context.Background(), &SimulateRequest{
		Targets:         testTargets(1),
		SolverBudgetSec: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, res.Status)
	require.Len(t, res.PPCs, 1)
	assert.Equal(t, "PPC_L_1", res.PPCs[0].Code)
}

func TestSimulate_TruncatedStatusAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Status: StatusTruncated})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	res, err := c.Simulate(context.Background(), &SimulateRequest{Targets: testTargets(1)})
	require.NoError(t, err)
	assert.Equal(t, StatusTruncated, res.Status)
}

func TestSimulate_UnknownStatusRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Status: 42})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	_, err := c.Simulate(context.Background(), &SimulateRequest{Targets: testTargets(1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePlannerUnavailable, apperrors.CodeOf(err))
}

func TestPost_ServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "solver crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	_, err := c.Simulate(context.Background(), &SimulateRequest{Targets: testTargets(1)})
	require.Error(t, err)

	var se *apperrors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, apperrors.ErrCodePlannerUnavailable, se.Code)
	assert.Contains(t, se.Details, "solver crashed")
	assert.True(t, se.Retryable)
}

func TestPost_TimeoutMapsToTimeoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, logger.NewNoOpLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Simulate(ctx, &SimulateRequest{Targets: testTargets(1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePlannerTimeout, apperrors.CodeOf(err))
}
