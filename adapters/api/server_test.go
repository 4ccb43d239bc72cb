package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"designspace/app"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/run"
	"designspace/domain/schema"
	"designspace/internal"
	"designspace/internal/errors"
	"designspace/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRuns struct {
	mock.Mock
}

func (m *mockRuns) SaveRun(ctx context.Context, record *run.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockRuns) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*run.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRuns) ListRuns(ctx context.Context, limit int) ([]run.Manifest, error) {
	args := m.Called(ctx, limit)
	if ms, ok := args.Get(0).([]run.Manifest); ok {
		return ms, args.Error(1)
	}
	return nil, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, runs *mockRuns) (*Server, *app.AnalysisResult) {
	t.Helper()
	logger := internal.NewLogger(internal.LogLevelError)
	table := testkit.NewDesignSpaceGenerator(testkit.GeneratorConfig{ConditionsPerParadigm: 6, Seed: 11}).Generate()
	result, err := app.NewAnalysisService(schema.MustDefault(), app.DefaultAnalysisOptions(), nil, logger).
		Run(context.Background(), table)
	require.NoError(t, err)
	if runs == nil {
		return NewServer(result, nil, logger), result
	}
	return NewServer(result, runs, logger), result
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s, result := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, result.Manifest.RunID.String(), body["run_id"])
}

func TestPoints(t *testing.T) {
	s, result := newTestServer(t, nil)

	var all struct {
		Points []run.PlotPoint `json:"points"`
	}
	w := do(t, s, http.MethodGet, "/api/points", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &all)
	assert.Len(t, all.Points, len(result.Points))

	var interpolated struct {
		Points []run.PlotPoint `json:"points"`
	}
	w = do(t, s, http.MethodGet, "/api/points?type=Interpolated", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &interpolated)
	require.NotEmpty(t, interpolated.Points)
	for _, p := range interpolated.Points {
		assert.Equal(t, run.Interpolated, p.Type)
	}

	w = do(t, s, http.MethodGet, "/api/points?type=Imaginary", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCentroidsAndReconstructions(t *testing.T) {
	s, result := newTestServer(t, nil)

	var centroids struct {
		Centroids []run.PlotPoint `json:"centroids"`
	}
	w := do(t, s, http.MethodGet, "/api/centroids", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &centroids)
	assert.Len(t, centroids.Centroids, len(result.Centroids))

	var recs struct {
		Reconstructions []run.Reconstruction `json:"reconstructions"`
	}
	w = do(t, s, http.MethodGet, "/api/reconstructions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &recs)
	assert.Len(t, recs.Reconstructions, len(result.Reconstructions))
}

func TestFeaturesAndVocabulary(t *testing.T) {
	s, result := newTestServer(t, nil)

	var layout struct {
		Features []app.Feature `json:"features"`
		Views    []string      `json:"views"`
	}
	w := do(t, s, http.MethodGet, "/api/features", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &layout)
	assert.Len(t, layout.Features, result.Fitted().Width())
	assert.Equal(t, result.Views(), layout.Views)

	var vocab struct {
		Column     string   `json:"column"`
		Vocabulary []string `json:"vocabulary"`
	}
	w = do(t, s, http.MethodGet, "/api/vocabulary/Stimulus-Stimulus%20Congruency", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &vocab)
	assert.Equal(t, "Stimulus-Stimulus Congruency", vocab.Column)
	assert.Equal(t, result.Fitted().Vocabulary("Stimulus-Stimulus Congruency"), vocab.Vocabulary)

	w = do(t, s, http.MethodGet, "/api/vocabulary/RSI", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReport(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/api/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(t, s, http.MethodGet, "/api/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Design-space analysis"))
}

func TestClassify(t *testing.T) {
	s, _ := newTestServer(t, nil)

	raw := testkit.Fixture().Rows[1]
	w := do(t, s, http.MethodPost, "/api/classify", ClassifyRequest{Row: raw})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Paradigm paradigm.Paradigm `json:"paradigm"`
	}
	decode(t, w, &body)
	assert.Equal(t, paradigm.DualTask, body.Paradigm)

	w = do(t, s, http.MethodPost, "/api/classify", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInterpolate(t *testing.T) {
	s, _ := newTestServer(t, nil)

	alpha := 0.25
	w := do(t, s, http.MethodPost, "/api/interpolate", InterpolateRequest{
		From: string(paradigm.SingleTask), To: string(paradigm.DualTask), Alpha: &alpha,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec run.Reconstruction
	decode(t, w, &rec)
	assert.Equal(t, paradigm.SingleTask, rec.From)
	assert.Equal(t, 0.25, rec.Alpha)
	assert.True(t, rec.Repaired)
	assert.True(t, rec.Row.Get("Inter-task SOA").IsNA())
}

func TestInterpolateErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	alpha := 1.5
	w := do(t, s, http.MethodPost, "/api/interpolate", InterpolateRequest{
		From: string(paradigm.SingleTask), To: string(paradigm.DualTask), Alpha: &alpha,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	alpha = 0.5
	w = do(t, s, http.MethodPost, "/api/interpolate", InterpolateRequest{
		From: string(paradigm.SingleTask), To: string(paradigm.Other), Alpha: &alpha,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/api/interpolate", InterpolateRequest{
		From: "Triple-Task", To: string(paradigm.DualTask), Alpha: &alpha,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/interpolate", map[string]string{"from": "Single-Task", "to": "Dual-Task/PRP"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsEndpoints(t *testing.T) {
	runs := &mockRuns{}
	s, result := newTestServer(t, runs)
	id := result.Manifest.RunID

	runs.On("ListRuns", mock.Anything, 2).Return([]run.Manifest{result.Manifest}, nil).Once()
	w := do(t, s, http.MethodGet, "/api/runs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	runs.On("GetRun", mock.Anything, id).Return(result.Record(), nil).Once()
	w = do(t, s, http.MethodGet, "/api/runs/"+id.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	missing := core.NewRunID()
	runs.On("GetRun", mock.Anything, missing).
		Return(nil, errors.WithCode(errors.CodeNotFound, core.ErrRunNotFound)).Once()
	w = do(t, s, http.MethodGet, "/api/runs/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	runs.AssertExpectations(t)
}

func TestRunsEndpointsAbsentWithoutRepository(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/runs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
