package api

import (
	"net/http"
	"strconv"

	"designspace/app"
	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/run"
	"designspace/internal/errors"
	"designspace/internal/report"
	"designspace/ports"

	"github.com/gin-gonic/gin"
)

// Handler serves a completed analysis
type Handler struct {
	result *app.AnalysisResult
}

// NewHandler creates a handler over result
func NewHandler(result *app.AnalysisResult) *Handler {
	return &Handler{result: result}
}

// Health reports liveness and the run being served
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"run_id":         h.result.Manifest.RunID,
		"schema_version": h.result.Manifest.SchemaVersion,
		"conditions":     h.result.Manifest.Rows,
	})
}

// Points lists plot points, optionally filtered with ?type=
func (h *Handler) Points(c *gin.Context) {
	t := run.PointType(c.Query("type"))
	switch t {
	case "", run.Empirical, run.Centroid, run.Interpolated:
	default:
		respondError(c, errors.InvalidInput("unknown point type "+strconv.Quote(string(t))))
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": h.result.PointsOf(t)})
}

// Centroids lists the paradigm centroids
func (h *Handler) Centroids(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"centroids": h.result.PointsOf(run.Centroid)})
}

// Reconstructions lists reconstructed synthetic conditions and skipped pairs
func (h *Handler) Reconstructions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reconstructions": h.result.Reconstructions,
		"skipped":         h.result.Skipped,
	})
}

// Features lists the encoded layout and the schema views
func (h *Handler) Features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": h.result.Features(),
		"views":    h.result.Views(),
	})
}

// Vocabulary lists the fitted codes of one categorical column
func (h *Handler) Vocabulary(c *gin.Context) {
	column := c.Param("column")
	vocab, err := h.result.Vocabulary(column)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "vocabulary": vocab})
}

// Report renders the run report as HTML
func (h *Handler) Report(c *gin.Context) {
	md := report.Markdown(h.result.Document(""))
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(md))
}

// ClassifyRequest is one raw condition keyed by column name
type ClassifyRequest struct {
	Row map[string]string `json:"row" binding:"required"`
}

// Classify cleans and labels one raw condition
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	row, p := h.result.Classify(condition.RawRow(req.Row))
	c.JSON(http.StatusOK, gin.H{"paradigm": p, "row": row})
}

// InterpolateRequest names two paradigms and a mixing factor
type InterpolateRequest struct {
	From  string   `json:"from" binding:"required"`
	To    string   `json:"to" binding:"required"`
	Alpha *float64 `json:"alpha" binding:"required"`
}

// Interpolate reconstructs and repairs one point between two centroids
func (h *Handler) Interpolate(c *gin.Context) {
	var req InterpolateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	from, err := paradigm.Parse(req.From)
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	to, err := paradigm.Parse(req.To)
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	rec, err := h.result.Interpolate(from, to, *req.Alpha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// RunHandler serves stored runs
type RunHandler struct {
	runs ports.RunRepository
}

// NewRunHandler creates a stored-run handler
func NewRunHandler(runs ports.RunRepository) *RunHandler {
	return &RunHandler{runs: runs}
}

// List returns recent run manifests; ?limit= caps the count
func (h *RunHandler) List(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(c, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Get returns one stored run
func (h *RunHandler) Get(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	rec, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
