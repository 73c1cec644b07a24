package api

import (
	"context"
	"net/http"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/report"
)

// ReportDependencies defines the interface for the read side.
type ReportDependencies interface {
	Summary(ctx context.Context) (aggregate.Summary, error)
	Report(ctx context.Context) (report.Layout, error)
	ReportFileName(ctx context.Context) string
	Reflection(ctx context.Context) (string, error)
}

// ReportHandler serves dashboard counts, the report layout and reflections.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

type reportResponse struct {
	FileName string        `json:"file_name"`
	Layout   report.Layout `json:"layout"`
}

type reflectionResponse struct {
	Message string `json:"message"`
}

// HandleSummary handles GET /summary requests.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Summary(r.Context())
	if err != nil {
		writeError(w, Wrap("api.summary", err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleReport handles GET /report requests.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	l, err := h.deps.Report(r.Context())
	if err != nil {
		writeError(w, Wrap("api.report", err))
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{FileName: h.deps.ReportFileName(r.Context()), Layout: l})
}

// HandleReflection handles POST /reflection requests.
func (h *ReportHandler) HandleReflection(w http.ResponseWriter, r *http.Request) {
	msg, err := h.deps.Reflection(r.Context())
	if err != nil {
		writeError(w, Wrap("api.reflection", err))
		return
	}
	writeJSON(w, http.StatusOK, reflectionResponse{Message: msg})
}
