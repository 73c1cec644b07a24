// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/triagem/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CheckinDependencies
	EventDependencies
	ReportDependencies
	ExportDependencies
}

// Server wires HTTP routes for the check-in API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	attendeesHandler *AttendeesHandler
	eventHandler     *EventHandler
	reportHandler    *ReportHandler
	exportHandler    *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		attendeesHandler: NewAttendeesHandler(deps),
		eventHandler:     NewEventHandler(deps),
		reportHandler:    NewReportHandler(deps),
		exportHandler:    NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /attendees", MetricsMiddleware(s.attendeesHandler.HandleList, "attendees"))
	mux.HandleFunc("POST /attendees", MetricsMiddleware(s.attendeesHandler.HandleCheckin, "attendees"))
	mux.HandleFunc("DELETE /attendees/{id}", MetricsMiddleware(s.attendeesHandler.HandleDelete, "attendee"))

	mux.HandleFunc("GET /event", MetricsMiddleware(s.eventHandler.HandleGet, "event"))
	mux.HandleFunc("PUT /event", MetricsMiddleware(s.eventHandler.HandleUpdate, "event"))
	mux.HandleFunc("POST /event/close", MetricsMiddleware(s.eventHandler.HandleClose, "event_close"))

	mux.HandleFunc("GET /summary", MetricsMiddleware(s.reportHandler.HandleSummary, "summary"))
	mux.HandleFunc("GET /report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("POST /reflection", MetricsMiddleware(s.reportHandler.HandleReflection, "reflection"))

	mux.HandleFunc("GET /export", MetricsMiddleware(s.exportHandler.HandleExport, "export"))

	logger.Get().Debug(ctx, "api routes registered")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
