package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/triagem/internal/app"
	"github.com/okian/triagem/internal/domain/report"
)

// ExportDependencies defines the interface for event backups.
type ExportDependencies interface {
	Export(ctx context.Context) (service.Backup, error)
}

// ExportHandler serves backup downloads.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

var csvHeader = []string{"id", "role", "ministry", "instrument", "level", "city", "timestamp"}

// HandleExport handles GET /export?format=json|csv requests.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("unknown format %q", format)))
		return
	}

	b, err := h.deps.Export(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	name := report.BackupFileName(b.ExportedAt) + "." + format
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if format == "json" {
		writeJSON(w, http.StatusOK, b)
		return
	}
	data, err := encodeCSV(b)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func encodeCSV(b service.Backup) ([]byte, error) {
	buf := &bytes.Buffer{}
	cw := csv.NewWriter(buf)
	_ = cw.Write(csvHeader)
	for _, a := range b.Attendees {
		rec := []string{
			a.ID,
			string(a.Role),
			string(a.Ministry),
			a.Instrument,
			string(a.Level),
			a.City,
			a.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
