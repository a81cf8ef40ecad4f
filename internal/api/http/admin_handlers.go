package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/report"
)

// GET /api/admin/stats
func StatsHandler(reports *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := reports.Stats(r.Context())
		if err != nil {
			api.Internal(w, "dashboard stats", err, "Failed to fetch dashboard stats")
			return
		}
		api.WriteOK(w, map[string]any{"stats": st})
	}
}

// GET /api/admin/results
func ResultsHandler(reports *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := reports.StudentResults(r.Context())
		if err != nil {
			api.Internal(w, "student results", err, "Failed to fetch results")
			return
		}
		api.WriteOK(w, map[string]any{"results": rows})
	}
}

type exportFunc func(ctx context.Context) (report.File, error)

// GET /api/admin/export/{csv|json|xlsx}  served as an attachment
func ExportHandler(export exportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := export(r.Context())
		if errors.Is(err, report.ErrNoData) {
			api.WriteErr(w, api.CodeExport, "No data to export")
			return
		}
		if err != nil {
			api.Internal(w, "export", err, "Failed to export data")
			return
		}
		w.Header().Set("Content-Type", f.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(f.Data)
	}
}
