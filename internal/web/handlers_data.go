package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// handleExport downloads the table as txt or csv, or its statistics as xlsx.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseExportKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	export, err := s.service.Export(r.Context(), kind)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(export.Data)
}

func (s *Server) handleAPITable(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Table(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	render.JSON(w, r, view)
}

func (s *Server) handleAPIStatistics(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Statistics(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	render.JSON(w, r, report)
}

// handleAPIChart returns chart series for /api/charts/{class|student}.
func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	grouping := core.Grouping(chi.URLParam(r, "grouping"))
	if grouping != core.GroupByClass && grouping != core.GroupByStudent {
		s.respondError(w, r, fmt.Errorf("%w %q", errUnknownGroup, grouping), http.StatusBadRequest)
		return
	}

	chart, err := s.service.Chart(r.Context(), grouping)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	render.JSON(w, r, chart)
}
