package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// handlePage renders the gradebook page on the tab named by ?tab=.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := templates.PageData{Tab: r.URL.Query().Get("tab")}
	if !templates.ValidTab(data.Tab) {
		data.Tab = templates.TabUpload
	}

	if err := s.loadPage(r, &data); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.renderHTML(w, r, http.StatusOK, templates.Page(data))
}

// loadPage fills the table and, for the statistics and charts tabs, the
// statistics. A missing table is not an error for the page.
func (s *Server) loadPage(r *http.Request, data *templates.PageData) error {
	view, err := s.service.Table(r.Context())
	if errors.Is(err, core.ErrNoTable) {
		return nil
	}
	if err != nil {
		return err
	}
	data.Table = &view

	if data.Tab != templates.TabStatistics && data.Tab != templates.TabCharts {
		return nil
	}
	report, err := s.service.Statistics(r.Context())
	if err != nil {
		return err
	}
	data.Statistics = &report
	return nil
}
