package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// maxMemory is the part of a multipart form kept in memory; larger files
// spill to temporary files.
const maxMemory = 8 << 20

// pastedSource names imports that came from the text area.
const pastedSource = "pasted text"

// handleUpload replaces the table with an uploaded file or pasted text.
// JSON clients get the ImportResult; browsers get the upload tab with the
// import summary.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.service.Config().MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
		return
	}

	result, err := s.importRequest(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
		return
	}

	if wantsJSON(r) {
		render.JSON(w, r, result)
		return
	}

	data := templates.PageData{Tab: templates.TabUpload, Import: &result}
	if err := s.loadPage(r, &data); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.renderHTML(w, r, http.StatusOK, templates.Page(data))
}

func (s *Server) importRequest(r *http.Request) (core.ImportResult, error) {
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		return s.service.Import(r.Context(), file, header.Filename)

	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		text := r.FormValue("text")
		if strings.TrimSpace(text) == "" {
			return core.ImportResult{}, errNoFile
		}
		return s.service.ImportText(r.Context(), text, pastedSource)

	default:
		return core.ImportResult{}, err
	}
}
