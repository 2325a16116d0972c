package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// handleStudentForm adds or updates a student from the page form and
// redirects back to the table.
func (s *Server) handleStudentForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadBody, err), http.StatusBadRequest)
		return
	}

	form := core.StudentForm{
		Name:  r.PostForm.Get("name"),
		Class: r.PostForm.Get("class"),
	}
	for _, subj := range core.Subjects() {
		form.Grades[subj] = r.PostForm.Get(templates.GradeField(subj))
	}

	if _, err := s.service.Upsert(r.Context(), form); err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}

	http.Redirect(w, r, "/?tab="+templates.TabTable, http.StatusSeeOther)
}

// handleDeleteRowForm deletes a row from the page and redirects back.
func (s *Server) handleDeleteRowForm(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteRow(r); err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	http.Redirect(w, r, "/?tab="+templates.TabTable, http.StatusSeeOther)
}

// handleAPIUpsert adds or updates a student from a JSON body.
// Responds 201 for a new row, 200 for an update.
func (s *Server) handleAPIUpsert(w http.ResponseWriter, r *http.Request) {
	var form core.StudentForm
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadBody, err), http.StatusBadRequest)
		return
	}

	res, err := s.service.Upsert(r.Context(), form)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}

	if res.Created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, res)
}

// handleAPIDeleteStudent deletes the row of the named student.
func (s *Server) handleAPIDeleteStudent(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadBody, err), http.StatusBadRequest)
		return
	}

	if err := s.service.DeleteStudent(r.Context(), name); err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAPIDeleteRow deletes a row by 0-based index.
func (s *Server) handleAPIDeleteRow(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteRow(r); err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteRow(r *http.Request) error {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return fmt.Errorf("%w: %q", errBadRowIndex, chi.URLParam(r, "index"))
	}
	return s.service.DeleteRow(r.Context(), index)
}
