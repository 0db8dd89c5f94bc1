package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/web/templates"
)

// handleInstructorsPage renders the instructor summary of a college as HTML.
func (s *Server) handleInstructorsPage(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.loadCollege(w, r)
	if !ok {
		return
	}

	page := templates.Page(repo.College, templates.InstructorTable(repo.College, core.SummarizeInstructors(repo)))
	templ.Handler(page).ServeHTTP(w, r)
}
