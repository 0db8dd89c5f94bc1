package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/gradebook/internal/college"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/store"
)

const pingTimeout = 2 * time.Second

type healthResponse struct {
	Status   string                `json:"status"`
	Loads    college.LimiterStatus `json:"loads"`
	Database string                `json:"database"`
}

// handleHealth reports load slot usage and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Loads:    s.colleges.Limiter().Status(),
		Database: "disabled",
	}
	status := http.StatusOK

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		resp.Database = "ok"
		if err := s.store.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

// handleListColleges returns the college names under the data root.
func (s *Server) handleListColleges(w http.ResponseWriter, r *http.Request) {
	names, err := s.colleges.List()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"colleges": names})
}

// loadCollege loads the college named in the route. On failure it has
// already written the error response.
func (s *Server) loadCollege(w http.ResponseWriter, r *http.Request) (*core.Repository, bool) {
	repo, err := s.colleges.Load(r.Context(), chi.URLParam(r, "college"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return repo, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.loadCollege(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, core.Summarize(repo))
}

func (s *Server) handleMajors(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.loadCollege(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, core.SummarizeMajors(repo))
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.loadCollege(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, core.SummarizeStudents(repo))
}

func (s *Server) handleInstructors(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.loadCollege(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, core.SummarizeInstructors(repo))
}

type collegeResult struct {
	College string         `json:"college"`
	Summary *core.Summary  `json:"summary,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// handleAllSummaries loads every college. A college that fails to load
// carries its error in place of a summary; the rest are unaffected.
func (s *Server) handleAllSummaries(w http.ResponseWriter, r *http.Request) {
	results, err := s.colleges.LoadAll(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]collegeResult, 0, len(results))
	for _, res := range results {
		cr := collegeResult{College: res.Name}
		if res.Err != nil {
			e := newErrorResponse(res.Err)
			cr.Error = &e
		} else {
			sum := core.Summarize(res.Repo)
			cr.Summary = &sum
		}
		out = append(out, cr)
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePersist loads a college and saves it as a new load.
func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, r, store.ErrNotConfigured)
		return
	}

	repo, ok := s.loadCollege(w, r)
	if !ok {
		return
	}

	result, err := s.store.Save(r.Context(), repo)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("save %s: %w", repo.College, err))
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type storedInstructorsResponse struct {
	LoadID      uuid.UUID                `json:"load_id"`
	Instructors []core.InstructorSummary `json:"instructors"`
}

// handleStoredInstructors answers the instructor summary from the
// database. It reads the load given by ?load_id, which must belong to the
// college in the route, or the latest load of the college.
func (s *Server) handleStoredInstructors(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, r, store.ErrNotConfigured)
		return
	}

	name := chi.URLParam(r, "college")
	load, err := s.storedLoad(r.Context(), name, r.URL.Query().Get("load_id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rows, err := s.store.InstructorSummary(r.Context(), load.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storedInstructorsResponse{LoadID: load.ID, Instructors: rows})
}

// storedLoad resolves the load to read for college. A load saved for
// another college is reported as missing.
func (s *Server) storedLoad(ctx context.Context, college, rawID string) (store.Load, error) {
	if rawID == "" {
		return s.store.LatestLoad(ctx, college)
	}

	id, err := parseLoadID(rawID)
	if err != nil {
		return store.Load{}, err
	}
	load, err := s.store.LoadByID(ctx, id)
	if err != nil {
		return store.Load{}, err
	}
	if load.College != college {
		return store.Load{}, fmt.Errorf("%w: %s for college %q", store.ErrNoLoad, id, college)
	}
	return load, nil
}

// handleDeleteLoad removes a saved load.
func (s *Server) handleDeleteLoad(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, r, store.ErrNotConfigured)
		return
	}

	id, err := parseLoadID(chi.URLParam(r, "loadID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.DeleteLoad(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseLoadID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", errInvalidLoadID, raw)
	}
	return id, nil
}
