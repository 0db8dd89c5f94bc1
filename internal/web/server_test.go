package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/gradebook/internal/college"
	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/store"
)

var stevensFiles = map[string]string{
	"majors.txt":      "SFEN\tR\tSSW 540\nSFEN\tR\tSSW 564\nSFEN\tE\tCS 501\n",
	"students.txt":    "10103\tBaldwin, C\tSFEN\n10115\tWyatt, X\tSFEN\n",
	"instructors.txt": "98765\tEinstein, A\tSFEN\n98764\tFeynman, R\tSFEN\n",
	"grades.txt": "10103\tSSW 540\tA\t98765\n" +
		"10115\tSSW 540\tB\t98765\n" +
		"10103\tCS 501\tB\t98764\n",
}

// withFile returns a copy of stevensFiles with one file replaced, or
// removed when content is empty.
func withFile(name, content string) map[string]string {
	out := make(map[string]string, len(stevensFiles))
	for k, v := range stevensFiles {
		out[k] = v
	}
	if content == "" {
		delete(out, name)
	} else {
		out[name] = content
	}
	return out
}

func writeRoot(t *testing.T, colleges map[string]map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, files := range colleges {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for file, content := range files {
			if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

// fakeStore keeps saved instructor summaries in memory.
type fakeStore struct {
	mu      sync.Mutex
	pingErr error
	saves   int
	loads   map[uuid.UUID][]core.InstructorSummary
	owners  map[uuid.UUID]string
	latest  map[string]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		loads:  make(map[uuid.UUID][]core.InstructorSummary),
		owners: make(map[uuid.UUID]string),
		latest: make(map[string]uuid.UUID),
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) Save(ctx context.Context, repo *core.Repository) (store.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := core.SummarizeInstructors(repo)
	f.loads[repo.LoadID] = rows
	f.owners[repo.LoadID] = repo.College
	f.latest[repo.College] = repo.LoadID
	f.saves++
	return store.SaveResult{
		LoadID: repo.LoadID,
		Rows: map[string]int64{
			"students":           int64(len(repo.Students)),
			"instructor_courses": int64(len(rows)),
		},
	}, nil
}

func (f *fakeStore) LatestLoad(ctx context.Context, name string) (store.Load, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.latest[name]
	if !ok {
		return store.Load{}, fmt.Errorf("%w for college %q", store.ErrNoLoad, name)
	}
	return store.Load{ID: id, College: name, LoadedAt: time.Now()}, nil
}

func (f *fakeStore) LoadByID(ctx context.Context, id uuid.UUID) (store.Load, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.owners[id]
	if !ok {
		return store.Load{}, fmt.Errorf("%w: %s", store.ErrNoLoad, id)
	}
	return store.Load{ID: id, College: name, LoadedAt: time.Now()}, nil
}

func (f *fakeStore) InstructorSummary(ctx context.Context, id uuid.UUID) ([]core.InstructorSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows, ok := f.loads[id]
	if !ok {
		return []core.InstructorSummary{}, nil
	}
	return rows, nil
}

func (f *fakeStore) DeleteLoad(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.loads[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNoLoad, id)
	}
	delete(f.loads, id)
	delete(f.owners, id)
	for name, latest := range f.latest {
		if latest == id {
			delete(f.latest, name)
		}
	}
	return nil
}

func newTestServer(t *testing.T, st LoadStore) *Server {
	t.Helper()
	root := writeRoot(t, map[string]map[string]string{
		"stevens": stevensFiles,
		"broken":  withFile("grades.txt", "99999\tSSW 540\tA\t98765\n"),
		"partial": withFile("grades.txt", ""),
	})
	svc := college.NewService(root, core.LoadOptions{}, 2)
	return NewServer(svc, st, config.ServerConfig{RequestTimeout: 10 * time.Second})
}

func do(t *testing.T, s *Server, method, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

// summaryJSON mirrors core.Summary with course sets decoded as lists.
type summaryJSON struct {
	College  string              `json:"college"`
	Majors   []core.MajorSummary `json:"majors"`
	Students []struct {
		CWID      string   `json:"cwid"`
		Completed []string `json:"completed"`
	} `json:"students"`
	Instructors []core.InstructorSummary `json:"instructors"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		store      LoadStore
		wantStatus int
		wantDB     string
	}{
		{"no store", nil, http.StatusOK, "disabled"},
		{"store up", newFakeStore(), http.StatusOK, "ok"},
		{"store down", &fakeStore{pingErr: errors.New("connection refused")}, http.StatusServiceUnavailable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.store), http.MethodGet, "/healthz", nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decode[healthResponse](t, rec)
			if got.Database != tt.wantDB {
				t.Errorf("database = %q, want %q", got.Database, tt.wantDB)
			}
			if got.Loads.MaxParallel != 2 || got.Loads.Active != 0 {
				t.Errorf("loads = %+v", got.Loads)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", nil)
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestListColleges(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/colleges", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[map[string][]string](t, rec)
	if want := []string{"broken", "partial", "stevens"}; !reflect.DeepEqual(got["colleges"], want) {
		t.Errorf("colleges = %v, want %v", got["colleges"], want)
	}
}

func TestSummary(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/colleges/stevens/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	got := decode[summaryJSON](t, rec)
	if got.College != "stevens" {
		t.Errorf("college = %q", got.College)
	}
	if len(got.Majors) != 1 || len(got.Students) != 2 {
		t.Errorf("majors = %d, students = %d", len(got.Majors), len(got.Students))
	}
	wantInstructors := []core.InstructorSummary{
		{CWID: "98764", Name: "Feynman, R", Department: "SFEN", Course: "CS 501", Students: 1},
		{CWID: "98765", Name: "Einstein, A", Department: "SFEN", Course: "SSW 540", Students: 2},
	}
	if !reflect.DeepEqual(got.Instructors, wantInstructors) {
		t.Errorf("instructors = %+v\nwant %+v", got.Instructors, wantInstructors)
	}
}

func TestStudents(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/colleges/stevens/students", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	type student struct {
		CWID               string   `json:"cwid"`
		Completed          []string `json:"completed"`
		RequiredRemaining  []string `json:"required_remaining"`
		ElectivesRemaining []string `json:"electives_remaining"`
	}
	got := decode[[]student](t, rec)
	want := []student{
		{CWID: "10103", Completed: []string{"CS 501", "SSW 540"}, RequiredRemaining: []string{"SSW 564"}, ElectivesRemaining: []string{}},
		{CWID: "10115", Completed: []string{"SSW 540"}, RequiredRemaining: []string{"SSW 564"}, ElectivesRemaining: []string{"CS 501"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("students = %+v\nwant %+v", got, want)
	}
}

func TestMajorsAndInstructors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/colleges/stevens/majors", nil)
	majors := decode[[]core.MajorSummary](t, rec)
	want := []core.MajorSummary{{Name: "SFEN", Required: []string{"SSW 540", "SSW 564"}, Electives: []string{"CS 501"}}}
	if !reflect.DeepEqual(majors, want) {
		t.Errorf("majors = %+v, want %+v", majors, want)
	}

	rec = do(t, s, http.MethodGet, "/api/colleges/stevens/instructors", nil)
	if rows := decode[[]core.InstructorSummary](t, rec); len(rows) != 2 {
		t.Errorf("got %d instructor rows, want 2", len(rows))
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"unknown college", "/api/colleges/mit/summary", http.StatusNotFound, "COL001"},
		{"escaping name", "/api/colleges/..%2Fstevens/summary", http.StatusNotFound, "COL001"},
		{"missing file", "/api/colleges/partial/summary", http.StatusNotFound, "FILE001"},
		{"bad reference", "/api/colleges/broken/students", http.StatusUnprocessableEntity, "REF002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, nil), http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decode[ErrorResponse](t, rec)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message == "" || got.Error != got.Message {
				t.Errorf("response = %+v", got)
			}
		})
	}
}

func TestLoadBusy(t *testing.T) {
	root := writeRoot(t, map[string]map[string]string{"stevens": stevensFiles})
	svc := college.NewService(root, core.LoadOptions{}, 1, college.WithMaxWait(20*time.Millisecond))
	s := NewServer(svc, nil, config.ServerConfig{})

	if err := svc.Limiter().Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.Limiter().Release()

	rec := do(t, s, http.MethodGet, "/api/colleges/stevens/summary", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "COL002" {
		t.Errorf("code = %q, want COL002", got.Code)
	}
}

func TestAllSummaries(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/summaries", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	type result struct {
		College string         `json:"college"`
		Summary *summaryJSON   `json:"summary"`
		Error   *ErrorResponse `json:"error"`
	}
	got := decode[[]result](t, rec)
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}

	byName := map[string]result{}
	for _, r := range got {
		byName[r.College] = r
	}
	if r := byName["stevens"]; r.Summary == nil || r.Error != nil || len(r.Summary.Instructors) != 2 {
		t.Errorf("stevens = %+v", r)
	}
	if r := byName["broken"]; r.Error == nil || r.Error.Code != "REF002" || r.Summary != nil {
		t.Errorf("broken = %+v", r)
	}
	if r := byName["partial"]; r.Error == nil || r.Error.Code != "FILE001" {
		t.Errorf("partial = %+v", r)
	}
}

func TestAllSummaries_UngradedCollege(t *testing.T) {
	// Empty grades file: every instructor has zero graded courses.
	files := withFile("grades.txt", "")
	files["grades.txt"] = ""
	root := writeRoot(t, map[string]map[string]string{"ungraded": files})
	s := NewServer(college.NewService(root, core.LoadOptions{}, 2), nil, config.ServerConfig{})

	for _, path := range []string{"/api/summaries", "/api/colleges/ungraded/summary", "/api/colleges/ungraded/instructors"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			body := rec.Body.String()
			if strings.Contains(body, "null") {
				t.Errorf("body contains null: %s", body)
			}
		})
	}
}

func TestPersistence_NoStore(t *testing.T) {
	s := newTestServer(t, nil)
	for _, req := range []struct{ method, path string }{
		{http.MethodPost, "/api/colleges/stevens/persist"},
		{http.MethodGet, "/api/colleges/stevens/stored-instructors"},
		{http.MethodDelete, "/api/loads/" + uuid.NewString()},
	} {
		t.Run(req.method+" "+req.path, func(t *testing.T) {
			rec := do(t, s, req.method, req.path, nil)
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", rec.Code)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != "DB001" {
				t.Errorf("code = %q, want DB001", got.Code)
			}
		})
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	st := newFakeStore()
	s := newTestServer(t, st)

	rec := do(t, s, http.MethodGet, "/api/colleges/stevens/stored-instructors", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("before save: status = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/colleges/stevens/persist", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("persist status = %d: %s", rec.Code, rec.Body)
	}
	saved := decode[store.SaveResult](t, rec)
	if saved.LoadID == uuid.Nil || saved.Rows["students"] != 2 {
		t.Errorf("save result = %+v", saved)
	}

	rec = do(t, s, http.MethodGet, "/api/colleges/stevens/stored-instructors", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stored-instructors status = %d", rec.Code)
	}
	stored := decode[storedInstructorsResponse](t, rec)
	if stored.LoadID != saved.LoadID || len(stored.Instructors) != 2 {
		t.Errorf("stored = %+v", stored)
	}

	rec = do(t, s, http.MethodGet, "/api/colleges/stevens/stored-instructors?load_id="+saved.LoadID.String(), nil)
	if got := decode[storedInstructorsResponse](t, rec); got.LoadID != saved.LoadID {
		t.Errorf("by id: load_id = %s", got.LoadID)
	}

	rec = do(t, s, http.MethodDelete, "/api/loads/"+saved.LoadID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/loads/"+saved.LoadID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestPersistence_LoadBelongsToCollege(t *testing.T) {
	root := writeRoot(t, map[string]map[string]string{
		"stevens": stevensFiles,
		"hoboken": stevensFiles,
	})
	st := newFakeStore()
	s := NewServer(college.NewService(root, core.LoadOptions{}, 2), st, config.ServerConfig{})

	rec := do(t, s, http.MethodPost, "/api/colleges/stevens/persist", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("persist status = %d: %s", rec.Code, rec.Body)
	}
	saved := decode[store.SaveResult](t, rec)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"own college", "/api/colleges/stevens/stored-instructors?load_id=" + saved.LoadID.String(), http.StatusOK},
		{"other college", "/api/colleges/hoboken/stored-instructors?load_id=" + saved.LoadID.String(), http.StatusNotFound},
		{"unknown load", "/api/colleges/stevens/stored-instructors?load_id=" + uuid.NewString(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				if got := decode[ErrorResponse](t, rec); got.Code != "DB003" {
					t.Errorf("code = %q, want DB003", got.Code)
				}
			}
		})
	}
}

func TestPersistence_Errors(t *testing.T) {
	st := newFakeStore()
	s := newTestServer(t, st)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"persist broken college", http.MethodPost, "/api/colleges/broken/persist", http.StatusUnprocessableEntity, "REF002"},
		{"persist unknown college", http.MethodPost, "/api/colleges/mit/persist", http.StatusNotFound, "COL001"},
		{"bad load id", http.MethodDelete, "/api/loads/not-a-uuid", http.StatusBadRequest, "REQ003"},
		{"bad load id query", http.MethodGet, "/api/colleges/stevens/stored-instructors?load_id=42", http.StatusBadRequest, "REQ003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}

	if st.saves != 0 {
		t.Errorf("failed loads must not be saved, got %d saves", st.saves)
	}
}

func TestInstructorsPage(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/colleges/stevens/instructors", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<h1>stevens</h1>", "Einstein, A", "<td>SSW 540</td><td>2</td>"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestInstructorsPage_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/colleges/mit/instructors", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Code: COL001") {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/colleges/mit/instructors", map[string]string{"Accept": "application/json"})
	if got := decode[ErrorResponse](t, rec); got.Code != "COL001" {
		t.Errorf("JSON code = %q", got.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown college", &college.UnknownCollegeError{Name: "x"}, http.StatusNotFound},
		{"file not found", &core.FileNotFoundError{Path: "x"}, http.StatusNotFound},
		{"no load", store.ErrNoLoad, http.StatusNotFound},
		{"bad id", errInvalidLoadID, http.StatusBadRequest},
		{"malformed", &core.MalformedRecordError{}, http.StatusUnprocessableEntity},
		{"unknown student", &core.UnknownStudentError{CWID: "1"}, http.StatusUnprocessableEntity},
		{"busy", fmt.Errorf("load x: %w", college.ErrTooManyLoads), http.StatusServiceUnavailable},
		{"no store", store.ErrNotConfigured, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
