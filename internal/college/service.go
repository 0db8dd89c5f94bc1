// Package college serves loads of college data directories found under a
// single data root.
//
// Every subdirectory of the root is one college. A Service never caches
// or shares a Repository: each Load reads the files again and returns a
// fresh model, so a reload after the files change is just another call.
package college

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
)

// ErrUnknownCollege is returned for a name with no matching directory.
var ErrUnknownCollege = errors.New("unknown college")

// UnknownCollegeError names the college that could not be found.
type UnknownCollegeError struct {
	Name string
}

func (e *UnknownCollegeError) Error() string {
	return fmt.Sprintf("unknown college: %q", e.Name)
}

func (e *UnknownCollegeError) Unwrap() error { return ErrUnknownCollege }

// Result is the outcome of loading one college in LoadAll.
type Result struct {
	Name string
	Repo *core.Repository
	Err  error
}

// Service loads colleges from a data root.
type Service struct {
	root        string
	opts        core.LoadOptions
	maxParallel int
	limiter     *Limiter
}

// Option configures a Service.
type Option func(*Service)

// WithMaxWait sets how long Load waits for a free slot.
func WithMaxWait(d time.Duration) Option {
	return func(s *Service) {
		s.limiter = NewLimiter(s.maxParallel, d)
	}
}

// NewService creates a service over root. maxParallel bounds both the
// loads running at once through Load and the fan-out of LoadAll.
func NewService(root string, opts core.LoadOptions, maxParallel int, options ...Option) *Service {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallelLoads
	}
	s := &Service{
		root:        root,
		opts:        opts,
		maxParallel: maxParallel,
	}
	s.limiter = NewLimiter(maxParallel, DefaultMaxWait)
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Root returns the data root directory.
func (s *Service) Root() string {
	return s.root
}

// Limiter exposes slot usage for health checks and shutdown draining.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// List returns the names of all colleges under the root, sorted.
// Hidden directories and plain files are ignored.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list colleges in %s: %w", s.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Dir resolves a college name to its directory. Names that could escape
// the root or that have no directory yield an *UnknownCollegeError.
func (s *Service) Dir(name string) (string, error) {
	if !validName(name) {
		return "", &UnknownCollegeError{Name: name}
	}

	dir := filepath.Join(s.root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &UnknownCollegeError{Name: name}
	}
	return dir, nil
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

// Load reads one college. It waits for a free slot first; the returned
// Repository belongs to the caller alone.
func (s *Service) Load(ctx context.Context, name string) (*core.Repository, error) {
	dir, err := s.Dir(name)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	defer s.limiter.Release()

	logger := logging.WithFields(ctx, "college", name)
	logger.Debug("college load started", "dir", dir)
	start := time.Now()

	repo, err := core.Load(dir, s.opts)
	if err != nil {
		msg := core.MapError(err)
		logger.Warn("college load failed",
			"error", err,
			"code", msg.Code,
			"duration", time.Since(start),
		)
		return nil, err
	}

	for _, f := range repo.Stats.Files {
		logger.Debug("file read", "kind", f.Kind, "path", f.Path, "lines", f.Lines, "bytes", f.Bytes)
	}
	logger.Info("college loaded",
		"load_id", repo.LoadID,
		"majors", len(repo.Majors),
		"students", len(repo.Students),
		"instructors", len(repo.Instructors),
		"lines", repo.Stats.Lines(),
		"bytes", repo.Stats.Bytes(),
		"duration", time.Since(start),
	)
	return repo, nil
}

// LoadAll loads every college under the root, at most maxParallel at a
// time. A failing college does not stop the others: its error is kept in
// its Result. The returned error is only set when the root cannot be
// listed or ctx ends before all loads finish.
func (s *Service) LoadAll(ctx context.Context) ([]Result, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(names))
	for i, name := range names {
		results[i].Name = name
	}

	var g errgroup.Group
	g.SetLimit(s.maxParallel)

	for i, name := range names {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			repo, err := s.Load(ctx, name)
			results[i].Repo, results[i].Err = repo, err
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
