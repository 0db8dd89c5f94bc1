// Package store persists loaded college repositories to PostgreSQL and
// answers the instructor summary from the saved rows.
//
// Writes use COPY inside one transaction per load; reads and deletes are
// built with squirrel using $N placeholders for pgx.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/gradebook/internal/core"
)

var (
	// ErrNotConfigured is returned by callers that have no Store because
	// no database URL was given.
	ErrNotConfigured = errors.New("store not configured")

	// ErrNoLoad is returned when a college or load ID has no saved rows.
	ErrNoLoad = errors.New("no saved load")
)

// Load describes one saved repository.
type Load struct {
	ID       uuid.UUID `json:"load_id"`
	College  string    `json:"college"`
	LoadedAt time.Time `json:"loaded_at"`
}

// SaveResult reports how many rows each table received.
type SaveResult struct {
	LoadID uuid.UUID        `json:"load_id"`
	Rows   map[string]int64 `json:"rows"`
}

// Store reads and writes saved loads.
type Store struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
}

// New creates a Store on an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		sb:   builder(),
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Save writes repo as a new load. Either every table is written or none is.
func (s *Store) Save(ctx context.Context, repo *core.Repository) (SaveResult, error) {
	result := SaveResult{LoadID: repo.LoadID, Rows: make(map[string]int64)}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	query, args, err := insertLoad(s.sb, repo)
	if err != nil {
		return result, fmt.Errorf("build insert load: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return result, fmt.Errorf("insert load: %w", err)
	}

	for _, t := range tables(repo) {
		if len(t.rows) == 0 {
			result.Rows[t.name] = 0
			continue
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, t.columns, pgx.CopyFromRows(t.rows))
		if err != nil {
			return result, fmt.Errorf("copy %s: %w", t.name, err)
		}
		result.Rows[t.name] = n
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}

	slog.Info("load saved",
		"load_id", repo.LoadID,
		"college", repo.College,
		"students", result.Rows["students"],
		"instructor_courses", result.Rows["instructor_courses"],
	)
	return result, nil
}

// LatestLoad returns the most recent saved load of college.
func (s *Store) LatestLoad(ctx context.Context, college string) (Load, error) {
	query, args, err := latestLoad(s.sb, college)
	if err != nil {
		return Load{}, fmt.Errorf("build latest load query: %w", err)
	}

	var l Load
	err = s.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.College, &l.LoadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Load{}, fmt.Errorf("%w for college %q", ErrNoLoad, college)
		}
		return Load{}, fmt.Errorf("query latest load: %w", err)
	}
	return l, nil
}

// LoadByID returns the saved load with the given ID.
func (s *Store) LoadByID(ctx context.Context, loadID uuid.UUID) (Load, error) {
	query, args, err := loadByID(s.sb, loadID)
	if err != nil {
		return Load{}, fmt.Errorf("build load query: %w", err)
	}

	var l Load
	err = s.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.College, &l.LoadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Load{}, fmt.Errorf("%w: %s", ErrNoLoad, loadID)
		}
		return Load{}, fmt.Errorf("query load: %w", err)
	}
	return l, nil
}

// InstructorSummary returns the instructor course counts of one saved
// load, ordered by department then instructor name, both descending.
func (s *Store) InstructorSummary(ctx context.Context, loadID uuid.UUID) ([]core.InstructorSummary, error) {
	query, args, err := instructorSummary(s.sb, loadID)
	if err != nil {
		return nil, fmt.Errorf("build instructor summary query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query instructor summary: %w", err)
	}
	defer rows.Close()

	out := []core.InstructorSummary{}
	for rows.Next() {
		var r core.InstructorSummary
		if err := rows.Scan(&r.CWID, &r.Name, &r.Department, &r.Course, &r.Students); err != nil {
			return nil, fmt.Errorf("scan instructor summary: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instructor summary: %w", err)
	}
	return out, nil
}

// DeleteLoad removes a saved load and, through cascading keys, all of its
// rows.
func (s *Store) DeleteLoad(ctx context.Context, loadID uuid.UUID) error {
	query, args, err := deleteLoad(s.sb, loadID)
	if err != nil {
		return fmt.Errorf("build delete load: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNoLoad, loadID)
	}

	slog.Info("load deleted", "load_id", loadID)
	return nil
}

func insertLoad(sb squirrel.StatementBuilderType, repo *core.Repository) (string, []any, error) {
	return sb.Insert("loads").
		Columns("load_id", "college").
		Values(repo.LoadID.String(), repo.College).
		ToSql()
}

func latestLoad(sb squirrel.StatementBuilderType, college string) (string, []any, error) {
	return sb.Select("load_id", "college", "loaded_at").
		From("loads").
		Where(squirrel.Eq{"college": college}).
		OrderBy("loaded_at DESC").
		Limit(1).
		ToSql()
}

func loadByID(sb squirrel.StatementBuilderType, loadID uuid.UUID) (string, []any, error) {
	return sb.Select("load_id", "college", "loaded_at").
		From("loads").
		Where(squirrel.Eq{"load_id": loadID.String()}).
		ToSql()
}

func instructorSummary(sb squirrel.StatementBuilderType, loadID uuid.UUID) (string, []any, error) {
	return sb.Select("i.cwid", "i.name", "i.department", "ic.course", "ic.students").
		From("instructors i").
		Join("instructor_courses ic ON ic.load_id = i.load_id AND ic.instructor_cwid = i.cwid").
		Where(squirrel.Eq{"i.load_id": loadID.String()}).
		OrderBy("i.department DESC", "i.name DESC", "ic.course ASC").
		ToSql()
}

func deleteLoad(sb squirrel.StatementBuilderType, loadID uuid.UUID) (string, []any, error) {
	return sb.Delete("loads").
		Where(squirrel.Eq{"load_id": loadID.String()}).
		ToSql()
}
