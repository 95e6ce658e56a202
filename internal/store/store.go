// Package store is the SQLite persistence layer: fragrances, test sessions,
// battle results, and stored AI recommendations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"scentlab/internal/core"
)

// searchLimit caps how many rows a free-text search returns.
const searchLimit = 10

// ErrDuplicateFragrance is returned when an insert collides with the unique
// case-insensitive (name, brand) constraint. Concurrent writers doing
// check-then-insert lose this race at the database, not in application code.
var ErrDuplicateFragrance = errors.New("fragrance already exists")

// Store represents the SQLite-backed repository
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "scentlab.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	fragrancesTable := `
	CREATE TABLE IF NOT EXISTS fragrances (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT NOT NULL,
		concentration TEXT,
		top_notes TEXT,
		middle_notes TEXT,
		base_notes TEXT,
		versatility INTEGER,
		categories TEXT,
		description TEXT,
		image_url TEXT,
		price_cents INTEGER,
		year INTEGER,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (name COLLATE NOCASE, brand COLLATE NOCASE)
	);`

	sessionsTable := `
	CREATE TABLE IF NOT EXISTS test_sessions (
		id TEXT PRIMARY KEY,
		name TEXT,
		blind_test INTEGER,
		completed_at DATETIME,
		created_at DATETIME
	);`

	resultsTable := `
	CREATE TABLE IF NOT EXISTS test_results (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		category TEXT NOT NULL,
		selected_fragrances TEXT,
		max_selections INTEGER,
		created_at DATETIME,
		FOREIGN KEY (session_id) REFERENCES test_sessions (id)
	);`

	recommendationsTable := `
	CREATE TABLE IF NOT EXISTS ai_recommendations (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		reasoning TEXT,
		confidence REAL,
		model_used TEXT,
		created_at DATETIME
	);`

	tables := []string{fragrancesTable, sessionsTable, resultsTable, recommendationsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateFragrance persists a new fragrance row. A missing ID and timestamps
// are filled in.
func (s *Store) CreateFragrance(ctx context.Context, f *core.Fragrance) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	topNotes, _ := json.Marshal(f.TopNotes)
	middleNotes, _ := json.Marshal(f.MiddleNotes)
	baseNotes, _ := json.Marshal(f.BaseNotes)
	categories, _ := json.Marshal(f.Categories)

	query := `
	INSERT INTO fragrances
	(id, name, brand, concentration, top_notes, middle_notes, base_notes,
	 versatility, categories, description, image_url, price_cents, year, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		f.ID,
		f.Name,
		f.Brand,
		string(f.Concentration),
		string(topNotes),
		string(middleNotes),
		string(baseNotes),
		f.Versatility,
		string(categories),
		f.Description,
		f.ImageURL,
		f.PriceCents,
		f.Year,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s by %s", ErrDuplicateFragrance, f.Name, f.Brand)
		}
		return fmt.Errorf("failed to insert fragrance: %w", err)
	}
	return nil
}

const fragranceColumns = `id, name, brand, concentration, top_notes, middle_notes, base_notes,
	versatility, categories, description, image_url, price_cents, year, created_at, updated_at`

// FindFragranceByID retrieves a single fragrance, or nil when absent.
func (s *Store) FindFragranceByID(ctx context.Context, id string) (*core.Fragrance, error) {
	query := `SELECT ` + fragranceColumns + ` FROM fragrances WHERE id = ?`
	f, err := scanFragrance(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fragrance: %w", err)
	}
	return f, nil
}

// FindFragrancesByIDs retrieves the fragrances whose IDs appear in ids,
// preserving the input order. Unknown IDs are silently skipped.
func (s *Store) FindFragrancesByIDs(ctx context.Context, ids []string) ([]core.Fragrance, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + fragranceColumns + ` FROM fragrances WHERE id IN (` + placeholders + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragrances: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]core.Fragrance)
	for rows.Next() {
		f, err := scanFragrance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fragrance: %w", err)
		}
		byID[f.ID] = *f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]core.Fragrance, 0, len(byID))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// FindByNameAndBrand performs the case-insensitive existence check used
// before caching an external candidate. Returns nil on a miss.
func (s *Store) FindByNameAndBrand(ctx context.Context, name, brand string) (*core.Fragrance, error) {
	query := `SELECT ` + fragranceColumns + ` FROM fragrances
	WHERE name = ? COLLATE NOCASE AND brand = ? COLLATE NOCASE`

	f, err := scanFragrance(s.db.QueryRowContext(ctx, query, strings.TrimSpace(name), strings.TrimSpace(brand)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan fragrance: %w", err)
	}
	return f, nil
}

// SearchByNameOrBrand runs the local free-text search: substring match on
// name or brand, ranked exact-name, name-prefix, exact-brand, then the rest,
// capped at the search limit.
func (s *Store) SearchByNameOrBrand(ctx context.Context, q string) ([]core.Fragrance, error) {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return nil, nil
	}

	query := `SELECT ` + fragranceColumns + `,
	CASE
		WHEN lower(name) = ? THEN 0
		WHEN lower(name) LIKE ? || '%' THEN 1
		WHEN lower(brand) = ? THEN 2
		ELSE 3
	END AS rank
	FROM fragrances
	WHERE lower(name) LIKE '%' || ? || '%' OR lower(brand) LIKE '%' || ? || '%'
	ORDER BY rank, name
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, needle, needle, needle, needle, needle, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search fragrances: %w", err)
	}
	defer rows.Close()

	var out []core.Fragrance
	for rows.Next() {
		f, err := scanFragranceRanked(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fragrance: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// FindByCategory returns every fragrance tagged with the given category,
// ordered by versatility descending.
func (s *Store) FindByCategory(ctx context.Context, category core.CategoryTag) ([]core.Fragrance, error) {
	// Categories are stored as a JSON array; match the quoted tag.
	query := `SELECT ` + fragranceColumns + ` FROM fragrances
	WHERE categories LIKE '%' || ? || '%'
	ORDER BY versatility DESC, name`

	rows, err := s.db.QueryContext(ctx, query, `"`+string(category)+`"`)
	if err != nil {
		return nil, fmt.Errorf("failed to query by category: %w", err)
	}
	defer rows.Close()

	var out []core.Fragrance
	for rows.Next() {
		f, err := scanFragrance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fragrance: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// ListFragrances returns every stored fragrance ordered by name.
func (s *Store) ListFragrances(ctx context.Context) ([]core.Fragrance, error) {
	query := `SELECT ` + fragranceColumns + ` FROM fragrances ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fragrances: %w", err)
	}
	defer rows.Close()

	var out []core.Fragrance
	for rows.Next() {
		f, err := scanFragrance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fragrance: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFragrance(row scanner) (*core.Fragrance, error) {
	var (
		f                                  core.Fragrance
		concentration                      string
		topNotes, middleNotes, baseNotes   string
		categories                         string
		priceCents                         sql.NullInt64
		year                               sql.NullInt64
	)

	err := row.Scan(
		&f.ID, &f.Name, &f.Brand, &concentration,
		&topNotes, &middleNotes, &baseNotes,
		&f.Versatility, &categories,
		&f.Description, &f.ImageURL,
		&priceCents, &year,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return decodeFragrance(&f, concentration, topNotes, middleNotes, baseNotes, categories, priceCents, year), nil
}

func scanFragranceRanked(row scanner) (*core.Fragrance, error) {
	var (
		f                                  core.Fragrance
		concentration                      string
		topNotes, middleNotes, baseNotes   string
		categories                         string
		priceCents                         sql.NullInt64
		year                               sql.NullInt64
		rank                               int
	)

	err := row.Scan(
		&f.ID, &f.Name, &f.Brand, &concentration,
		&topNotes, &middleNotes, &baseNotes,
		&f.Versatility, &categories,
		&f.Description, &f.ImageURL,
		&priceCents, &year,
		&f.CreatedAt, &f.UpdatedAt,
		&rank,
	)
	if err != nil {
		return nil, err
	}

	return decodeFragrance(&f, concentration, topNotes, middleNotes, baseNotes, categories, priceCents, year), nil
}

func decodeFragrance(f *core.Fragrance, concentration, topNotes, middleNotes, baseNotes, categories string, priceCents, year sql.NullInt64) *core.Fragrance {
	f.Concentration = core.Concentration(concentration)
	json.Unmarshal([]byte(topNotes), &f.TopNotes)
	json.Unmarshal([]byte(middleNotes), &f.MiddleNotes)
	json.Unmarshal([]byte(baseNotes), &f.BaseNotes)
	json.Unmarshal([]byte(categories), &f.Categories)
	if priceCents.Valid {
		v := priceCents.Int64
		f.PriceCents = &v
	}
	if year.Valid {
		v := int(year.Int64)
		f.Year = &v
	}
	return f
}

// CreateSession inserts a new test session.
func (s *Store) CreateSession(ctx context.Context, session *core.TestSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO test_sessions (id, name, blind_test, completed_at, created_at)
	VALUES (?, ?, ?, ?, ?)`

	var completedAt any
	if session.Completed() {
		completedAt = session.CompletedAt
	}

	_, err := s.db.ExecContext(ctx, query, session.ID, session.Name, session.BlindTest, completedAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, or nil when absent.
func (s *Store) GetSession(ctx context.Context, id string) (*core.TestSession, error) {
	query := `SELECT id, name, blind_test, completed_at, created_at FROM test_sessions WHERE id = ?`

	var (
		session     core.TestSession
		completedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.Name, &session.BlindTest, &completedAt, &session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	if completedAt.Valid {
		session.CompletedAt = completedAt.Time
	}
	return &session, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]core.TestSession, error) {
	query := `SELECT id, name, blind_test, completed_at, created_at
	FROM test_sessions ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []core.TestSession
	for rows.Next() {
		var (
			session     core.TestSession
			completedAt sql.NullTime
		)
		if err := rows.Scan(&session.ID, &session.Name, &session.BlindTest, &completedAt, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if completedAt.Valid {
			session.CompletedAt = completedAt.Time
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

// CompleteSession marks a session as finished.
func (s *Store) CompleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE test_sessions SET completed_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddResult records the outcome of one category battle within a session.
func (s *Store) AddResult(ctx context.Context, r *core.TestResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	selected, _ := json.Marshal(r.SelectedIDs)

	query := `INSERT INTO test_results (id, session_id, category, selected_fragrances, max_selections, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.SessionID, string(r.Category), string(selected), r.MaxSelections, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// SessionResults returns the battle results recorded for one session.
func (s *Store) SessionResults(ctx context.Context, sessionID string) ([]core.TestResult, error) {
	query := `SELECT id, session_id, category, selected_fragrances, max_selections, created_at
	FROM test_results WHERE session_id = ? ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []core.TestResult
	for rows.Next() {
		var (
			r        core.TestResult
			category string
			selected string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &category, &selected, &r.MaxSelections, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Category = core.CategoryTag(category)
		json.Unmarshal([]byte(selected), &r.SelectedIDs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllResults returns every recorded battle result across sessions.
func (s *Store) AllResults(ctx context.Context) ([]core.TestResult, error) {
	query := `SELECT id, session_id, category, selected_fragrances, max_selections, created_at
	FROM test_results ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []core.TestResult
	for rows.Next() {
		var (
			r        core.TestResult
			category string
			selected string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &category, &selected, &r.MaxSelections, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Category = core.CategoryTag(category)
		json.Unmarshal([]byte(selected), &r.SelectedIDs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveRecommendation stores an AI-generated recommendation.
func (s *Store) SaveRecommendation(ctx context.Context, r *core.Recommendation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO ai_recommendations (id, category, reasoning, confidence, model_used, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, string(r.Category), r.Reasoning, r.Confidence, r.ModelUsed, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

// ListRecommendations returns stored recommendations, newest first, optionally
// filtered by category.
func (s *Store) ListRecommendations(ctx context.Context, category core.CategoryTag) ([]core.Recommendation, error) {
	query := `SELECT id, category, reasoning, confidence, model_used, created_at
	FROM ai_recommendations`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var out []core.Recommendation
	for rows.Next() {
		var (
			r   core.Recommendation
			cat string
		)
		if err := rows.Scan(&r.ID, &cat, &r.Reasoning, &r.Confidence, &r.ModelUsed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		r.Category = core.CategoryTag(cat)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats summarizes what the store currently holds.
type Stats struct {
	FragranceCount int
	SessionCount   int
	ResultCount    int
	DatabaseSize   int64
	LastUpdated    time.Time
}

// GetStats returns row counts and the database file size.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM fragrances":    &stats.FragranceCount,
		"SELECT COUNT(*) FROM test_sessions": &stats.SessionCount,
		"SELECT COUNT(*) FROM test_results":  &stats.ResultCount,
	}

	for query, target := range queries {
		if err := s.db.QueryRowContext(ctx, query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.DatabaseSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}
