package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteArchive is a SQLite implementation of Archive[S, D].
//
// It stores scenarios and run records in a single-file database.
// Designed for:
//   - Development and local tooling with zero setup
//   - Single-process what-if workflows requiring persistence
//   - Prototyping before migrating to a shared store
//
// SQLiteArchive uses WAL mode for concurrent reads and transactional
// writes.
//
// Schema:
//   - scenarios: scenario payloads keyed by ID
//   - simulation_runs: one row per recorded run with its diff payload
//
// Type parameters S and D must be JSON-serializable.
type SQLiteArchive[S, D any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteArchive creates a new SQLite-backed archive.
//
// The path parameter specifies the database file location:
//   - "./scenarios.db" - file in current directory
//   - ":memory:" - in-memory database (data lost on close)
//
// The archive automatically:
//   - Creates the database file if it doesn't exist
//   - Creates required tables
//   - Enables WAL mode for concurrent reads
//   - Sets a busy timeout for lock contention
//
// Example:
//
//	archive, err := store.NewSQLiteArchive[evidence.Scenario, evidence.SimulationDiff]("./scenarios.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer archive.Close()
func NewSQLiteArchive[S, D any](path string) (*SQLiteArchive[S, D], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	archive := &SQLiteArchive[S, D]{
		db:   db,
		path: path,
	}

	if err := archive.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return archive, nil
}

func (s *SQLiteArchive[S, D]) createTables(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS simulation_runs (
	run_id TEXT PRIMARY KEY,
	scenario_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	diff TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_scenario ON simulation_runs(scenario_id, created_at);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveScenario persists a scenario, overwriting any existing one with
// the same ID.
func (s *SQLiteArchive[S, D]) SaveScenario(ctx context.Context, id string, scenario S) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("archive is closed")
	}

	payload, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO scenarios (id, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		id, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// LoadScenario retrieves a scenario by ID.
func (s *SQLiteArchive[S, D]) LoadScenario(ctx context.Context, id string) (S, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero S
	if s.closed {
		return zero, fmt.Errorf("archive is closed")
	}

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM scenarios WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("failed to load scenario: %w", err)
	}

	var scenario S
	if err := json.Unmarshal([]byte(payload), &scenario); err != nil {
		return zero, fmt.Errorf("failed to unmarshal scenario: %w", err)
	}
	return scenario, nil
}

// ListScenarioIDs returns archived scenario IDs in ascending order.
func (s *SQLiteArchive[S, D]) ListScenarioIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("archive is closed")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM scenarios ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan scenario ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveRun records one simulation run.
func (s *SQLiteArchive[S, D]) SaveRun(ctx context.Context, run RunRecord[D]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("archive is closed")
	}

	diff, err := json.Marshal(run.Diff)
	if err != nil {
		return fmt.Errorf("failed to marshal diff: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO simulation_runs (run_id, scenario_id, created_at, diff) VALUES (?, ?, ?, ?)`,
		run.RunID, run.ScenarioID, run.CreatedAt.UnixMilli(), string(diff))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LoadLatestRun retrieves the most recent run of a scenario.
func (s *SQLiteArchive[S, D]) LoadLatestRun(ctx context.Context, scenarioID string) (RunRecord[D], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero RunRecord[D]
	if s.closed {
		return zero, fmt.Errorf("archive is closed")
	}

	row := s.db.QueryRowContext(ctx, `
SELECT run_id, scenario_id, created_at, diff FROM simulation_runs
WHERE scenario_id = ? ORDER BY created_at DESC, run_id DESC LIMIT 1`, scenarioID)

	run, err := scanRun[D](row.Scan)
	if err == sql.ErrNoRows {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("failed to load latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns all recorded runs of a scenario, oldest first.
func (s *SQLiteArchive[S, D]) ListRuns(ctx context.Context, scenarioID string) ([]RunRecord[D], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("archive is closed")
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, scenario_id, created_at, diff FROM simulation_runs
WHERE scenario_id = ? ORDER BY created_at ASC, run_id ASC`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord[D]
	for rows.Next() {
		run, err := scanRun[D](rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database connection. The archive cannot be used
// after Close.
func (s *SQLiteArchive[S, D]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// scanRun decodes one simulation_runs row via the given scan function.
func scanRun[D any](scan func(dest ...any) error) (RunRecord[D], error) {
	var (
		run       RunRecord[D]
		createdAt int64
		diff      string
	)
	if err := scan(&run.RunID, &run.ScenarioID, &createdAt, &diff); err != nil {
		return run, err
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	if err := json.Unmarshal([]byte(diff), &run.Diff); err != nil {
		return run, fmt.Errorf("failed to unmarshal diff: %w", err)
	}
	return run, nil
}
