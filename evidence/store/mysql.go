package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLArchive is a MySQL/MariaDB implementation of Archive[S, D].
//
// It stores scenarios and run records in a relational database.
// Designed for:
//   - Production deployments requiring shared persistence
//   - Multiple analysts replaying each other's scenarios
//   - Audit trails of what-if runs
//
// MySQLArchive uses connection pooling for reliability.
//
// Schema:
//   - scenarios: scenario payloads keyed by ID
//   - simulation_runs: one row per recorded run with its diff payload
//
// Type parameters S and D must be JSON-serializable.
type MySQLArchive[S, D any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLArchive creates a new MySQL-backed archive.
//
// The DSN (Data Source Name) format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Example DSNs:
//
//	user:password@tcp(localhost:3306)/scenarios
//	user:password@tcp(127.0.0.1:3306)/scenarios?parseTime=true
//
// Security Warning:
//
//	NEVER hardcode credentials in your source code. Use environment
//	variables in the embedding application:
//	    dsn := os.Getenv("MYSQL_DSN")
//
// The archive automatically creates required tables if they don't exist
// and configures connection pooling.
func NewMySQLArchive[S, D any](dsn string) (*MySQLArchive[S, D], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	archive := &MySQLArchive[S, D]{db: db}

	if err := archive.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return archive, nil
}

func (m *MySQLArchive[S, D]) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scenarios (
			id VARCHAR(255) PRIMARY KEY,
			payload JSON NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS simulation_runs (
			run_id VARCHAR(255) PRIMARY KEY,
			scenario_id VARCHAR(255) NOT NULL,
			created_at BIGINT NOT NULL,
			diff JSON NOT NULL,
			INDEX idx_runs_scenario (scenario_id, created_at)
		)`,
	}
	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveScenario persists a scenario, overwriting any existing one with
// the same ID.
func (m *MySQLArchive[S, D]) SaveScenario(ctx context.Context, id string, scenario S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("archive is closed")
	}

	payload, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
INSERT INTO scenarios (id, payload, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`,
		id, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// LoadScenario retrieves a scenario by ID.
func (m *MySQLArchive[S, D]) LoadScenario(ctx context.Context, id string) (S, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero S
	if m.closed {
		return zero, fmt.Errorf("archive is closed")
	}

	var payload string
	err := m.db.QueryRowContext(ctx, `SELECT payload FROM scenarios WHERE id = ?`, id).Scan(&payload)
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
func (m *MySQLArchive[S, D]) ListScenarioIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("archive is closed")
	}

	rows, err := m.db.QueryContext(ctx, `SELECT id FROM scenarios ORDER BY id ASC`)
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
func (m *MySQLArchive[S, D]) SaveRun(ctx context.Context, run RunRecord[D]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("archive is closed")
	}

	diff, err := json.Marshal(run.Diff)
	if err != nil {
		return fmt.Errorf("failed to marshal diff: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
INSERT INTO simulation_runs (run_id, scenario_id, created_at, diff) VALUES (?, ?, ?, ?)`,
		run.RunID, run.ScenarioID, run.CreatedAt.UnixMilli(), string(diff))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LoadLatestRun retrieves the most recent run of a scenario.
func (m *MySQLArchive[S, D]) LoadLatestRun(ctx context.Context, scenarioID string) (RunRecord[D], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero RunRecord[D]
	if m.closed {
		return zero, fmt.Errorf("archive is closed")
	}

	row := m.db.QueryRowContext(ctx, `
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
func (m *MySQLArchive[S, D]) ListRuns(ctx context.Context, scenarioID string) ([]RunRecord[D], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("archive is closed")
	}

	rows, err := m.db.QueryContext(ctx, `
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

// Close releases the database connections. The archive cannot be used
// after Close.
func (m *MySQLArchive[S, D]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}
