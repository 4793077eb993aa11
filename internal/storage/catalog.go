package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Catalog is a SQLite index over saved runs so they can be queried by
// schedule or recency without walking the run directories.
type Catalog struct {
	conn *sqlx.DB
}

type runRow struct {
	ID         string  `db:"id"`
	Schedule   string  `db:"schedule"`
	CreatedAt  int64   `db:"created_at"`
	Seed       int64   `db:"seed"`
	Dt         float64 `db:"dt"`
	Duration   float64 `db:"duration"`
	Particles  int     `db:"particles"`
	Steps      int     `db:"steps"`
	Freezes    int     `db:"freezes"`
	FinalPhase string  `db:"final_phase"`
	Metrics    string  `db:"metrics_json"`
}

// OpenCatalog opens or creates the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	c := &Catalog{conn: conn}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		schedule TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		dt REAL NOT NULL,
		duration REAL NOT NULL,
		particles INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		freezes INTEGER NOT NULL,
		final_phase TEXT NOT NULL,
		metrics_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_schedule ON runs(schedule);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// Index inserts or replaces the catalog entries for the given runs.
func (c *Catalog) Index(runs ...RunMetadata) error {
	tx, err := c.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO runs
		(id, schedule, created_at, seed, dt, duration, particles, steps, freezes, final_phase, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range runs {
		if m.ID == "" {
			return fmt.Errorf("index run: empty id")
		}
		metricsJSON, err := json.Marshal(m.Metrics)
		if err != nil {
			return fmt.Errorf("index run %s: %w", m.ID, err)
		}
		if _, err := stmt.Exec(
			m.ID, m.Schedule, m.Timestamp.UnixNano(), m.Seed, m.Dt, m.Duration,
			m.Particles, m.Steps, m.Freezes, m.FinalPhase, string(metricsJSON),
		); err != nil {
			return fmt.Errorf("index run %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// Sync indexes every run in the store and returns how many were indexed.
func (c *Catalog) Sync(s *Store) (int, error) {
	runs, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(runs) == 0 {
		return 0, nil
	}
	return len(runs), c.Index(runs...)
}

// Recent returns the newest limit runs.
func (c *Catalog) Recent(limit int) ([]RunMetadata, error) {
	var rows []runRow
	err := c.conn.Select(&rows, "SELECT * FROM runs ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// BySchedule returns every run of the named schedule, newest first.
func (c *Catalog) BySchedule(name string) ([]RunMetadata, error) {
	var rows []runRow
	err := c.conn.Select(&rows, "SELECT * FROM runs WHERE schedule = ? ORDER BY created_at DESC, id", name)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func (c *Catalog) Count() (int, error) {
	var n int
	err := c.conn.Get(&n, "SELECT COUNT(*) FROM runs")
	return n, err
}

func (c *Catalog) Remove(id string) error {
	_, err := c.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	return err
}

func fromRows(rows []runRow) ([]RunMetadata, error) {
	out := make([]RunMetadata, 0, len(rows))
	for _, r := range rows {
		m := RunMetadata{
			ID:         r.ID,
			Schedule:   r.Schedule,
			Timestamp:  time.Unix(0, r.CreatedAt),
			Seed:       r.Seed,
			Dt:         r.Dt,
			Duration:   r.Duration,
			Particles:  r.Particles,
			Steps:      r.Steps,
			Freezes:    r.Freezes,
			FinalPhase: r.FinalPhase,
		}
		if err := json.Unmarshal([]byte(r.Metrics), &m.Metrics); err != nil {
			return nil, fmt.Errorf("run %s metrics: %w", r.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}
