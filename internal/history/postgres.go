package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/deusflow/newsrelay/internal/logger"
)

// PostgresStore mirrors the in-memory window into a sent_posts table.
// The in-memory window stays authoritative: database errors are surfaced
// for logging only.
type PostgresStore struct {
	db      *sql.DB
	window  time.Duration
	records []Record
	mu      sync.RWMutex
}

func NewPostgresStore(connectionString string, window time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	ps := &PostgresStore{db: db, window: window}
	if err := ps.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}
	return ps, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sent_posts (
		id SERIAL PRIMARY KEY,
		text TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sent_posts_published_at ON sent_posts(published_at);
	`
	_, err := ps.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}
	return nil
}

func (ps *PostgresStore) Load() error {
	cutoff := time.Now().Add(-ps.window)

	rows, err := ps.db.Query(
		`SELECT text, published_at FROM sent_posts WHERE published_at > $1 ORDER BY published_at ASC`,
		cutoff,
	)
	if err != nil {
		logger.Warn("failed to load history from database, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Text, &r.Timestamp); err != nil {
			logger.Warn("failed to scan history row, skipping", "error", err)
			continue
		}
		records = append(records, r)
	}

	ps.mu.Lock()
	ps.records = records
	ps.mu.Unlock()

	logger.Info("loaded history", "records", len(records), "backend", "postgres")
	return nil
}

func (ps *PostgresStore) Prune(now time.Time) {
	ps.mu.Lock()
	ps.records = pruneRecords(ps.records, now, ps.window)
	ps.mu.Unlock()

	if _, err := ps.db.Exec(`DELETE FROM sent_posts WHERE published_at <= $1`, now.Add(-ps.window)); err != nil {
		logger.Warn("failed to prune history table", "error", err)
	}
}

func (ps *PostgresStore) Append(text string, now time.Time) error {
	ps.mu.Lock()
	ps.records = pruneRecords(ps.records, now, ps.window)
	ps.records = append(ps.records, Record{Text: text, Timestamp: now})
	ps.mu.Unlock()

	if _, err := ps.db.Exec(`DELETE FROM sent_posts WHERE published_at <= $1`, now.Add(-ps.window)); err != nil {
		return fmt.Errorf("failed to prune history table: %v", err)
	}
	if _, err := ps.db.Exec(`INSERT INTO sent_posts (text, published_at) VALUES ($1, $2)`, text, now); err != nil {
		return fmt.Errorf("failed to persist history record: %v", err)
	}
	return nil
}

func (ps *PostgresStore) Snapshot() []Record {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]Record, len(ps.records))
	copy(out, ps.records)
	return out
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
