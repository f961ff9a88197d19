package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// SQLiteJournal stores delivery records in a local SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (and initializes) a SQLite journal.
// If dbPath is empty, defaults to "./data/foldspace.db".
func NewSQLiteJournal(ctx context.Context, dbPath string) (*SQLiteJournal, error) {
	if dbPath == "" {
		dbPath = "./data/foldspace.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *SQLiteJournal) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		destination TEXT NOT NULL,
		transport TEXT NOT NULL,
		message_type TEXT NOT NULL,
		detail TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_deliveries_created_at ON deliveries(created_at);
	CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() {
	j.db.Close()
}

// Ping checks the database connection.
func (j *SQLiteJournal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Record inserts a delivery record. A ULID id and timestamp are assigned
// when unset.
func (j *SQLiteJournal) Record(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, status, destination, transport, message_type, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Status, rec.Destination, rec.Transport, rec.MessageType, rec.Detail, rec.CreatedAt)
	return err
}

// Recent returns the most recent delivery records, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, status, destination, transport, message_type, detail, created_at
		FROM deliveries
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Status,
			&rec.Destination,
			&rec.Transport,
			&rec.MessageType,
			&rec.Detail,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of delivery records.
func (j *SQLiteJournal) Count(ctx context.Context) (int64, error) {
	var count int64
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&count)
	return count, err
}
