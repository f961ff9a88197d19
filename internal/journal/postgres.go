package journal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresJournal stores delivery records in PostgreSQL.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

// NewPostgresJournal creates a PostgreSQL journal with a connection pool
// and ensures the schema exists.
func NewPostgresJournal(ctx context.Context, databaseURL string) (*PostgresJournal, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	j := &PostgresJournal{pool: pool}
	if err := j.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return j, nil
}

func (j *PostgresJournal) initSchema(ctx context.Context) error {
	_, err := j.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS deliveries (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			destination TEXT NOT NULL,
			transport TEXT NOT NULL,
			message_type TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_deliveries_created_at ON deliveries(created_at);
		CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);
	`)
	return err
}

// Close closes the database connection pool.
func (j *PostgresJournal) Close() {
	j.pool.Close()
}

// Ping checks the database connection.
func (j *PostgresJournal) Ping(ctx context.Context) error {
	return j.pool.Ping(ctx)
}

// Record inserts a delivery record. A ULID id and timestamp are assigned
// when unset.
func (j *PostgresJournal) Record(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := j.pool.Exec(ctx, `
		INSERT INTO deliveries (id, status, destination, transport, message_type, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Status, rec.Destination, rec.Transport, rec.MessageType, rec.Detail, rec.CreatedAt)
	return err
}

// Recent returns the most recent delivery records, newest first.
func (j *PostgresJournal) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT id, status, destination, transport, message_type, detail, created_at
		FROM deliveries
		ORDER BY id DESC
		LIMIT $1
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
func (j *PostgresJournal) Count(ctx context.Context) (int64, error) {
	var count int64
	err := j.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&count)
	return count, err
}
