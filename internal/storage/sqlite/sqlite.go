// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/prochap/qrgen/internal/models"
	"github.com/prochap/qrgen/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRecord inserts a record and fills in its assigned ID and CreatedAt.
func (s *SQLiteStore) CreateRecord(ctx context.Context, record *models.Record) error {
	if record.CreatedAt == "" {
		record.CreatedAt = s.now().Format(models.TimeFormat)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO qr_records (content, created_at, description, personalization) VALUES (?, ?, ?, ?)",
		record.Content, record.CreatedAt, record.Description, record.Personalization,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted record id: %w", err)
	}
	record.ID = id

	return nil
}

// GetRecord retrieves a record by ID.
func (s *SQLiteStore) GetRecord(ctx context.Context, id int64) (*models.Record, error) {
	var r models.Record
	err := s.db.QueryRowContext(ctx,
		"SELECT id, content, created_at, description, personalization FROM qr_records WHERE id = ?",
		id,
	).Scan(&r.ID, &r.Content, &r.CreatedAt, &r.Description, &r.Personalization)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &r, nil
}

// ListRecords returns all records in insertion order (ID ascending).
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, created_at, description, personalization FROM qr_records ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ID, &r.Content, &r.CreatedAt, &r.Description, &r.Personalization); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// CountRecords returns the number of stored records.
func (s *SQLiteStore) CountRecords(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM qr_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// DeleteAllRecords removes every record from the table.
func (s *SQLiteStore) DeleteAllRecords(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM qr_records"); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
