// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/prochap/qrgen/internal/models"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for QR record storage operations.
// This abstraction allows swapping storage backends (SQLite today,
// anything else later) without changing the service layer.
type Store interface {
	// CreateRecord persists a new record and populates its ID and
	// CreatedAt fields. Each insert is a single auto-committed
	// statement; there are no multi-record transactions.
	CreateRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves a single record by ID, for on-demand raster
	// rendering. Returns an error wrapping ErrNotFound when the ID
	// does not exist.
	GetRecord(ctx context.Context, id int64) (*models.Record, error)

	// ListRecords returns every record ordered by ID ascending,
	// which is insertion order.
	ListRecords(ctx context.Context) ([]models.Record, error)

	// CountRecords returns the number of stored records.
	CountRecords(ctx context.Context) (int, error)

	// DeleteAllRecords removes every record. Irreversible.
	DeleteAllRecords(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
