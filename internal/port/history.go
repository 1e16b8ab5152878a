package port

import (
	"context"
	"time"

	"github.com/devdiary/devdiary/internal/domain"
)

// ScanRecord is one persisted scan in the history store.
type ScanRecord struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	SinceDate string    `json:"since_date"`
	ToDate    string    `json:"to_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore persists completed scan results for later listing and export.
type HistoryStore interface {
	// SaveScan stores a completed scan result and returns its assigned ID.
	SaveScan(ctx context.Context, result *domain.ScanResult) (string, error)

	// ListScans returns scan records, most recent first, capped to limit
	// (0 = no cap).
	ListScans(ctx context.Context, limit int) ([]ScanRecord, error)

	// GetScan loads a stored scan result by ID. Returns ErrScanNotFound
	// when no such scan exists.
	GetScan(ctx context.Context, id string) (*domain.ScanResult, error)

	// Close releases the underlying database handle.
	Close() error
}
