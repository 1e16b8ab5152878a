package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // database/sql driver

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/port"
)

// HistoryStore persists completed scan results in a local SQLite database.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (and migrates) the scan history database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite allows a single writer; the serve-mode job runner serializes
	// writes through this connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	s := &HistoryStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HistoryStore) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS scans (
			id         TEXT PRIMARY KEY,
			mode       TEXT NOT NULL,
			since_date TEXT NOT NULL,
			to_date    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			payload    TEXT NOT NULL
		)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("migrate scans table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// SaveScan stores a completed scan result and returns its assigned ID.
func (s *HistoryStore) SaveScan(ctx context.Context, result *domain.ScanResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal scan result: %w", err)
	}

	id := uuid.NewString()
	query := `INSERT INTO scans (id, mode, since_date, to_date, created_at, payload)
	          VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		id, string(result.ScanMode), result.SinceDate, result.ToDate, result.ScanTime.UTC(), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert scan: %w", err)
	}
	return id, nil
}

// ListScans returns scan records, most recent first. limit 0 means no cap.
func (s *HistoryStore) ListScans(ctx context.Context, limit int) ([]port.ScanRecord, error) {
	query := `SELECT id, mode, since_date, to_date, created_at FROM scans ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var records []port.ScanRecord
	for rows.Next() {
		var r port.ScanRecord
		var createdAt time.Time
		if err := rows.Scan(&r.ID, &r.Mode, &r.SinceDate, &r.ToDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.CreatedAt = createdAt
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetScan loads a stored scan result by ID.
func (s *HistoryStore) GetScan(ctx context.Context, id string) (*domain.ScanResult, error) {
	var payload string
	query := `SELECT payload FROM scans WHERE id = ?`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan %s: %w", id, err)
	}

	var result domain.ScanResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode scan %s: %w", id, err)
	}
	return &result, nil
}
