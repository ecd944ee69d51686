// Package pel provides access to the pel_events table, the local record
// of platform event log entries observed by the PEL listener.
package pel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single observed platform event log entry.
type Entry struct {
	ID         string    `json:"id"`
	PlatformID uint64    `json:"platform_id"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	RaisedAt   time.Time `json:"raised_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter controls which entries to return.
type Filter struct {
	Severity string // optional: filter by severity
	Limit    int    // default 50, max 200
	Offset   int    // pagination offset
}

// ListResult contains the paginated entry results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for platform event log storage.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// SQLiteRepository stores platform event log entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new platform event log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts an entry. The ID and CreatedAt are generated if empty.
// Re-observing an already-stored platform ID is not an error: the
// notification channel can redeliver, so duplicates are silently kept
// as the original row.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "pel-" + uuid.NewString()[:8]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO pel_events (id, platform_id, severity, message, raised_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.PlatformID, entry.Severity, entry.Message,
		entry.RaisedAt.UTC().Format(time.RFC3339),
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting pel entry: %w", err)
	}

	return nil
}

// List returns entries matching the filter, most recently raised first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for event queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	where := ""
	var args []any
	if filter.Severity != "" {
		where = "WHERE severity = ?"
		args = append(args, filter.Severity)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM pel_events %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting pel entries: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, platform_id, severity, message, raised_at, created_at FROM pel_events %s ORDER BY raised_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pel entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var raisedAt, createdAt string

		if err := rows.Scan(&entry.ID, &entry.PlatformID, &entry.Severity,
			&entry.Message, &raisedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning pel entry: %w", err)
		}

		if entry.RaisedAt, err = parseTimestamp(raisedAt); err != nil {
			return nil, fmt.Errorf("parsing pel raised_at %q: %w", raisedAt, err)
		}
		if entry.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("parsing pel created_at %q: %w", createdAt, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pel entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

// parseTimestamp accepts RFC3339 plus SQLite's CURRENT_TIMESTAMP format.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// Prune deletes all but the most recently raised keep entries. Returns
// the number of rows removed.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, errors.New("pel: keep must not be negative")
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pel_events WHERE id NOT IN (
			SELECT id FROM pel_events ORDER BY raised_at DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning pel entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned pel entries: %w", err)
	}
	return n, nil
}
