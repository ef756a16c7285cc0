package control

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smartdom/smartdom-core/internal/home"
)

// Mode is a user's control mode row. A user with no row is in automatic mode.
type Mode struct {
	UserID    int64     `json:"user_id"`
	IsManual  bool      `json:"is_manual"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModeRepository defines storage operations for control modes.
type ModeRepository interface {
	Get(ctx context.Context, userID int64) (*Mode, error)
	Set(ctx context.Context, userID int64, isManual bool) (*Mode, error)
}

// SQLiteModeRepository implements ModeRepository over the control_modes table.
type SQLiteModeRepository struct {
	db home.DBTX
}

// NewModeRepository creates a SQLite-backed control mode repository.
func NewModeRepository(db home.DBTX) *SQLiteModeRepository {
	return &SQLiteModeRepository{db: db}
}

// Get returns the user's control mode. A missing row reads as automatic.
func (r *SQLiteModeRepository) Get(ctx context.Context, userID int64) (*Mode, error) {
	const query = `SELECT user_id, is_manual, updated_at FROM control_modes WHERE user_id = ?`

	var (
		m         Mode
		isManual  int
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&m.UserID, &isManual, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &Mode{UserID: userID, IsManual: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading control mode for user %d: %w", userID, err)
	}
	m.IsManual = isManual != 0
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}

// Set upserts the user's control mode and returns the stored row.
func (r *SQLiteModeRepository) Set(ctx context.Context, userID int64, isManual bool) (*Mode, error) {
	const query = `
		INSERT INTO control_modes (user_id, is_manual, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT(user_id) DO UPDATE SET
			is_manual = excluded.is_manual,
			updated_at = excluded.updated_at`

	manual := 0
	if isManual {
		manual = 1
	}
	if _, err := r.db.ExecContext(ctx, query, userID, manual); err != nil {
		return nil, fmt.Errorf("storing control mode for user %d: %w", userID, err)
	}
	return r.Get(ctx, userID)
}

func parseTime(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
