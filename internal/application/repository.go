package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines application persistence operations.
type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	List(ctx context.Context) ([]Application, error)
	ListByUser(ctx context.Context, userID int64) ([]Application, error)
	ListByStatus(ctx context.Context, status Status) ([]Application, error)
	UpdateDecision(ctx context.Context, app *Application) error
}

// SQLiteRepository implements Repository using SQLite. The rooms_config and
// created_room_ids columns hold JSON.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a SQLite-backed application repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new pending application and fills in its generated id.
func (r *SQLiteRepository) Create(ctx context.Context, app *Application) error {
	cfg, err := json.Marshal(app.RoomsConfig)
	if err != nil {
		return fmt.Errorf("encoding rooms config: %w", err)
	}

	const query = `INSERT INTO applications (user_id, rooms_config, status) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, app.UserID, string(cfg), string(StatusPending))
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading application id: %w", err)
	}
	app.ID = id
	app.Status = StatusPending
	return nil
}

const appColumns = `id, user_id, rooms_config, status, rejection_comment, created_room_ids, created_at, updated_at`

// GetByID returns a single application by id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	app, err := scanApplication(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	return app, nil
}

// List returns all applications, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications ORDER BY id DESC`
	return r.queryApplications(ctx, query)
}

// ListByUser returns one user's applications, newest first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE user_id = ? ORDER BY id DESC`
	return r.queryApplications(ctx, query, userID)
}

// ListByStatus returns applications in one lifecycle state, oldest first so
// admins review in submission order.
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status Status) ([]Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE status = ? ORDER BY id`
	return r.queryApplications(ctx, query, string(status))
}

// UpdateDecision persists the outcome of a review: the new status plus the
// rejection comment or created room ids. Only pending rows can be decided.
func (r *SQLiteRepository) UpdateDecision(ctx context.Context, app *Application) error {
	var roomIDs any
	if app.CreatedRoomIDs != nil {
		encoded, err := json.Marshal(app.CreatedRoomIDs)
		if err != nil {
			return fmt.Errorf("encoding created room ids: %w", err)
		}
		roomIDs = string(encoded)
	}

	var comment any
	if app.RejectionComment != "" {
		comment = app.RejectionComment
	}

	const query = `
		UPDATE applications
		SET status = ?, rejection_comment = ?, created_room_ids = ?,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, query,
		string(app.Status), comment, roomIDs, app.ID, string(StatusPending))
	if err != nil {
		return fmt.Errorf("updating application %d: %w", app.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking application update: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already decided
		if _, err := r.GetByID(ctx, app.ID); err != nil {
			return err
		}
		return ErrNotPending
	}
	return nil
}

// RecordApproval flips a pending application to approved and stores the
// created room ids, inside the caller's transaction. Returns ErrNotPending
// when the row was already decided so a losing concurrent approval rolls
// back everything it provisioned.
func RecordApproval(ctx context.Context, tx *sql.Tx, id int64, roomIDs []int64) error {
	var encoded any
	if roomIDs != nil {
		b, err := json.Marshal(roomIDs)
		if err != nil {
			return fmt.Errorf("encoding created room ids: %w", err)
		}
		encoded = string(b)
	}

	const query = `
		UPDATE applications
		SET status = ?, created_room_ids = ?,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, query,
		string(StatusApproved), encoded, id, string(StatusPending))
	if err != nil {
		return fmt.Errorf("approving application %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking application approval: %w", err)
	}
	if affected == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("rechecking application %d: %w", id, err)
		}
		return ErrNotPending
	}
	return nil
}

func (r *SQLiteRepository) queryApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning application row: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating application rows: %w", err)
	}
	return apps, nil
}

func scanApplication(scan func(...any) error) (*Application, error) {
	var app Application
	var cfg, status string
	var comment, roomIDs sql.NullString
	var createdAt, updatedAt string

	err := scan(&app.ID, &app.UserID, &cfg, &status, &comment, &roomIDs, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(cfg), &app.RoomsConfig); err != nil {
		return nil, fmt.Errorf("decoding rooms config: %w", err)
	}
	app.Status = Status(status)
	if comment.Valid {
		app.RejectionComment = comment.String
	}
	if roomIDs.Valid {
		if err := json.Unmarshal([]byte(roomIDs.String), &app.CreatedRoomIDs); err != nil {
			return nil, fmt.Errorf("decoding created room ids: %w", err)
		}
	}
	app.CreatedAt = parseTime(createdAt)
	app.UpdatedAt = parseTime(updatedAt)
	return &app, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
