package home

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DBTX is the subset of database/sql methods the repositories use.
// Both *sql.DB and *sql.Tx satisfy it, which lets the provisioning engine
// run a whole approval batch against one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RoomRepository defines room persistence operations.
type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id int64) (*Room, error)
	GetByIDName(ctx context.Context, id int64, name string) (*Room, error)
	List(ctx context.Context) ([]Room, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Room, error)
	NameExists(ctx context.Context, name string) (bool, error)
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

// SQLiteRoomRepository implements RoomRepository using SQLite.
type SQLiteRoomRepository struct {
	db DBTX
}

// NewRoomRepository creates a SQLite-backed room repository.
func NewRoomRepository(db DBTX) *SQLiteRoomRepository {
	return &SQLiteRoomRepository{db: db}
}

// Create inserts a new room and fills in its generated id.
// Returns ErrDuplicateRoomName when the UNIQUE(name) constraint fires.
func (r *SQLiteRoomRepository) Create(ctx context.Context, room *Room) error {
	const query = `INSERT INTO rooms (owner_id, name, room_type_id) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, room.OwnerID, room.Name, room.TypeID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRoomName
		}
		return fmt.Errorf("inserting room %q: %w", room.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading room id: %w", err)
	}
	room.ID = id
	return nil
}

// GetByID returns a single room by id.
func (r *SQLiteRoomRepository) GetByID(ctx context.Context, id int64) (*Room, error) {
	const query = `SELECT id, owner_id, name, room_type_id, created_at FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDName returns the room matching both id and name exactly.
// Ingestion uses this to reject stale device references.
func (r *SQLiteRoomRepository) GetByIDName(ctx context.Context, id int64, name string) (*Room, error) {
	const query = `SELECT id, owner_id, name, room_type_id, created_at FROM rooms WHERE id = ? AND name = ?`
	return scanRoom(r.db.QueryRowContext(ctx, query, id, name))
}

// List returns all rooms ordered by id.
func (r *SQLiteRoomRepository) List(ctx context.Context) ([]Room, error) {
	const query = `SELECT id, owner_id, name, room_type_id, created_at FROM rooms ORDER BY id`
	return r.queryRooms(ctx, query)
}

// ListByOwner returns rooms belonging to one user, ordered by id.
func (r *SQLiteRoomRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Room, error) {
	const query = `SELECT id, owner_id, name, room_type_id, created_at FROM rooms WHERE owner_id = ? ORDER BY id`
	return r.queryRooms(ctx, query, ownerID)
}

// NameExists reports whether a room with this exact name already exists.
func (r *SQLiteRoomRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking room name %q: %w", name, err)
	}
	return count > 0, nil
}

// CountByOwner returns the number of rooms a user owns.
func (r *SQLiteRoomRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms WHERE owner_id = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting rooms for user %d: %w", ownerID, err)
	}
	return count, nil
}

// queryRooms executes a query and returns a slice of Room.
func (r *SQLiteRoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var rm Room
		var createdAt string
		if err := rows.Scan(&rm.ID, &rm.OwnerID, &rm.Name, &rm.TypeID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rm.CreatedAt = parseTime(createdAt)
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// scanRoom scans a single row into a Room.
func scanRoom(row *sql.Row) (*Room, error) {
	var rm Room
	var createdAt string
	err := row.Scan(&rm.ID, &rm.OwnerID, &rm.Name, &rm.TypeID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	rm.CreatedAt = parseTime(createdAt)
	return &rm, nil
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
