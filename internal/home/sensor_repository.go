package home

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smartdom/smartdom-core/internal/catalog"
)

// SensorRepository defines sensor persistence operations.
type SensorRepository interface {
	Create(ctx context.Context, s *Sensor) error
	Get(ctx context.Context, roomID int64, kind catalog.Kind, number int) (*Sensor, error)
	ListByRoom(ctx context.Context, roomID int64) ([]Sensor, error)
	MaxNumber(ctx context.Context, roomID int64, kind catalog.Kind) (int, error)
	Update(ctx context.Context, s *Sensor) error
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

// SQLiteSensorRepository implements SensorRepository using SQLite.
type SQLiteSensorRepository struct {
	db DBTX
}

// NewSensorRepository creates a SQLite-backed sensor repository.
func NewSensorRepository(db DBTX) *SQLiteSensorRepository {
	return &SQLiteSensorRepository{db: db}
}

const sensorColumns = `id, room_id, kind, sensor_number, value, is_on, ppm, gas_status,
	humidity_level, fan_speed, trigger_time, created_at, updated_at`

// Create inserts a new sensor row and fills in its generated id.
func (r *SQLiteSensorRepository) Create(ctx context.Context, s *Sensor) error {
	const query = `
		INSERT INTO sensors (room_id, kind, sensor_number, value, is_on, ppm, gas_status,
			humidity_level, fan_speed, trigger_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		s.RoomID, string(s.Kind), s.Number,
		nullFloat(s.Value), nullBool(s.IsOn), nullFloat(s.PPM), nullStr(string(s.GasStatus)),
		nullFloat(s.HumidityLevel), nullFloat(s.FanSpeed), nullTime(s.TriggerTime))
	if err != nil {
		return fmt.Errorf("inserting %s sensor %d in room %d: %w", s.Kind, s.Number, s.RoomID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading sensor id: %w", err)
	}
	s.ID = id
	return nil
}

// Get returns the sensor identified by its composite key (room, kind, number).
func (r *SQLiteSensorRepository) Get(ctx context.Context, roomID int64, kind catalog.Kind, number int) (*Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE room_id = ? AND kind = ? AND sensor_number = ?`
	row := r.db.QueryRowContext(ctx, query, roomID, string(kind), number)
	s, err := scanSensor(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, fmt.Errorf("scanning sensor: %w", err)
	}
	return s, nil
}

// ListByRoom returns all sensors in a room, ordered by kind then number.
func (r *SQLiteSensorRepository) ListByRoom(ctx context.Context, roomID int64) ([]Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE room_id = ? ORDER BY kind, sensor_number`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying sensors for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var sensors []Sensor
	for rows.Next() {
		s, err := scanSensor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor row: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor rows: %w", err)
	}
	return sensors, nil
}

// MaxNumber returns the highest sensor_number for a kind within a room,
// or 0 when the room has no sensors of that kind yet.
func (r *SQLiteSensorRepository) MaxNumber(ctx context.Context, roomID int64, kind catalog.Kind) (int, error) {
	const query = `SELECT COALESCE(MAX(sensor_number), 0) FROM sensors WHERE room_id = ? AND kind = ?`
	var max int
	err := r.db.QueryRowContext(ctx, query, roomID, string(kind)).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("finding max %s number in room %d: %w", kind, roomID, err)
	}
	return max, nil
}

// Update persists the mutable state fields of a sensor.
func (r *SQLiteSensorRepository) Update(ctx context.Context, s *Sensor) error {
	const query = `
		UPDATE sensors
		SET value = ?, is_on = ?, ppm = ?, gas_status = ?, humidity_level = ?,
			fan_speed = ?, trigger_time = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		nullFloat(s.Value), nullBool(s.IsOn), nullFloat(s.PPM), nullStr(string(s.GasStatus)),
		nullFloat(s.HumidityLevel), nullFloat(s.FanSpeed), nullTime(s.TriggerTime), s.ID)
	if err != nil {
		return fmt.Errorf("updating sensor %d: %w", s.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking sensor update: %w", err)
	}
	if affected == 0 {
		return ErrSensorNotFound
	}
	return nil
}

// CountByOwner returns the number of sensors across all rooms a user owns.
func (r *SQLiteSensorRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	const query = `
		SELECT COUNT(*) FROM sensors s
		JOIN rooms r ON r.id = s.room_id
		WHERE r.owner_id = ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sensors for user %d: %w", ownerID, err)
	}
	return count, nil
}

// scanSensor scans one sensor row via the provided Scan function.
func scanSensor(scan func(...any) error) (*Sensor, error) {
	var s Sensor
	var kind string
	var value, ppm, humidity, fanSpeed sql.NullFloat64
	var isOn sql.NullBool
	var gasStatus, triggerTime sql.NullString
	var createdAt, updatedAt string

	err := scan(&s.ID, &s.RoomID, &kind, &s.Number, &value, &isOn, &ppm, &gasStatus,
		&humidity, &fanSpeed, &triggerTime, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.Kind = catalog.Kind(kind)
	if value.Valid {
		s.Value = &value.Float64
	}
	if isOn.Valid {
		s.IsOn = &isOn.Bool
	}
	if ppm.Valid {
		s.PPM = &ppm.Float64
	}
	if gasStatus.Valid {
		s.GasStatus = GasStatus(gasStatus.String)
	}
	if humidity.Valid {
		s.HumidityLevel = &humidity.Float64
	}
	if fanSpeed.Valid {
		s.FanSpeed = &fanSpeed.Float64
	}
	if triggerTime.Valid {
		t := parseTime(triggerTime.String)
		s.TriggerTime = &t
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
