package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smartdom/smartdom-core/internal/application"
	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
)

// maxNameRetries bounds re-probing when a room insert loses a naming race.
const maxNameRetries = 3

// Engine provisions rooms and sensors for approved applications.
type Engine struct {
	db      *sql.DB
	catalog *catalog.Catalog
	logger  *logging.Logger
}

// NewEngine creates a provisioning engine.
func NewEngine(db *sql.DB, cat *catalog.Catalog, logger *logging.Logger) *Engine {
	return &Engine{
		db:      db,
		catalog: cat,
		logger:  logger.With("component", "provision"),
	}
}

// Provision creates the rooms and sensors an application requests, records
// the approval on the application row and returns the ids of the created
// rooms, in request order.
//
// Everything runs in one transaction, so two admins approving the same
// application concurrently cannot both provision it: the loser's status
// update hits an already decided row, the whole batch rolls back and
// application.ErrNotPending comes back. Unknown room or sensor type ids are
// skipped with a warning so one bad entry does not sink the rest of the
// batch; database failures abort and roll back the whole application.
func (e *Engine) Provision(ctx context.Context, app *application.Application) ([]int64, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning provisioning transaction: %w", err)
	}
	defer tx.Rollback()

	rooms := home.NewRoomRepository(tx)
	sensors := home.NewSensorRepository(tx)

	existing, err := rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshotting room names: %w", err)
	}
	names := make([]string, len(existing))
	for i, rm := range existing {
		names[i] = rm.Name
	}

	pool := newNamePool(names)
	numbers := newNumberPool(sensors)
	now := time.Now().UTC()

	var created []int64
	for i, rc := range app.RoomsConfig {
		base, ok := e.catalog.RoomTypeName(rc.RoomTypeID)
		if !ok {
			e.logger.Warn("skipping room with unknown type",
				"application_id", app.ID, "index", i, "room_type_id", rc.RoomTypeID)
			continue
		}

		room, err := e.createRoom(ctx, rooms, pool, app.UserID, base, rc.RoomTypeID)
		if err != nil {
			return nil, err
		}
		created = append(created, room.ID)

		for _, stID := range rc.SensorTypeIDs {
			st, ok := e.catalog.SensorType(stID)
			if !ok {
				e.logger.Warn("skipping unknown sensor type",
					"application_id", app.ID, "room", room.Name, "sensor_type_id", stID)
				continue
			}
			number, err := numbers.allocate(ctx, room.ID, st.Kind)
			if err != nil {
				return nil, fmt.Errorf("numbering %s sensor in room %q: %w", st.Kind, room.Name, err)
			}
			s, err := home.NewDefaultSensor(st.Kind, room.ID, number, now)
			if err != nil {
				e.logger.Warn("skipping sensor with unknown kind",
					"application_id", app.ID, "room", room.Name, "kind", string(st.Kind))
				continue
			}
			if err := sensors.Create(ctx, s); err != nil {
				return nil, err
			}
		}
	}

	if err := application.RecordApproval(ctx, tx, app.ID, created); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing provisioning transaction: %w", err)
	}

	e.logger.Info("provisioned application",
		"application_id", app.ID, "user_id", app.UserID, "rooms", len(created))
	return created, nil
}

// createRoom inserts a room under a resolved unique name, re-probing a
// bounded number of times if the insert loses a race on the name.
func (e *Engine) createRoom(ctx context.Context, rooms home.RoomRepository, pool *namePool, ownerID int64, base string, typeID int) (*home.Room, error) {
	for attempt := 0; attempt < maxNameRetries; attempt++ {
		name := pool.resolve(base)
		room := &home.Room{OwnerID: ownerID, Name: name, TypeID: typeID}
		err := rooms.Create(ctx, room)
		if err == nil {
			return room, nil
		}
		if errors.Is(err, home.ErrDuplicateRoomName) {
			pool.markTaken(name)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("allocating a name for %q: %w", base, home.ErrDuplicateRoomName)
}
