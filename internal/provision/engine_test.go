package provision

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smartdom/smartdom-core/internal/application"
	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	// Matches the initial migration
	schema := `
		CREATE TABLE applications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			rooms_config TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			rejection_comment TEXT,
			created_room_ids TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			name TEXT NOT NULL UNIQUE,
			room_type_id INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE sensors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			sensor_number INTEGER NOT NULL,
			value REAL,
			is_on INTEGER,
			ppm REAL,
			gas_status TEXT,
			humidity_level REAL,
			fan_speed REAL,
			trigger_time TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			UNIQUE(room_id, kind, sensor_number)
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func newTestEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewEngine(db, catalog.Default(), quietLogger()), db
}

// seedPendingApplication inserts a pending application row and fills in
// its generated id.
func seedPendingApplication(t *testing.T, db *sql.DB, app *application.Application) {
	t.Helper()
	if err := application.NewRepository(db).Create(context.Background(), app); err != nil {
		t.Fatalf("seeding application: %v", err)
	}
}

func TestEngineProvisionSingleRoom(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	app := &application.Application{
		UserID: 42,
		RoomsConfig: []application.RoomConfig{
			// Kitchen with temperature, two lights, gas
			{RoomTypeID: 3, SensorTypeIDs: []int{1, 2, 2, 3}},
		},
	}
	seedPendingApplication(t, db, app)

	created, err := engine.Provision(ctx, app)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d rooms, want 1", len(created))
	}

	rooms := home.NewRoomRepository(db)
	room, err := rooms.GetByID(ctx, created[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if room.Name != "Кухня" {
		t.Errorf("room name = %q, want %q", room.Name, "Кухня")
	}
	if room.OwnerID != 42 {
		t.Errorf("owner = %d, want 42", room.OwnerID)
	}

	sensors := home.NewSensorRepository(db)
	list, err := sensors.ListByRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("ListByRoom: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("provisioned %d sensors, want 4", len(list))
	}

	// The two lights must be numbered 1 and 2; the singles get 1.
	byKind := map[catalog.Kind][]int{}
	for _, s := range list {
		byKind[s.Kind] = append(byKind[s.Kind], s.Number)
	}
	if got := byKind[catalog.KindLight]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("light numbers = %v, want [1 2]", got)
	}
	if got := byKind[catalog.KindTemperature]; len(got) != 1 || got[0] != 1 {
		t.Errorf("temperature numbers = %v, want [1]", got)
	}
	if got := byKind[catalog.KindGas]; len(got) != 1 || got[0] != 1 {
		t.Errorf("gas numbers = %v, want [1]", got)
	}

	// The approval lands on the application row in the same transaction.
	decided, err := application.NewRepository(db).GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID application: %v", err)
	}
	if decided.Status != application.StatusApproved {
		t.Errorf("status = %q, want %q", decided.Status, application.StatusApproved)
	}
	if len(decided.CreatedRoomIDs) != 1 || decided.CreatedRoomIDs[0] != room.ID {
		t.Errorf("created_room_ids = %v, want [%d]", decided.CreatedRoomIDs, room.ID)
	}
}

func TestEngineProvisionSecondKitchen(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	first := &application.Application{
		UserID:      1,
		RoomsConfig: []application.RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1}}},
	}
	seedPendingApplication(t, db, first)
	if _, err := engine.Provision(ctx, first); err != nil {
		t.Fatalf("first Provision: %v", err)
	}

	second := &application.Application{
		UserID:      2,
		RoomsConfig: []application.RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1}}},
	}
	seedPendingApplication(t, db, second)
	created, err := engine.Provision(ctx, second)
	if err != nil {
		t.Fatalf("second Provision: %v", err)
	}

	rooms := home.NewRoomRepository(db)
	room, err := rooms.GetByID(ctx, created[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if room.Name != "Кухня 2" {
		t.Errorf("room name = %q, want %q", room.Name, "Кухня 2")
	}
}

func TestEngineProvisionTwoKitchensInOneBatch(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	app := &application.Application{
		UserID: 1,
		RoomsConfig: []application.RoomConfig{
			{RoomTypeID: 3, SensorTypeIDs: []int{1}},
			{RoomTypeID: 3, SensorTypeIDs: []int{1}},
		},
	}
	seedPendingApplication(t, db, app)
	created, err := engine.Provision(ctx, app)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d rooms, want 2", len(created))
	}

	rooms := home.NewRoomRepository(db)
	names := make([]string, 2)
	for i, id := range created {
		room, err := rooms.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		names[i] = room.Name
	}
	if names[0] != "Кухня" || names[1] != "Кухня 2" {
		t.Errorf("names = %v, want [Кухня, Кухня 2]", names)
	}
}

func TestEngineSkipsUnknownTypes(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	app := &application.Application{
		UserID: 1,
		RoomsConfig: []application.RoomConfig{
			{RoomTypeID: 99, SensorTypeIDs: []int{1}},
			{RoomTypeID: 4, SensorTypeIDs: []int{1, 42, 6}},
		},
	}
	seedPendingApplication(t, db, app)
	created, err := engine.Provision(ctx, app)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d rooms, want 1 (unknown room type skipped)", len(created))
	}

	sensors := home.NewSensorRepository(db)
	list, err := sensors.ListByRoom(ctx, created[0])
	if err != nil {
		t.Fatalf("ListByRoom: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("provisioned %d sensors, want 2 (unknown sensor type skipped)", len(list))
	}
}

func TestEngineProvisionAlreadyDecided(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	app := &application.Application{
		UserID:      1,
		RoomsConfig: []application.RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1}}},
	}
	seedPendingApplication(t, db, app)
	if _, err := engine.Provision(ctx, app); err != nil {
		t.Fatalf("first Provision: %v", err)
	}

	// Re-approving a decided application must roll back whatever it
	// provisioned, not hand out a duplicate set of rooms.
	if _, err := engine.Provision(ctx, app); !errors.Is(err, application.ErrNotPending) {
		t.Fatalf("second Provision error = %v, want ErrNotPending", err)
	}

	rooms, err := home.NewRoomRepository(db).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rooms) != 1 {
		t.Errorf("room count = %d, want 1", len(rooms))
	}
}

func TestEngineFreshRoomNumberingStartsAtOne(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()

	// A seeded room with existing sensors must not leak its numbering
	// into the fresh room the approval creates.
	rooms := home.NewRoomRepository(db)
	room := &home.Room{OwnerID: 1, Name: "Гостиная", TypeID: 2}
	if err := rooms.Create(ctx, room); err != nil {
		t.Fatalf("seeding room: %v", err)
	}
	seedTemperatureSensors(t, db, room.ID)

	app := &application.Application{
		UserID:      1,
		RoomsConfig: []application.RoomConfig{{RoomTypeID: 2, SensorTypeIDs: []int{1, 1}}},
	}
	seedPendingApplication(t, db, app)
	created, err := engine.Provision(ctx, app)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	repo := home.NewSensorRepository(db)
	list, err := repo.ListByRoom(ctx, created[0])
	if err != nil {
		t.Fatalf("ListByRoom: %v", err)
	}
	if len(list) != 2 || list[0].Number != 1 || list[1].Number != 2 {
		t.Errorf("new room numbering = %+v, want 1 and 2", list)
	}
}

func TestNumberPoolContinuesFromExistingMax(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rooms := home.NewRoomRepository(db)
	room := &home.Room{OwnerID: 1, Name: "Кабинет", TypeID: 9}
	if err := rooms.Create(ctx, room); err != nil {
		t.Fatalf("seeding room: %v", err)
	}
	seedTemperatureSensors(t, db, room.ID)

	pool := newNumberPool(home.NewSensorRepository(db))

	for want := 3; want <= 5; want++ {
		got, err := pool.allocate(ctx, room.ID, catalog.KindTemperature)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if got != want {
			t.Errorf("allocate = %d, want %d", got, want)
		}
	}

	// A different kind in the same room has its own sequence.
	got, err := pool.allocate(ctx, room.ID, catalog.KindLight)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got != 1 {
		t.Errorf("light allocate = %d, want 1", got)
	}
}

// seedTemperatureSensors inserts two temperature sensors into a room directly.
func seedTemperatureSensors(t *testing.T, db *sql.DB, roomID int64) {
	t.Helper()
	repo := home.NewSensorRepository(db)
	ctx := context.Background()
	for n := 1; n <= 2; n++ {
		s := &home.Sensor{RoomID: roomID, Kind: catalog.KindTemperature, Number: n}
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("seeding sensor %d: %v", n, err)
		}
	}
}
