package application

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
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
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	app := &Application{
		UserID: 42,
		RoomsConfig: []RoomConfig{
			{RoomTypeID: 3, SensorTypeIDs: []int{1, 2, 2}},
		},
	}
	if err := repo.Create(ctx, app); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if app.ID == 0 {
		t.Error("expected id to be set after create")
	}
	if app.Status != StatusPending {
		t.Errorf("status = %q, want pending", app.Status)
	}

	got, err := repo.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID != 42 {
		t.Errorf("user_id = %d, want 42", got.UserID)
	}
	if len(got.RoomsConfig) != 1 || got.RoomsConfig[0].RoomTypeID != 3 {
		t.Errorf("rooms_config = %+v", got.RoomsConfig)
	}
	if len(got.RoomsConfig[0].SensorTypeIDs) != 3 {
		t.Errorf("sensor_type_ids = %v, want three entries", got.RoomsConfig[0].SensorTypeIDs)
	}

	t.Run("missing id", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRepositoryLists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cfg := []RoomConfig{{RoomTypeID: 1, SensorTypeIDs: []int{1}}}
	for _, userID := range []int64{1, 1, 2} {
		if err := repo.Create(ctx, &Application{UserID: userID, RoomsConfig: cfg}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d, want 3", len(all))
	}
	if all[0].ID < all[1].ID {
		t.Error("expected List to return newest first")
	}

	mine, err := repo.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("ListByUser returned %d, want 2", len(mine))
	}

	pending, err := repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("ListByStatus returned %d, want 3", len(pending))
	}
}

func TestRepositoryUpdateDecision(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cfg := []RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1}}}

	t.Run("approve records room ids", func(t *testing.T) {
		app := &Application{UserID: 1, RoomsConfig: cfg}
		if err := repo.Create(ctx, app); err != nil {
			t.Fatalf("Create: %v", err)
		}

		app.Status = StatusApproved
		app.CreatedRoomIDs = []int64{10, 11}
		if err := repo.UpdateDecision(ctx, app); err != nil {
			t.Fatalf("UpdateDecision: %v", err)
		}

		got, err := repo.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != StatusApproved {
			t.Errorf("status = %q, want approved", got.Status)
		}
		if len(got.CreatedRoomIDs) != 2 || got.CreatedRoomIDs[0] != 10 {
			t.Errorf("created_room_ids = %v, want [10 11]", got.CreatedRoomIDs)
		}
	})

	t.Run("reject records comment", func(t *testing.T) {
		app := &Application{UserID: 1, RoomsConfig: cfg}
		if err := repo.Create(ctx, app); err != nil {
			t.Fatalf("Create: %v", err)
		}

		app.Status = StatusRejected
		app.RejectionComment = "duplicate request"
		if err := repo.UpdateDecision(ctx, app); err != nil {
			t.Fatalf("UpdateDecision: %v", err)
		}

		got, err := repo.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != StatusRejected || got.RejectionComment != "duplicate request" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("already decided", func(t *testing.T) {
		app := &Application{UserID: 1, RoomsConfig: cfg}
		if err := repo.Create(ctx, app); err != nil {
			t.Fatalf("Create: %v", err)
		}
		app.Status = StatusRejected
		app.RejectionComment = "no"
		if err := repo.UpdateDecision(ctx, app); err != nil {
			t.Fatalf("first decision: %v", err)
		}

		app.Status = StatusApproved
		app.RejectionComment = ""
		if err := repo.UpdateDecision(ctx, app); !errors.Is(err, ErrNotPending) {
			t.Errorf("err = %v, want ErrNotPending", err)
		}
	})

	t.Run("missing application", func(t *testing.T) {
		ghost := &Application{ID: 9999, Status: StatusApproved}
		if err := repo.UpdateDecision(ctx, ghost); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestRecordApproval(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cfg := []RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1}}}

	inTx := func(t *testing.T, fn func(tx *sql.Tx) error) error {
		t.Helper()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx: %v", err)
		}
		defer tx.Rollback()
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		return nil
	}

	t.Run("pending row is approved", func(t *testing.T) {
		app := &Application{UserID: 1, RoomsConfig: cfg}
		if err := repo.Create(ctx, app); err != nil {
			t.Fatalf("Create: %v", err)
		}

		err := inTx(t, func(tx *sql.Tx) error {
			return RecordApproval(ctx, tx, app.ID, []int64{7})
		})
		if err != nil {
			t.Fatalf("RecordApproval: %v", err)
		}

		got, err := repo.GetByID(ctx, app.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != StatusApproved {
			t.Errorf("status = %q, want approved", got.Status)
		}
		if len(got.CreatedRoomIDs) != 1 || got.CreatedRoomIDs[0] != 7 {
			t.Errorf("created_room_ids = %v, want [7]", got.CreatedRoomIDs)
		}
	})

	t.Run("already decided", func(t *testing.T) {
		app := &Application{UserID: 1, RoomsConfig: cfg}
		if err := repo.Create(ctx, app); err != nil {
			t.Fatalf("Create: %v", err)
		}
		app.Status = StatusRejected
		app.RejectionComment = "no"
		if err := repo.UpdateDecision(ctx, app); err != nil {
			t.Fatalf("UpdateDecision: %v", err)
		}

		err := inTx(t, func(tx *sql.Tx) error {
			return RecordApproval(ctx, tx, app.ID, []int64{7})
		})
		if !errors.Is(err, ErrNotPending) {
			t.Errorf("err = %v, want ErrNotPending", err)
		}
	})

	t.Run("missing application", func(t *testing.T) {
		err := inTx(t, func(tx *sql.Tx) error {
			return RecordApproval(ctx, tx, 9999, nil)
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
