package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
)

// roomSummary is a room plus per-kind sensor counts, the shape the mobile
// client renders its room grid from.
type roomSummary struct {
	home.Room
	SensorCounts map[catalog.Kind]int `json:"sensor_counts"`
}

// handleListRooms lists every provisioned room. Non-admin callers see only
// their own rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	var (
		rooms []home.Room
		err   error
	)
	if identity.Admin {
		rooms, err = s.rooms.List(r.Context())
	} else {
		rooms, err = s.rooms.ListByOwner(r.Context(), identity.UserID)
	}
	if err != nil {
		s.logger.Error("listing rooms", "error", err)
		writeInternalError(w, "failed to list rooms")
		return
	}

	s.writeRoomSummaries(r.Context(), w, rooms)
}

// handleMyRooms lists the caller's own rooms regardless of admin status.
func (s *Server) handleMyRooms(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	rooms, err := s.rooms.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("listing rooms", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to list rooms")
		return
	}

	s.writeRoomSummaries(r.Context(), w, rooms)
}

func (s *Server) writeRoomSummaries(ctx context.Context, w http.ResponseWriter, rooms []home.Room) {
	summaries := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		sensors, err := s.sensors.ListByRoom(ctx, room.ID)
		if err != nil {
			s.logger.Error("counting sensors", "room_id", room.ID, "error", err)
			writeInternalError(w, "failed to list rooms")
			return
		}
		counts := make(map[catalog.Kind]int)
		for _, sn := range sensors {
			counts[sn.Kind]++
		}
		summaries = append(summaries, roomSummary{Room: room, SensorCounts: counts})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": summaries, "count": len(summaries)})
}

// loadOwnedRoom fetches a room and enforces the owner-or-admin rule.
// It writes the error response itself and returns nil when access is denied.
func (s *Server) loadOwnedRoom(w http.ResponseWriter, r *http.Request) *home.Room {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return nil
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid room id")
		return nil
	}

	room, err := s.rooms.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, home.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return nil
		}
		writeInternalError(w, "failed to load room")
		return nil
	}
	if room.OwnerID != identity.UserID && !identity.Admin {
		writeForbidden(w, "not your room")
		return nil
	}
	return room
}

// handleGetRoom returns one room with its full sensor list.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room := s.loadOwnedRoom(w, r)
	if room == nil {
		return
	}

	sensors, err := s.sensors.ListByRoom(r.Context(), room.ID)
	if err != nil {
		s.logger.Error("listing sensors", "room_id", room.ID, "error", err)
		writeInternalError(w, "failed to load room")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": room, "sensors": sensors})
}

// handleRoomSensors returns the sensors of one room.
func (s *Server) handleRoomSensors(w http.ResponseWriter, r *http.Request) {
	room := s.loadOwnedRoom(w, r)
	if room == nil {
		return
	}

	sensors, err := s.sensors.ListByRoom(r.Context(), room.ID)
	if err != nil {
		s.logger.Error("listing sensors", "room_id", room.ID, "error", err)
		writeInternalError(w, "failed to list sensors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleGetSensor returns one sensor addressed by room, kind and number.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	room := s.loadOwnedRoom(w, r)
	if room == nil {
		return
	}

	kind := catalog.Kind(chi.URLParam(r, "kind"))
	if !catalog.ValidKind(kind) {
		writeBadRequest(w, "unknown sensor kind")
		return
	}
	number, err := idParam(r, "number")
	if err != nil {
		writeBadRequest(w, "invalid sensor number")
		return
	}

	sensor, err := s.sensors.Get(r.Context(), room.ID, kind, int(number))
	if err != nil {
		if errors.Is(err, home.ErrSensorNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to load sensor")
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}
