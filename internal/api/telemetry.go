package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartdom/smartdom-core/internal/home"
)

// ingestRequest is the request body for POST /telemetry/readings. Devices
// authenticate implicitly: the room id and name must match the same row.
type ingestRequest struct {
	RoomID   int64          `json:"room_id"`
	RoomName string         `json:"room_name"`
	Readings []home.Reading `json:"readings"`
}

// handleIngestReadings applies a telemetry batch over HTTP. It is the
// fallback path for devices without an MQTT stack; both paths share the
// same application logic.
func (s *Server) handleIngestReadings(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RoomID < 1 || req.RoomName == "" {
		writeBadRequest(w, "room_id and room_name are required")
		return
	}
	if len(req.Readings) == 0 {
		writeBadRequest(w, "readings must not be empty")
		return
	}

	result, err := s.telemetry.Apply(r.Context(), req.RoomID, req.RoomName, req.Readings)
	if err != nil {
		if errors.Is(err, home.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("applying telemetry batch", "room_id", req.RoomID, "error", err)
		writeInternalError(w, "failed to apply readings")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
