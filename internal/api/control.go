package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/control"
	"github.com/smartdom/smartdom-core/internal/home"
)

// setModeRequest is the request body for PUT /control/mode.
type setModeRequest struct {
	IsManual bool `json:"is_manual"`
}

// toggleRequest is the request body for POST /control/toggle.
type toggleRequest struct {
	RoomID       int64        `json:"room_id"`
	Kind         catalog.Kind `json:"kind"`
	SensorNumber int          `json:"sensor_number"`
	IsOn         bool         `json:"is_on"`
}

// handleGetMode returns the caller's control mode. Users without a stored
// mode are automatic.
func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	mode, err := s.control.Mode(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("loading control mode", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to load control mode")
		return
	}
	writeJSON(w, http.StatusOK, mode)
}

// handleSetMode switches the caller between manual and automatic control.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req setModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	mode, err := s.control.SetMode(r.Context(), identity.UserID, req.IsManual)
	if err != nil {
		s.logger.Error("setting control mode", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to set control mode")
		return
	}
	writeJSON(w, http.StatusOK, mode)
}

// handleToggle switches an actuator (light or ventilation) on or off.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RoomID < 1 || req.SensorNumber < 1 {
		writeBadRequest(w, "room_id and sensor_number are required")
		return
	}

	sensor, err := s.control.Toggle(r.Context(), identity.UserID, identity.Admin,
		req.RoomID, req.Kind, req.SensorNumber, req.IsOn)
	if err != nil {
		switch {
		case errors.Is(err, control.ErrNotToggleable):
			writeBadRequest(w, "only light and ventilation sensors can be toggled")
		case errors.Is(err, control.ErrAutoMode):
			writeForbidden(w, "switch to manual mode first")
		case errors.Is(err, control.ErrNotOwner):
			writeForbidden(w, "not your room")
		case errors.Is(err, home.ErrRoomNotFound):
			writeNotFound(w, "room not found")
		case errors.Is(err, home.ErrSensorNotFound):
			writeNotFound(w, "sensor not found")
		default:
			s.logger.Error("toggling sensor", "user_id", identity.UserID,
				"room_id", req.RoomID, "error", err)
			writeInternalError(w, "failed to toggle sensor")
		}
		return
	}

	writeJSON(w, http.StatusOK, sensor)
}
