package api

import (
	"net/http"

	"github.com/smartdom/smartdom-core/internal/auth"
)

// profileResponse is the caller's account plus provisioning totals.
type profileResponse struct {
	User             *auth.User `json:"user"`
	ApplicationCount int        `json:"application_count"`
	RoomCount        int        `json:"room_count"`
	SensorCount      int        `json:"sensor_count"`
}

// handleProfile returns the caller's account with application, room and
// sensor totals.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	user, err := s.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		writeNotFound(w, "user not found")
		return
	}

	apps, err := s.apps.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("listing applications", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to load profile")
		return
	}
	roomCount, err := s.rooms.CountByOwner(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("counting rooms", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to load profile")
		return
	}
	sensorCount, err := s.sensors.CountByOwner(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("counting sensors", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:             user,
		ApplicationCount: len(apps),
		RoomCount:        roomCount,
		SensorCount:      sensorCount,
	})
}

// handleListUsers lists every user account (admin only).
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("listing users", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}
