package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smartdom/smartdom-core/internal/application"
	"github.com/smartdom/smartdom-core/internal/auth"
)

// createApplicationRequest is the request body for POST /applications.
type createApplicationRequest struct {
	RoomsConfig []application.RoomConfig `json:"rooms_config"`
}

// decisionRequest is the request body for PUT /applications/{id}/decision.
type decisionRequest struct {
	Status           application.Status `json:"status"`
	RejectionComment string             `json:"rejection_comment"`
}

// idParam parses a positive int64 URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// handleCreateApplication submits a provisioning request for the caller.
// Admins manage the installation and do not apply for rooms themselves.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	if identity.Admin {
		writeForbidden(w, application.ErrAdminApplicant.Error())
		return
	}

	var req createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := application.Validate(req.RoomsConfig, s.catalog); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	app := &application.Application{
		UserID:      identity.UserID,
		RoomsConfig: req.RoomsConfig,
		Status:      application.StatusPending,
	}
	if err := s.apps.Create(r.Context(), app); err != nil {
		s.logger.Error("creating application", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to create application")
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

// handleMyApplications lists the caller's own applications.
func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	apps, err := s.apps.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("listing applications", "user_id", identity.UserID, "error", err)
		writeInternalError(w, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// handleListApplications lists every application (admin only).
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.apps.List(r.Context())
	if err != nil {
		s.logger.Error("listing applications", "error", err)
		writeInternalError(w, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// handlePendingApplications lists applications awaiting a decision (admin only).
func (s *Server) handlePendingApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.apps.ListByStatus(r.Context(), application.StatusPending)
	if err != nil {
		s.logger.Error("listing pending applications", "error", err)
		writeInternalError(w, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// handleUserApplications lists another user's applications (admin only).
func (s *Server) handleUserApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}
	if _, err := s.users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to load user")
		return
	}

	apps, err := s.apps.ListByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("listing applications", "user_id", userID, "error", err)
		writeInternalError(w, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps, "count": len(apps)})
}

// handleGetApplication returns one application. Non-admin callers may only
// read their own.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid application id")
		return
	}

	app, err := s.apps.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeNotFound(w, "application not found")
			return
		}
		writeInternalError(w, "failed to load application")
		return
	}
	if app.UserID != identity.UserID && !identity.Admin {
		writeForbidden(w, "not your application")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleDecideApplication approves or rejects a pending application
// (admin only). Approval provisions the requested rooms and sensors and
// records the decision in one transaction.
func (s *Server) handleDecideApplication(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid application id")
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Status != application.StatusApproved && req.Status != application.StatusRejected {
		writeBadRequest(w, "status must be approved or rejected")
		return
	}
	if req.Status == application.StatusRejected && req.RejectionComment == "" {
		writeBadRequest(w, "rejection requires a comment")
		return
	}

	app, err := s.apps.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			writeNotFound(w, "application not found")
			return
		}
		writeInternalError(w, "failed to load application")
		return
	}
	if !app.Pending() {
		writeConflict(w, "application already decided")
		return
	}

	if req.Status == application.StatusApproved {
		roomIDs, err := s.provisioner.Provision(r.Context(), app)
		if err != nil {
			switch {
			case errors.Is(err, application.ErrNotPending):
				writeConflict(w, "application already decided")
			case errors.Is(err, application.ErrNotFound):
				writeNotFound(w, "application not found")
			default:
				s.logger.Error("provisioning application", "application_id", app.ID, "error", err)
				writeInternalError(w, "failed to provision rooms")
			}
			return
		}
		app.Status = application.StatusApproved
		app.CreatedRoomIDs = roomIDs
		writeJSON(w, http.StatusOK, app)
		return
	}

	app.Status = application.StatusRejected
	app.RejectionComment = req.RejectionComment
	if err := s.apps.UpdateDecision(r.Context(), app); err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			writeNotFound(w, "application not found")
		case errors.Is(err, application.ErrNotPending):
			writeConflict(w, "application already decided")
		default:
			s.logger.Error("recording decision", "application_id", app.ID, "error", err)
			writeInternalError(w, "failed to record decision")
		}
		return
	}

	writeJSON(w, http.StatusOK, app)
}
