package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/smartdom/smartdom-core/internal/auth"
)

// Auth constants.
const (
	// ticketTTL is how long a WebSocket ticket is valid.
	ticketTTL = 60 * time.Second

	// minPasswordLength is the minimum accepted password length.
	minPasswordLength = 8
)

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Login      string `json:"login"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// refreshRequest is the request body for POST /auth/refresh and /auth/logout.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse is the token pair returned by login and refresh.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// handleRegister creates a new (non-admin) user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidLogin(req.Login) {
		writeBadRequest(w, "login must be 3-64 characters of letters, digits, dots, hyphens or underscores")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, "failed to hash password")
		return
	}

	user := &auth.User{
		Login:        req.Login,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MiddleName:   req.MiddleName,
		IsActive:     true,
	}
	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrLoginExists) {
			writeConflict(w, "login already taken")
			return
		}
		s.logger.Error("creating user", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin authenticates a user and returns an access/refresh token pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.users.GetByLogin(r.Context(), req.Login)
	if err != nil {
		// Same response as a wrong password; do not reveal which logins exist.
		writeUnauthorized(w, "invalid credentials")
		return
	}
	if !user.IsActive {
		writeUnauthorized(w, "account is inactive")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	s.issueTokens(r.Context(), w, user, "")
}

// handleRefresh rotates a refresh token and returns a fresh pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	stored, err := s.tokens.GetByTokenHash(r.Context(), auth.HashToken(req.RefreshToken))
	if err != nil {
		writeUnauthorized(w, "invalid refresh token")
		return
	}
	if stored.Revoked {
		// Reuse of a rotated token: treat every session of the user as compromised.
		if err := s.tokens.RevokeAllForUser(r.Context(), stored.UserID); err != nil {
			s.logger.Error("revoking sessions after token reuse", "user_id", stored.UserID, "error", err)
		}
		writeUnauthorized(w, "invalid refresh token")
		return
	}
	if time.Now().After(stored.ExpiresAt) {
		writeUnauthorized(w, "refresh token expired")
		return
	}

	user, err := s.users.GetByID(r.Context(), stored.UserID)
	if err != nil || !user.IsActive {
		writeUnauthorized(w, "invalid refresh token")
		return
	}

	s.issueTokens(r.Context(), w, user, stored.ID)
}

// handleLogout revokes the presented refresh token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RefreshToken != "" {
		stored, err := s.tokens.GetByTokenHash(r.Context(), auth.HashToken(req.RefreshToken))
		if err == nil {
			if err := s.tokens.Revoke(r.Context(), stored.ID); err != nil {
				s.logger.Error("revoking refresh token", "error", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// handleMe returns the authenticated user's account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, user)
}

// issueTokens signs an access token, stores a new refresh token (rotating
// oldID when it is set) and writes the pair to the response.
func (s *Server) issueTokens(ctx context.Context, w http.ResponseWriter, user *auth.User, oldID string) {
	ttl := s.secCfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15 // minutes
	}

	access, err := auth.GenerateAccessToken(user, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("signing access token", "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	raw, err := auth.GenerateRefreshToken()
	if err != nil {
		writeInternalError(w, "failed to generate token")
		return
	}

	refreshTTL := s.secCfg.JWT.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 60 * 24 * 30 // 30 days, in minutes
	}
	token := &auth.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(raw),
		ExpiresAt: time.Now().Add(time.Duration(refreshTTL) * time.Minute),
	}

	if oldID != "" {
		err = s.tokens.Rotate(ctx, oldID, token)
	} else {
		err = s.tokens.Create(ctx, token)
	}
	if err != nil {
		s.logger.Error("storing refresh token", "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: raw,
		TokenType:    "Bearer",
		ExpiresIn:    ttl * 60, // seconds
	})
}

// =============================================================================
// WebSocket tickets
// =============================================================================

// ticketStore holds pending WebSocket authentication tickets.
// Tickets are single-use and expire after ticketTTL.
type ticketStore struct {
	tickets map[string]ticketEntry
	mu      sync.Mutex
}

type ticketEntry struct {
	identity  Identity
	expiresAt time.Time
}

var wsTickets = &ticketStore{
	tickets: make(map[string]ticketEntry),
}

// handleWSTicket generates a single-use WebSocket authentication ticket.
// The client uses this ticket to authenticate the WebSocket connection
// without exposing the JWT in the URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	ticket := generateTicket()

	wsTickets.mu.Lock()
	wsTickets.tickets[ticket] = ticketEntry{
		identity:  identity,
		expiresAt: time.Now().Add(ticketTTL),
	}
	wsTickets.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}

// validateTicket checks if a ticket is valid and consumes it (single-use).
// It returns the identity the ticket was issued for.
func validateTicket(ticket string) (Identity, bool) {
	wsTickets.mu.Lock()
	defer wsTickets.mu.Unlock()

	entry, ok := wsTickets.tickets[ticket]
	if !ok {
		return Identity{}, false
	}

	// Remove ticket (single-use)
	delete(wsTickets.tickets, ticket)

	if time.Now().After(entry.expiresAt) {
		return Identity{}, false
	}
	return entry.identity, true
}

// ticketBytes is the number of random bytes used for WebSocket tickets.
const ticketBytes = 32

// generateTicket creates a cryptographically random ticket string.
func generateTicket() string {
	b := make([]byte, ticketBytes)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}

// cleanExpiredTickets removes expired tickets from the store.
func cleanExpiredTickets() {
	wsTickets.mu.Lock()
	defer wsTickets.mu.Unlock()

	now := time.Now()
	for ticket, entry := range wsTickets.tickets {
		if now.After(entry.expiresAt) {
			delete(wsTickets.tickets, ticket)
		}
	}
}

// cleanTicketsLoop runs cleanExpiredTickets periodically until the context is cancelled.
func (s *Server) cleanTicketsLoop(ctx context.Context) {
	ticker := time.NewTicker(ticketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanExpiredTickets()
		}
	}
}
