package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/cardkeep/cardkeep-be/internal/auth"
	"github.com/cardkeep/cardkeep-be/internal/models"
	"github.com/cardkeep/cardkeep-be/internal/services"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  *auth.TokenService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// CredentialsPayload defines the structure for register and login requests.
type CredentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration. A fresh session token is issued
// immediately and delivered in the x-auth response header.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusBadRequest)
		return
	}

	if err := h.issueSession(w, user.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session token")
		http.Error(w, "Failed to issue token", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// Login handles credential verification and session token issuance. Failures
// are uniform; the response never says whether the email or password was
// wrong.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		http.Error(w, "Invalid credentials", http.StatusBadRequest)
		return
	}

	if err := h.issueSession(w, user.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session token")
		http.Error(w, "Failed to issue token", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// Logout removes exactly the presented token from the user's session list.
// The token being gone already still counts as success.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	token, tok := auth.TokenFromContext(r.Context())
	if !ok || !tok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.service.RemoveSession(user.ID, token); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to remove session")
		http.Error(w, "Failed to log out", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Me returns the authenticated user's public fields.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// issueSession mints a token, records it in the user's session list and sets
// the x-auth response header.
func (h *UserHandler) issueSession(w http.ResponseWriter, userID string) error {
	token, expiresAt, err := h.tokens.Issue(userID, auth.ScopeAuth)
	if err != nil {
		return err
	}
	session := models.Session{
		Token:     token,
		UserID:    userID,
		Access:    auth.ScopeAuth,
		ExpiresAt: expiresAt,
	}
	if err := h.service.AddSession(session); err != nil {
		return err
	}
	w.Header().Set(auth.Header, token)
	return nil
}
