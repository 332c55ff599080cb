package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/cardkeep/cardkeep-be/internal/auth"
	"github.com/cardkeep/cardkeep-be/internal/models"
	"github.com/cardkeep/cardkeep-be/internal/services"
)

// CardHandler handles HTTP requests for cards.
type CardHandler struct {
	service services.CardServiceProvider
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service services.CardServiceProvider) *CardHandler {
	return &CardHandler{service: service}
}

// CreateCardPayload defines the structure for card creation requests.
type CreateCardPayload struct {
	Text string `json:"text"`
}

// Create handles the request to create a new card owned by the requester.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload CreateCardPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	card, err := h.service.CreateCard(user.ID, payload.Text)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create card")
		http.Error(w, "Failed to create card", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(card)
}

// GetAll handles the request to list the requester's cards.
func (h *CardHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	cards, err := h.service.GetAllCards(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to retrieve cards")
		http.Error(w, "Failed to retrieve cards", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]models.Card{"cards": cards})
}

// Get handles the request to fetch a single owned card by its ID.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	card, err := h.service.GetCardByID(id, user.ID)
	if err != nil {
		respondCardError(w, err, id, user.ID, "Failed to get card")
		return
	}

	respondCard(w, card)
}

// Update handles the partial-update request for a card.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var patch services.CardPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	card, err := h.service.UpdateCard(id, user.ID, patch)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondCardError(w, err, id, user.ID, "Failed to update card")
		return
	}

	respondCard(w, card)
}

// Delete handles the request to delete a card, returning the removed
// document.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	card, err := h.service.DeleteCard(id, user.ID)
	if err != nil {
		respondCardError(w, err, id, user.ID, "Failed to delete card")
		return
	}

	respondCard(w, card)
}

// respondCardError maps a service error onto the wire: NotFound gets an
// empty 404 body (malformed and absent ids look identical), anything else a
// 400.
func respondCardError(w http.ResponseWriter, err error, cardID, userID, msg string) {
	if errors.Is(err, services.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	log.Error().Err(err).Str("card_id", cardID).Str("user_id", userID).Msg(msg)
	http.Error(w, msg, http.StatusBadRequest)
}

func respondCard(w http.ResponseWriter, card models.Card) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]models.Card{"card": card})
}
