package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SignupKeyIssuer defines the service methods needed by signup key
// handlers. Satisfied by *service.SignupKeyService.
type SignupKeyIssuer interface {
	Current(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error)
	Regenerate(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error)
}

// SignupKeyHandler handles signup key endpoints.
type SignupKeyHandler struct {
	svc SignupKeyIssuer
}

// NewSignupKeyHandler creates a new SignupKeyHandler.
func NewSignupKeyHandler(svc SignupKeyIssuer) *SignupKeyHandler {
	return &SignupKeyHandler{svc: svc}
}

// RegisterRoutes registers signup key endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/signup-key
func (h *SignupKeyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Current)
	r.Post("/regenerate", h.Regenerate)
}

type signupKeyResponse struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Current handles GET /restaurants/{rid}/signup-key. The first call for a
// restaurant issues its key.
func (h *SignupKeyHandler) Current(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	key, err := h.svc.Current(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: get signup key: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, signupKeyResponse{Code: key.Code, IssuedAt: key.IssuedAt})
}

// Regenerate handles POST /restaurants/{rid}/signup-key/regenerate. The
// previous code stops working immediately.
func (h *SignupKeyHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	key, err := h.svc.Regenerate(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: regenerate signup key: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, signupKeyResponse{Code: key.Code, IssuedAt: key.IssuedAt})
}
