package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StaffStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries.
type StaffStore interface {
	ListStaffByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.StaffAccount, error)
	SetStaffAvailability(ctx context.Context, arg database.SetStaffAvailabilityParams) (database.StaffAccount, error)
}

// StaffHandler handles staff roster endpoints.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/staff
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{id}/availability", h.SetAvailability)
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type staffResponse struct {
	ID              uuid.UUID `json:"id"`
	ApplicationID   *string   `json:"application_id"`
	RestaurantID    uuid.UUID `json:"restaurant_id"`
	UserID          uuid.UUID `json:"user_id"`
	Position        string    `json:"position"`
	HourlyRate      string    `json:"hourly_rate"`
	IsAvailable     bool      `json:"is_available"`
	OrdersCompleted int32     `json:"orders_completed"`
	TipsTotal       string    `json:"tips_total"`
	Rating          string    `json:"rating"`
	CreatedAt       time.Time `json:"created_at"`
}

// List handles GET /restaurants/{rid}/staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	staff, err := h.store.ListStaffByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = toStaffResponse(s)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"staff": resp})
}

// SetAvailability handles PATCH /restaurants/{rid}/staff/{id}/availability.
func (h *StaffHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	staffID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IsAvailable == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
		return
	}

	updated, err := h.store.SetStaffAvailability(r.Context(), database.SetStaffAvailabilityParams{
		ID:           staffID,
		RestaurantID: restaurantID,
		IsAvailable:  *req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff member not found"})
			return
		}
		log.Printf("ERROR: set staff availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toStaffResponse(updated))
}

func toStaffResponse(s database.StaffAccount) staffResponse {
	resp := staffResponse{
		ID:              s.ID,
		RestaurantID:    s.RestaurantID,
		UserID:          s.UserID,
		Position:        s.Position,
		HourlyRate:      numericToString(s.HourlyRate),
		IsAvailable:     s.IsAvailable,
		OrdersCompleted: s.OrdersCompleted,
		TipsTotal:       numericToString(s.TipsTotal),
		Rating:          numericToString(s.Rating),
		CreatedAt:       s.CreatedAt,
	}
	if s.ApplicationID.Valid {
		id := uuid.UUID(s.ApplicationID.Bytes).String()
		resp.ApplicationID = &id
	}
	return resp
}
