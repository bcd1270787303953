package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ApplyStore defines the database methods needed by the public application
// endpoint. Satisfied by *database.Queries.
type ApplyStore interface {
	GetSignupKeyByCode(ctx context.Context, code string) (database.SignupKey, error)
	CreateApplication(ctx context.Context, arg database.CreateApplicationParams) (database.StaffApplication, error)
}

// ApplyHandler handles the public staff application endpoint. It is the
// only unauthenticated write surface; the signup key code in the URL is
// what gates it.
type ApplyHandler struct {
	store ApplyStore
}

// NewApplyHandler creates a new ApplyHandler.
func NewApplyHandler(store ApplyStore) *ApplyHandler {
	return &ApplyHandler{store: store}
}

// RegisterRoutes registers the public application endpoint.
func (h *ApplyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/apply/{code}", h.Submit)
}

type applyRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Position   string `json:"position"`
	HourlyRate string `json:"hourly_rate"`
	Message    string `json:"message"`
}

// Submit handles POST /apply/{code}. A stale code (one that has been
// regenerated since it was shared) no longer matches any row and is
// indistinguishable from a code that never existed.
func (h *ApplyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	key, err := h.store.GetSignupKeyByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid signup code"})
			return
		}
		log.Printf("ERROR: get signup key by code: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FullName == "" || req.Email == "" || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "full_name, email and phone are required"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email"})
		return
	}

	switch req.Position {
	case enum.PositionWaiter, enum.PositionCook, enum.PositionBartender, enum.PositionHost:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid position"})
		return
	}

	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil || rate.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid hourly_rate"})
		return
	}

	params := database.CreateApplicationParams{
		RestaurantID: key.RestaurantID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Position:     req.Position,
		HourlyRate:   decimalToNumeric(rate),
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		params.Message = pgtype.Text{String: msg, Valid: true}
	}

	app, err := h.store.CreateApplication(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create application: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}
