package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/enum"
	"github.com/dinetap/api/internal/middleware"
	"github.com/dinetap/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Approver defines the service methods needed by application review
// handlers. Satisfied by *service.ApprovalService.
type Approver interface {
	Approve(ctx context.Context, req service.ReviewRequest) (*service.ApproveResult, error)
	Reject(ctx context.Context, req service.ReviewRequest) (database.StaffApplication, error)
}

// ApplicationStore defines the database methods needed by application
// read handlers. Satisfied by *database.Queries.
type ApplicationStore interface {
	GetApplication(ctx context.Context, arg database.GetApplicationParams) (database.StaffApplication, error)
	ListApplications(ctx context.Context, arg database.ListApplicationsParams) ([]database.StaffApplication, error)
}

// ApplicationHandler handles staff application review endpoints.
type ApplicationHandler struct {
	svc   Approver
	store ApplicationStore
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(svc Approver, store ApplicationStore) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, store: store}
}

// RegisterRoutes registers application endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/applications
func (h *ApplicationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
}

// --- Response types ---

type applicationResponse struct {
	ID             uuid.UUID  `json:"id"`
	RestaurantID   uuid.UUID  `json:"restaurant_id"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Position       string     `json:"position"`
	HourlyRate     string     `json:"hourly_rate"`
	Message        *string    `json:"message"`
	Status         string     `json:"status"`
	AppliedAt      time.Time  `json:"applied_at"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ReviewedBy     *string    `json:"reviewed_by"`
	StaffAccountID *string    `json:"staff_account_id"`
}

type approveResponse struct {
	Application applicationResponse `json:"application"`
	Account     staffResponse       `json:"account"`
	// TempPassword is present only when this call provisioned a new login.
	// It is never shown again.
	TempPassword string `json:"temp_password,omitempty"`
}

type applicationListResponse struct {
	Applications []applicationResponse `json:"applications"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/applications.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	params := database.ListApplicationsParams{
		RestaurantID: restaurantID,
		Limit:        int32(limit),
		Offset:       int32(offset),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		switch s {
		case enum.ApplicationStatusPending, enum.ApplicationStatusApproved, enum.ApplicationStatusRejected:
			params.Status = pgtype.Text{String: s, Valid: true}
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
	}

	apps, err := h.store.ListApplications(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list applications: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]applicationResponse, len(apps))
	for i, a := range apps {
		resp[i] = toApplicationResponse(a)
	}

	writeJSON(w, http.StatusOK, applicationListResponse{
		Applications: resp,
		Limit:        limit,
		Offset:       offset,
	})
}

// Get handles GET /restaurants/{rid}/applications/{id}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	appID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application ID"})
		return
	}

	app, err := h.store.GetApplication(r.Context(), database.GetApplicationParams{
		ID:           appID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "application not found"})
			return
		}
		log.Printf("ERROR: get application: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// Approve handles POST /restaurants/{rid}/applications/{id}/approve.
// Retrying an approve that already went through returns the current state
// with 200; approving an application someone else rejected returns 409.
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	restaurantID, appID, reviewerID, ok := h.reviewParams(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Approve(r.Context(), service.ReviewRequest{
		RestaurantID:  restaurantID,
		ApplicationID: appID,
		ReviewerID:    reviewerID,
	})
	if err != nil {
		h.writeReviewError(w, r, restaurantID, appID, enum.ApplicationStatusApproved, err)
		return
	}

	writeJSON(w, http.StatusOK, approveResponse{
		Application:  toApplicationResponse(result.Application),
		Account:      toStaffResponse(result.Account),
		TempPassword: result.TempPassword,
	})
}

// Reject handles POST /restaurants/{rid}/applications/{id}/reject.
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	restaurantID, appID, reviewerID, ok := h.reviewParams(w, r)
	if !ok {
		return
	}

	app, err := h.svc.Reject(r.Context(), service.ReviewRequest{
		RestaurantID:  restaurantID,
		ApplicationID: appID,
		ReviewerID:    reviewerID,
	})
	if err != nil {
		h.writeReviewError(w, r, restaurantID, appID, enum.ApplicationStatusRejected, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// reviewParams extracts and validates the path and auth inputs shared by
// Approve and Reject. On failure the error response is already written.
func (h *ApplicationHandler) reviewParams(w http.ResponseWriter, r *http.Request) (restaurantID, appID, reviewerID uuid.UUID, ok bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}

	appID, err = uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid application ID"})
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}

	return restaurantID, appID, claims.UserID, true
}

// writeReviewError maps approval service errors. ErrAlreadyReviewed is a
// replay when the stored terminal status matches the requested one, and a
// genuine conflict otherwise.
func (h *ApplicationHandler) writeReviewError(w http.ResponseWriter, r *http.Request, restaurantID, appID uuid.UUID, wanted string, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "application not found"})
	case errors.Is(err, service.ErrAlreadyReviewed):
		app, ferr := h.store.GetApplication(r.Context(), database.GetApplicationParams{
			ID:           appID,
			RestaurantID: restaurantID,
		})
		if ferr != nil {
			log.Printf("ERROR: get application after review conflict: %v", ferr)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if app.Status == wanted {
			writeJSON(w, http.StatusOK, toApplicationResponse(app))
			return
		}
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "application already reviewed",
			"status": app.Status,
		})
	default:
		log.Printf("ERROR: review application: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// --- Helpers ---

func toApplicationResponse(a database.StaffApplication) applicationResponse {
	resp := applicationResponse{
		ID:           a.ID,
		RestaurantID: a.RestaurantID,
		FullName:     a.FullName,
		Email:        a.Email,
		Phone:        a.Phone,
		Position:     a.Position,
		HourlyRate:   numericToString(a.HourlyRate),
		Status:       a.Status,
		AppliedAt:    a.AppliedAt,
	}

	if a.Message.Valid {
		resp.Message = &a.Message.String
	}
	if a.ReviewedAt.Valid {
		resp.ReviewedAt = &a.ReviewedAt.Time
	}
	if a.ReviewedBy.Valid {
		s := uuid.UUID(a.ReviewedBy.Bytes).String()
		resp.ReviewedBy = &s
	}
	if a.StaffAccountID.Valid {
		s := uuid.UUID(a.StaffAccountID.Bytes).String()
		resp.StaffAccountID = &s
	}

	return resp
}
