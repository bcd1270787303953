package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/middleware"
	"github.com/dinetap/api/internal/service"
	"github.com/dinetap/api/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderLifecycler defines the service methods needed by order handlers.
// Satisfied by *service.LifecycleService; narrow interface for testability.
type OrderLifecycler interface {
	Advance(ctx context.Context, req service.AdvanceRequest) (database.Order, error)
	Cancel(ctx context.Context, restaurantID, orderID, actorID uuid.UUID) (database.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// OrderBroadcaster pushes order events to connected dashboards.
// Satisfied by *ws.Hub.
type OrderBroadcaster interface {
	BroadcastOrderStatus(restaurantID uuid.UUID, payload interface{})
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderLifecycler
	store OrderStore
	hub   OrderBroadcaster
}

// NewOrderHandler creates a new OrderHandler. hub may be nil in tests.
func NewOrderHandler(svc OrderLifecycler, store OrderStore, hub OrderBroadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	RestaurantID    uuid.UUID           `json:"restaurant_id"`
	TableID         *string             `json:"table_id"`
	AssignedStaffID *string             `json:"assigned_staff_id"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	CreatedAt       time.Time           `json:"created_at"`
	AssignedAt      *time.Time          `json:"assigned_at"`
	PreparingAt     *time.Time          `json:"preparing_at"`
	ReadyAt         *time.Time          `json:"ready_at"`
	DeliveredAt     *time.Time          `json:"delivered_at"`
	CancelledAt     *time.Time          `json:"cancelled_at"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
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

	params := database.ListOrdersParams{
		RestaurantID: restaurantID,
		Limit:        int32(limit),
		Offset:       int32(offset),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		if _, err := status.Parse(s); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date format, use YYYY-MM-DD"})
			return
		}
		params.StartDate = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date format, use YYYY-MM-DD"})
			return
		}
		params.EndDate = pgtype.Timestamptz{Time: t, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{
		ID:           orderID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateStatus handles PATCH /restaurants/{rid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	target, err := status.Parse(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	updated, err := h.svc.Advance(r.Context(), service.AdvanceRequest{
		RestaurantID: restaurantID,
		OrderID:      orderID,
		Target:       target,
		ActorID:      claims.UserID,
	})
	if err != nil {
		h.writeAdvanceError(w, err)
		return
	}

	resp := toOrderResponse(updated, nil)
	if h.hub != nil {
		h.hub.BroadcastOrderStatus(restaurantID, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles DELETE /restaurants/{rid}/orders/{id}. Cancellation is
// only legal while the order is still PENDING.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	cancelled, err := h.svc.Cancel(r.Context(), restaurantID, orderID, claims.UserID)
	if err != nil {
		h.writeAdvanceError(w, err)
		return
	}

	resp := toOrderResponse(cancelled, nil)
	if h.hub != nil {
		h.hub.BroadcastOrderStatus(restaurantID, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeAdvanceError maps lifecycle service errors to HTTP status codes.
func (h *OrderHandler) writeAdvanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, service.ErrIllegalTransition):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed, please refresh and retry"})
	default:
		log.Printf("ERROR: advance order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// --- Helpers ---

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		TotalAmount:  numericToString(o.TotalAmount),
		CreatedAt:    o.CreatedAt,
	}

	if o.TableID.Valid {
		s := uuid.UUID(o.TableID.Bytes).String()
		resp.TableID = &s
	}
	if o.AssignedStaffID.Valid {
		s := uuid.UUID(o.AssignedStaffID.Bytes).String()
		resp.AssignedStaffID = &s
	}
	if o.AssignedAt.Valid {
		resp.AssignedAt = &o.AssignedAt.Time
	}
	if o.PreparingAt.Valid {
		resp.PreparingAt = &o.PreparingAt.Time
	}
	if o.ReadyAt.Valid {
		resp.ReadyAt = &o.ReadyAt.Time
	}
	if o.DeliveredAt.Valid {
		resp.DeliveredAt = &o.DeliveredAt.Time
	}
	if o.CancelledAt.Valid {
		resp.CancelledAt = &o.CancelledAt.Time
	}

	if items != nil {
		resp.Items = make([]orderItemResponse, len(items))
		for i, it := range items {
			resp.Items[i] = orderItemResponse{
				ID:        it.ID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: numericToString(it.UnitPrice),
			}
		}
	}

	return resp
}
