package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/qr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries.
type TableStore interface {
	GetTable(ctx context.Context, arg database.GetTableParams) (database.RestaurantTable, error)
	ListTablesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.RestaurantTable, error)
}

// TableHandler handles dine-in table endpoints.
type TableHandler struct {
	store TableStore
	// publicBaseURL is the origin embedded in QR payloads, e.g.
	// "https://dinetap.app".
	publicBaseURL string
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, publicBaseURL string) *TableHandler {
	return &TableHandler{store: store, publicBaseURL: publicBaseURL}
}

// RegisterRoutes registers table endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}/qr", h.QRPayload)
}

type tableResponse struct {
	ID          uuid.UUID `json:"id"`
	TableNumber string    `json:"table_number"`
	Seats       int32     `json:"seats"`
}

type qrPayloadResponse struct {
	TableID     uuid.UUID `json:"table_id"`
	TableNumber string    `json:"table_number"`
	Payload     string    `json:"payload"`
}

// List handles GET /restaurants/{rid}/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	tables, err := h.store.ListTablesByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = tableResponse{ID: t.ID, TableNumber: t.TableNumber, Seats: t.Seats}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": resp})
}

// QRPayload handles GET /restaurants/{rid}/tables/{id}/qr. It returns the
// URL to embed in the table's printed QR code.
func (h *TableHandler) QRPayload(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	tableID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	table, err := h.store.GetTable(r.Context(), database.GetTableParams{
		ID:           tableID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	payload, err := qr.Encode(h.publicBaseURL, qr.Payload{
		RestaurantID: restaurantID.String(),
		TableID:      table.ID.String(),
		TableNumber:  table.TableNumber,
	})
	if err != nil {
		log.Printf("ERROR: encode table payload: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, qrPayloadResponse{
		TableID:     table.ID,
		TableNumber: table.TableNumber,
		Payload:     payload,
	})
}
