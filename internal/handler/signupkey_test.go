package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/handler"
	"github.com/dinetap/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- Mock SignupKeyIssuer ---

type mockSignupKeyIssuer struct {
	currentFn    func(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error)
	regenerateFn func(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error)
}

func (m *mockSignupKeyIssuer) Current(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error) {
	return m.currentFn(ctx, restaurantID)
}

func (m *mockSignupKeyIssuer) Regenerate(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error) {
	return m.regenerateFn(ctx, restaurantID)
}

func setupSignupKeyRouter(svc *mockSignupKeyIssuer) *chi.Mux {
	h := handler.NewSignupKeyHandler(svc)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}/signup-key", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestSignupKeyCurrent(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)

	svc := &mockSignupKeyIssuer{
		currentFn: func(ctx context.Context, rid uuid.UUID) (database.SignupKey, error) {
			if rid != restaurantID {
				t.Errorf("restaurant_id: got %v, want %v", rid, restaurantID)
			}
			return database.SignupKey{RestaurantID: rid, Code: "A1B2-C3D4-E5F6", IssuedAt: time.Now()}, nil
		},
	}

	router := setupSignupKeyRouter(svc)
	rr := doAuthRequest(t, router, "GET",
		"/restaurants/"+restaurantID.String()+"/signup-key", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["code"] != "A1B2-C3D4-E5F6" {
		t.Errorf("code: got %v, want A1B2-C3D4-E5F6", resp["code"])
	}
	if resp["issued_at"] == nil {
		t.Error("issued_at not set in response")
	}
}

func TestSignupKeyRegenerate(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)

	svc := &mockSignupKeyIssuer{
		regenerateFn: func(ctx context.Context, rid uuid.UUID) (database.SignupKey, error) {
			return database.SignupKey{RestaurantID: rid, Code: "NEWW-CODE-1234", IssuedAt: time.Now()}, nil
		},
	}

	router := setupSignupKeyRouter(svc)
	rr := doAuthRequest(t, router, "POST",
		"/restaurants/"+restaurantID.String()+"/signup-key/regenerate", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["code"] != "NEWW-CODE-1234" {
		t.Errorf("code: got %v, want NEWW-CODE-1234", resp["code"])
	}
}
