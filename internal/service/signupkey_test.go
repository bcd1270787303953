package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestGenerateCode_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if !codePattern.MatchString(code) {
			t.Fatalf("code %q does not match XXXX-XXXX-XXXX over [A-Z0-9]", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code after %d draws: %s", i, code)
		}
		seen[code] = true
	}
}

// mockSignupKeyStore implements SignupKeyStore over a single row.
type mockSignupKeyStore struct {
	key         *database.SignupKey
	upsertCalls int
}

func (m *mockSignupKeyStore) GetSignupKey(_ context.Context, restaurantID uuid.UUID) (database.SignupKey, error) {
	if m.key == nil || m.key.RestaurantID != restaurantID {
		return database.SignupKey{}, pgx.ErrNoRows
	}
	return *m.key, nil
}

func (m *mockSignupKeyStore) UpsertSignupKey(_ context.Context, arg database.UpsertSignupKeyParams) (database.SignupKey, error) {
	m.upsertCalls++
	m.key = &database.SignupKey{
		RestaurantID: arg.RestaurantID,
		Code:         arg.Code,
		IssuedAt:     time.Now(),
	}
	return *m.key, nil
}

func TestCurrent_IssuesOnFirstRequest(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockSignupKeyStore{}
	svc := NewSignupKeyService(store)

	key, err := svc.Current(context.Background(), restaurantID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !codePattern.MatchString(key.Code) {
		t.Errorf("issued code %q does not match pattern", key.Code)
	}
	if store.upsertCalls != 1 {
		t.Errorf("upsert calls: got %d, want 1", store.upsertCalls)
	}
}

func TestCurrent_ReturnsExistingKeyWithoutRotation(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockSignupKeyStore{
		key: &database.SignupKey{RestaurantID: restaurantID, Code: "AAAA-BBBB-CCCC", IssuedAt: time.Now()},
	}
	svc := NewSignupKeyService(store)

	key, err := svc.Current(context.Background(), restaurantID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if key.Code != "AAAA-BBBB-CCCC" {
		t.Errorf("code: got %s, want the stored key", key.Code)
	}
	if store.upsertCalls != 0 {
		t.Errorf("current rotated the key: %d upserts, want 0", store.upsertCalls)
	}
}

func TestRegenerate_ReplacesKey(t *testing.T) {
	restaurantID := uuid.New()
	store := &mockSignupKeyStore{
		key: &database.SignupKey{RestaurantID: restaurantID, Code: "AAAA-BBBB-CCCC", IssuedAt: time.Now()},
	}
	svc := NewSignupKeyService(store)

	key, err := svc.Regenerate(context.Background(), restaurantID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if key.Code == "AAAA-BBBB-CCCC" {
		t.Error("regenerate returned the old code")
	}
	if store.key.Code != key.Code {
		t.Error("stored key not replaced")
	}
	if store.upsertCalls != 1 {
		t.Errorf("upsert calls: got %d, want 1", store.upsertCalls)
	}
}
