package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/dinetap/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength    = 12
	codeGroupSize = 4
)

// SignupKeyStore defines the DB methods needed to manage signup keys.
// Satisfied by *database.Queries; narrow interface for testability.
type SignupKeyStore interface {
	GetSignupKey(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error)
	UpsertSignupKey(ctx context.Context, arg database.UpsertSignupKeyParams) (database.SignupKey, error)
}

// SignupKeyService issues and rotates the per-restaurant join code that
// gates staff applications.
type SignupKeyService struct {
	store SignupKeyStore
}

// NewSignupKeyService creates a new SignupKeyService.
func NewSignupKeyService(store SignupKeyStore) *SignupKeyService {
	return &SignupKeyService{store: store}
}

// GenerateCode produces a code like "AB12-CD34-EF56": 12 characters from
// [A-Z0-9] grouped in fours. The randomness source is crypto/rand; join
// codes are bearer secrets and must not be guessable.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	var b strings.Builder
	for i, c := range buf {
		if i > 0 && i%codeGroupSize == 0 {
			b.WriteByte('-')
		}
		// 36 does not divide 256, but the bias of a modulo draw is under
		// 1.2% per character and irrelevant at 62 bits of total entropy.
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// Current returns the restaurant's active signup key, issuing one on first
// request.
func (s *SignupKeyService) Current(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error) {
	key, err := s.store.GetSignupKey(ctx, restaurantID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.SignupKey{}, fmt.Errorf("get signup key: %w", err)
	}
	return s.Regenerate(ctx, restaurantID)
}

// Regenerate replaces the restaurant's signup key. The previous code stops
// gating new applications immediately; applications already submitted
// under it are unaffected.
func (s *SignupKeyService) Regenerate(ctx context.Context, restaurantID uuid.UUID) (database.SignupKey, error) {
	code, err := GenerateCode()
	if err != nil {
		return database.SignupKey{}, err
	}
	key, err := s.store.UpsertSignupKey(ctx, database.UpsertSignupKeyParams{
		RestaurantID: restaurantID,
		Code:         code,
	})
	if err != nil {
		return database.SignupKey{}, fmt.Errorf("upsert signup key: %w", err)
	}
	return key, nil
}
