package database

import (
	"context"

	"github.com/google/uuid"
)

const signupKeyColumns = `restaurant_id, code, issued_at`

func scanSignupKey(row interface{ Scan(...interface{}) error }) (SignupKey, error) {
	var k SignupKey
	err := row.Scan(&k.RestaurantID, &k.Code, &k.IssuedAt)
	return k, err
}

const getSignupKey = `
SELECT ` + signupKeyColumns + `
FROM signup_keys
WHERE restaurant_id = $1`

func (q *Queries) GetSignupKey(ctx context.Context, restaurantID uuid.UUID) (SignupKey, error) {
	return scanSignupKey(q.db.QueryRow(ctx, getSignupKey, restaurantID))
}

const getSignupKeyByCode = `
SELECT ` + signupKeyColumns + `
FROM signup_keys
WHERE code = $1`

func (q *Queries) GetSignupKeyByCode(ctx context.Context, code string) (SignupKey, error) {
	return scanSignupKey(q.db.QueryRow(ctx, getSignupKeyByCode, code))
}

type UpsertSignupKeyParams struct {
	RestaurantID uuid.UUID
	Code         string
}

// upsertSignupKey replaces the restaurant's key in place. restaurant_id is
// the primary key, so a restaurant can never hold two active codes.
const upsertSignupKey = `
INSERT INTO signup_keys (restaurant_id, code, issued_at)
VALUES ($1, $2, now())
ON CONFLICT (restaurant_id) DO UPDATE SET code = EXCLUDED.code, issued_at = now()
RETURNING ` + signupKeyColumns

func (q *Queries) UpsertSignupKey(ctx context.Context, arg UpsertSignupKeyParams) (SignupKey, error) {
	return scanSignupKey(q.db.QueryRow(ctx, upsertSignupKey, arg.RestaurantID, arg.Code))
}
