package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, restaurant_id, email, hashed_password, full_name, role, is_active, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.RestaurantID, &u.Email, &u.HashedPassword, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt,
	)
	return u, err
}

const getUserByEmail = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1 AND is_active = true`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1 AND is_active = true`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

type CreateUserParams struct {
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

const createUser = `
INSERT INTO users (restaurant_id, email, hashed_password, full_name, role, is_active)
VALUES ($1, $2, $3, $4, $5, true)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, createUser,
		arg.RestaurantID, arg.Email, arg.HashedPassword, arg.FullName, arg.Role))
}
