package database

import (
	"context"

	"github.com/google/uuid"
)

const restaurantColumns = `id, name, slug, created_at`

type CreateRestaurantParams struct {
	Name string
	Slug string
}

const createRestaurant = `
INSERT INTO restaurants (name, slug)
VALUES ($1, $2)
RETURNING ` + restaurantColumns

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	var r Restaurant
	err := q.db.QueryRow(ctx, createRestaurant, arg.Name, arg.Slug).
		Scan(&r.ID, &r.Name, &r.Slug, &r.CreatedAt)
	return r, err
}

const getRestaurant = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE id = $1`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	var r Restaurant
	err := q.db.QueryRow(ctx, getRestaurant, id).
		Scan(&r.ID, &r.Name, &r.Slug, &r.CreatedAt)
	return r, err
}
