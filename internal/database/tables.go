package database

import (
	"context"

	"github.com/google/uuid"
)

const tableColumns = `id, restaurant_id, table_number, seats, is_active`

func scanTable(row interface{ Scan(...interface{}) error }) (RestaurantTable, error) {
	var t RestaurantTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Seats, &t.IsActive)
	return t, err
}

type GetTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

const getTable = `
SELECT ` + tableColumns + `
FROM restaurant_tables
WHERE id = $1 AND restaurant_id = $2 AND is_active = true`

func (q *Queries) GetTable(ctx context.Context, arg GetTableParams) (RestaurantTable, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, arg.ID, arg.RestaurantID))
}

const listTablesByRestaurant = `
SELECT ` + tableColumns + `
FROM restaurant_tables
WHERE restaurant_id = $1 AND is_active = true
ORDER BY table_number`

func (q *Queries) ListTablesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTablesByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []RestaurantTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

type CreateTableParams struct {
	RestaurantID uuid.UUID
	TableNumber  string
	Seats        int32
}

const createTable = `
INSERT INTO restaurant_tables (restaurant_id, table_number, seats, is_active)
VALUES ($1, $2, $3, true)
RETURNING ` + tableColumns

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	return scanTable(q.db.QueryRow(ctx, createTable, arg.RestaurantID, arg.TableNumber, arg.Seats))
}
