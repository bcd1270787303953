package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const staffColumns = `id, application_id, restaurant_id, user_id, position, hourly_rate,
	is_available, orders_completed, tips_total, rating, created_at`

func scanStaff(row interface{ Scan(...interface{}) error }) (StaffAccount, error) {
	var s StaffAccount
	err := row.Scan(
		&s.ID, &s.ApplicationID, &s.RestaurantID, &s.UserID, &s.Position, &s.HourlyRate,
		&s.IsAvailable, &s.OrdersCompleted, &s.TipsTotal, &s.Rating, &s.CreatedAt,
	)
	return s, err
}

const getStaffAccountByApplication = `
SELECT ` + staffColumns + `
FROM staff_accounts
WHERE application_id = $1`

func (q *Queries) GetStaffAccountByApplication(ctx context.Context, applicationID uuid.UUID) (StaffAccount, error) {
	return scanStaff(q.db.QueryRow(ctx, getStaffAccountByApplication, applicationID))
}

type CreateStaffAccountParams struct {
	ApplicationID pgtype.UUID
	RestaurantID  uuid.UUID
	UserID        uuid.UUID
	Position      string
	HourlyRate    pgtype.Numeric
}

// createStaffAccount relies on the unique index on application_id: a
// concurrent duplicate insert fails with SQLSTATE 23505 instead of
// producing a second account for the same application.
const createStaffAccount = `
INSERT INTO staff_accounts (application_id, restaurant_id, user_id, position, hourly_rate, is_available)
VALUES ($1, $2, $3, $4, $5, true)
RETURNING ` + staffColumns

func (q *Queries) CreateStaffAccount(ctx context.Context, arg CreateStaffAccountParams) (StaffAccount, error) {
	return scanStaff(q.db.QueryRow(ctx, createStaffAccount,
		arg.ApplicationID, arg.RestaurantID, arg.UserID, arg.Position, arg.HourlyRate))
}

const listStaffByRestaurant = `
SELECT ` + staffColumns + `
FROM staff_accounts
WHERE restaurant_id = $1
ORDER BY created_at`

func (q *Queries) ListStaffByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]StaffAccount, error) {
	rows, err := q.db.Query(ctx, listStaffByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []StaffAccount
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

type SetStaffAvailabilityParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	IsAvailable  bool
}

const setStaffAvailability = `
UPDATE staff_accounts
SET is_available = $3
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + staffColumns

func (q *Queries) SetStaffAvailability(ctx context.Context, arg SetStaffAvailabilityParams) (StaffAccount, error) {
	return scanStaff(q.db.QueryRow(ctx, setStaffAvailability, arg.ID, arg.RestaurantID, arg.IsAvailable))
}
