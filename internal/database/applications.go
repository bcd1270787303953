package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const applicationColumns = `id, restaurant_id, full_name, email, phone, position, hourly_rate,
	message, status, applied_at, reviewed_at, reviewed_by, staff_account_id`

func scanApplication(row interface{ Scan(...interface{}) error }) (StaffApplication, error) {
	var a StaffApplication
	err := row.Scan(
		&a.ID, &a.RestaurantID, &a.FullName, &a.Email, &a.Phone, &a.Position, &a.HourlyRate,
		&a.Message, &a.Status, &a.AppliedAt, &a.ReviewedAt, &a.ReviewedBy, &a.StaffAccountID,
	)
	return a, err
}

type GetApplicationParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

const getApplication = `
SELECT ` + applicationColumns + `
FROM staff_applications
WHERE id = $1 AND restaurant_id = $2`

func (q *Queries) GetApplication(ctx context.Context, arg GetApplicationParams) (StaffApplication, error) {
	return scanApplication(q.db.QueryRow(ctx, getApplication, arg.ID, arg.RestaurantID))
}

type ListApplicationsParams struct {
	RestaurantID uuid.UUID
	Status       pgtype.Text
	Limit        int32
	Offset       int32
}

const listApplications = `
SELECT ` + applicationColumns + `
FROM staff_applications
WHERE restaurant_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY applied_at DESC
LIMIT $3 OFFSET $4`

func (q *Queries) ListApplications(ctx context.Context, arg ListApplicationsParams) ([]StaffApplication, error) {
	rows, err := q.db.Query(ctx, listApplications, arg.RestaurantID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []StaffApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

type CreateApplicationParams struct {
	RestaurantID uuid.UUID
	FullName     string
	Email        string
	Phone        string
	Position     string
	HourlyRate   pgtype.Numeric
	Message      pgtype.Text
}

const createApplication = `
INSERT INTO staff_applications (restaurant_id, full_name, email, phone, position, hourly_rate, message, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
RETURNING ` + applicationColumns

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (StaffApplication, error) {
	return scanApplication(q.db.QueryRow(ctx, createApplication,
		arg.RestaurantID, arg.FullName, arg.Email, arg.Phone, arg.Position, arg.HourlyRate, arg.Message))
}

type ReviewApplicationParams struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Status         string
	ReviewedBy     uuid.UUID
	StaffAccountID pgtype.UUID
}

// reviewApplication flips a PENDING application to its terminal status.
// The WHERE clause on status = 'PENDING' is what makes concurrent reviews
// converge: the loser of the race updates zero rows.
const reviewApplication = `
UPDATE staff_applications
SET status = $3, reviewed_at = now(), reviewed_by = $4, staff_account_id = $5
WHERE id = $1 AND restaurant_id = $2 AND status = 'PENDING'
RETURNING ` + applicationColumns

func (q *Queries) ReviewApplication(ctx context.Context, arg ReviewApplicationParams) (StaffApplication, error) {
	return scanApplication(q.db.QueryRow(ctx, reviewApplication,
		arg.ID, arg.RestaurantID, arg.Status, arg.ReviewedBy, arg.StaffAccountID))
}
