package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Restaurant is a tenant of the platform.
type Restaurant struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	CreatedAt time.Time
}

// User is a login-capable principal scoped to a restaurant.
type User struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

// RestaurantTable is a physical dine-in table identified by a QR code.
type RestaurantTable struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TableNumber  string
	Seats        int32
	IsActive     bool
}

// Order is a dine-in order. Rows are never deleted; cancellation is a
// terminal status. Stage timestamps are set once, when the order first
// enters the stage.
type Order struct {
	ID              uuid.UUID
	RestaurantID    uuid.UUID
	TableID         pgtype.UUID
	AssignedStaffID pgtype.UUID
	Status          string
	TotalAmount     pgtype.Numeric
	CreatedAt       time.Time
	AssignedAt      pgtype.Timestamptz
	PreparingAt     pgtype.Timestamptz
	ReadyAt         pgtype.Timestamptz
	DeliveredAt     pgtype.Timestamptz
	CancelledAt     pgtype.Timestamptz
}

// OrderItem is a line item on an order.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Name      string
	Quantity  int32
	UnitPrice pgtype.Numeric
}

// StaffApplication is a request to join a restaurant's staff, gated by
// a signup key. Status is monotonic: PENDING → APPROVED | REJECTED.
type StaffApplication struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	FullName       string
	Email          string
	Phone          string
	Position       string
	HourlyRate     pgtype.Numeric
	Message        pgtype.Text
	Status         string
	AppliedAt      time.Time
	ReviewedAt     pgtype.Timestamptz
	ReviewedBy     pgtype.UUID
	StaffAccountID pgtype.UUID
}

// StaffAccount is a provisioned staff member. At most one per approved
// application (unique index on application_id).
type StaffAccount struct {
	ID              uuid.UUID
	ApplicationID   pgtype.UUID
	RestaurantID    uuid.UUID
	UserID          uuid.UUID
	Position        string
	HourlyRate      pgtype.Numeric
	IsAvailable     bool
	OrdersCompleted int32
	TipsTotal       pgtype.Numeric
	Rating          pgtype.Numeric
	CreatedAt       time.Time
}

// SignupKey is the single active join code for a restaurant. Regeneration
// replaces the row, it never appends.
type SignupKey struct {
	RestaurantID uuid.UUID
	Code         string
	IssuedAt     time.Time
}
