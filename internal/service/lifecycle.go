package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/status"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Errors returned by the lifecycle service.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConflict          = errors.New("order changed concurrently, refetch and retry")
)

// LifecycleStore defines the DB methods needed to advance orders.
// Satisfied by *database.Queries; narrow interface for testability.
type LifecycleStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	AdvanceOrderStatus(ctx context.Context, arg database.AdvanceOrderStatusParams) (database.Order, error)
}

// LifecycleService applies status transitions to persisted orders. It is
// the single writer path for order status: legality is checked against the
// status graph, the write is conditional on the previously read status, and
// replays of an already-applied transition are a no-op.
type LifecycleService struct {
	store LifecycleStore
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(store LifecycleStore) *LifecycleService {
	return &LifecycleService{store: store}
}

// AdvanceRequest is the validated input for advancing an order.
type AdvanceRequest struct {
	RestaurantID uuid.UUID
	OrderID      uuid.UUID
	Target       status.Status
	// ActorID is recorded as the assignee when the order enters ASSIGNED.
	ActorID uuid.UUID
}

// Advance moves an order to req.Target and returns the updated record.
//
// Outcomes:
//   - ErrOrderNotFound: the order does not exist in this restaurant.
//   - ErrIllegalTransition: req.Target is neither the unique successor of
//     the current status nor CANCELLED-from-PENDING. No write happens.
//   - ErrConflict: a concurrent caller moved the order somewhere other
//     than req.Target between our read and write.
//   - nil error with the unchanged record: the order is already at
//     req.Target (idempotent replay; stage timestamps are not re-set).
func (s *LifecycleService) Advance(ctx context.Context, req AdvanceRequest) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, database.GetOrderParams{
		ID:           req.OrderID,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	current, err := status.Parse(order.Status)
	if err != nil {
		return database.Order{}, fmt.Errorf("stored order status: %w", err)
	}

	// Replay of an already-applied transition is a no-op.
	if current == req.Target {
		return order, nil
	}

	if !status.Allowed(current, req.Target) {
		return database.Order{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, req.Target)
	}

	assignedTo := pgtype.UUID{}
	if req.Target == status.Assigned && req.ActorID != uuid.Nil {
		assignedTo = pgtype.UUID{Bytes: req.ActorID, Valid: true}
	}

	updated, err := s.store.AdvanceOrderStatus(ctx, database.AdvanceOrderStatusParams{
		ID:           req.OrderID,
		RestaurantID: req.RestaurantID,
		Status:       string(req.Target),
		PrevStatus:   string(current),
		AssignedTo:   assignedTo,
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, fmt.Errorf("advance order status: %w", err)
	}

	// Zero rows updated: the status changed between read and write, or the
	// order vanished. Refetch to classify.
	latest, err := s.store.GetOrder(ctx, database.GetOrderParams{
		ID:           req.OrderID,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order after conflict: %w", err)
	}
	if latest.Status == string(req.Target) {
		// A concurrent caller applied the same transition first.
		return latest, nil
	}
	return database.Order{}, ErrConflict
}

// Cancel moves a PENDING order to CANCELLED. Cancellation from any other
// status fails with ErrIllegalTransition.
func (s *LifecycleService) Cancel(ctx context.Context, restaurantID, orderID, actorID uuid.UUID) (database.Order, error) {
	return s.Advance(ctx, AdvanceRequest{
		RestaurantID: restaurantID,
		OrderID:      orderID,
		Target:       status.Cancelled,
		ActorID:      actorID,
	})
}
