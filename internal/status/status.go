// Package status defines the order status state machine.
//
// Valid status graph:
//
//	PENDING ──► ASSIGNED ──► PREPARING ──► READY ──► DELIVERED
//	    │
//	    └──► CANCELLED
//
// DELIVERED and CANCELLED are terminal states. Cancellation is only
// reachable from PENDING: once a staff member has been assigned the
// kitchen may already be committed, so the order runs to completion.
package status

import (
	"fmt"

	"github.com/dinetap/api/internal/enum"
)

// Status values mirror the order_status enum in PostgreSQL.
type Status string

const (
	Pending   Status = enum.OrderStatusPending
	Assigned  Status = enum.OrderStatusAssigned
	Preparing Status = enum.OrderStatusPreparing
	Ready     Status = enum.OrderStatusReady
	Delivered Status = enum.OrderStatusDelivered
	Cancelled Status = enum.OrderStatusCancelled
)

// next maps each non-terminal status to its single legal successor.
// Cancellation is handled separately via CanCancel, not listed here.
var next = map[Status]Status{
	Pending:   Assigned,
	Assigned:  Preparing,
	Preparing: Ready,
	Ready:     Delivered,
	// DELIVERED and CANCELLED are terminal — no successor
}

// Parse converts a raw string to a Status, returning an error for
// unknown values.
func Parse(s string) (Status, error) {
	st := Status(s)
	switch st {
	case Pending, Assigned, Preparing, Ready, Delivered, Cancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Next returns the single legal successor of s. The second return value
// is false when s is terminal.
func Next(s Status) (Status, bool) {
	n, ok := next[s]
	return n, ok
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	_, ok := next[s]
	return !ok
}

// CanCancel reports whether an order in status s may be cancelled.
func CanCancel(s Status) bool {
	return s == Pending
}

// Allowed reports whether moving from → to is permitted by the state
// machine, including the PENDING → CANCELLED edge.
func Allowed(from, to Status) bool {
	if to == Cancelled {
		return CanCancel(from)
	}
	n, ok := next[from]
	return ok && n == to
}
