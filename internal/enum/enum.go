package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "PENDING"
	OrderStatusAssigned  = "ASSIGNED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	ApplicationStatusPending  = "PENDING"
	ApplicationStatusApproved = "APPROVED"
	ApplicationStatusRejected = "REJECTED"
)

// ── Roles (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleStaff   = "STAFF"
)

// ── Configurable labels (no DB constraint) ──

const (
	PositionWaiter    = "WAITER"
	PositionCook      = "COOK"
	PositionBartender = "BARTENDER"
	PositionHost      = "HOST"
)
