package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, restaurant_id, table_id, assigned_staff_id, status, total_amount,
	created_at, assigned_at, preparing_at, ready_at, delivered_at, cancelled_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.TableID, &o.AssignedStaffID, &o.Status, &o.TotalAmount,
		&o.CreatedAt, &o.AssignedAt, &o.PreparingAt, &o.ReadyAt, &o.DeliveredAt, &o.CancelledAt,
	)
	return o, err
}

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2`

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.RestaurantID))
}

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	Status       pgtype.Text
	StartDate    pgtype.Timestamptz
	EndDate      pgtype.Timestamptz
	Limit        int32
	Offset       int32
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE restaurant_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::timestamptz IS NULL OR created_at >= $3)
  AND ($4::timestamptz IS NULL OR created_at < $4)
ORDER BY created_at DESC
LIMIT $5 OFFSET $6`

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.RestaurantID, arg.Status, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItemsByOrder = `
SELECT id, order_id, name, quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY name`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type AdvanceOrderStatusParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Status       string
	PrevStatus   string
	AssignedTo   pgtype.UUID
}

// advanceOrderStatus is the single writer path for order status. The WHERE
// clause on the previously read status makes the write optimistic: zero
// rows means the order moved (or vanished) between read and write. Each
// stage timestamp is guarded with COALESCE so a replay never overwrites it.
const advanceOrderStatus = `
UPDATE orders
SET status = $3,
    assigned_staff_id = CASE WHEN $3 = 'ASSIGNED' THEN COALESCE(assigned_staff_id, $5) ELSE assigned_staff_id END,
    assigned_at  = CASE WHEN $3 = 'ASSIGNED'  THEN COALESCE(assigned_at, now())  ELSE assigned_at  END,
    preparing_at = CASE WHEN $3 = 'PREPARING' THEN COALESCE(preparing_at, now()) ELSE preparing_at END,
    ready_at     = CASE WHEN $3 = 'READY'     THEN COALESCE(ready_at, now())     ELSE ready_at     END,
    delivered_at = CASE WHEN $3 = 'DELIVERED' THEN COALESCE(delivered_at, now()) ELSE delivered_at END,
    cancelled_at = CASE WHEN $3 = 'CANCELLED' THEN COALESCE(cancelled_at, now()) ELSE cancelled_at END
WHERE id = $1 AND restaurant_id = $2 AND status = $4
RETURNING ` + orderColumns

func (q *Queries) AdvanceOrderStatus(ctx context.Context, arg AdvanceOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, advanceOrderStatus,
		arg.ID, arg.RestaurantID, arg.Status, arg.PrevStatus, arg.AssignedTo))
}

type CreateOrderParams struct {
	RestaurantID uuid.UUID
	TableID      pgtype.UUID
	TotalAmount  pgtype.Numeric
}

const createOrder = `
INSERT INTO orders (restaurant_id, table_id, status, total_amount)
VALUES ($1, $2, 'PENDING', $3)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder, arg.RestaurantID, arg.TableID, arg.TotalAmount))
}

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	Name      string
	Quantity  int32
	UnitPrice pgtype.Numeric
}

const createOrderItem = `
INSERT INTO order_items (order_id, name, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, name, quantity, unit_price`

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.Name, arg.Quantity, arg.UnitPrice).
		Scan(&it.ID, &it.OrderID, &it.Name, &it.Quantity, &it.UnitPrice)
	return it, err
}
