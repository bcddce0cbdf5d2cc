package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, code, company_id, customer_id, order_type, status, subtotal, tax, delivery_fee, total,
		       tax_rate::text, payment_method, payment_status, created_at, updated_at, completed_at`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func scanOrder(row Row) (*domain.Order, error) {
	var (
		order   domain.Order
		taxRate string
	)
	err := row.Scan(
		&order.ID, &order.Code, &order.CompanyID, &order.CustomerID, &order.Type, &order.Status,
		&order.Subtotal, &order.Tax, &order.DeliveryFee, &order.Total, &taxRate,
		&order.PaymentMethod, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt, &order.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	order.TaxRate, err = decimal.NewFromString(taxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	return &order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err, nil)
	}
	defer tx.Rollback(ctx)

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_code_seq')`).Scan(&seq); err != nil {
		return mapError("next order code", err, nil)
	}
	order.Code = domain.OrderCode(seq, order.CreatedAt)

	// Insert order
	query := `
		INSERT INTO orders (code, company_id, customer_id, order_type, status, subtotal, tax, delivery_fee, total,
		                    tax_rate, payment_method, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11, $12, $13, $14)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.Code, order.CompanyID, order.CustomerID, order.Type, order.Status,
		order.Subtotal, order.Tax, order.DeliveryFee, order.Total, order.TaxRate.String(),
		order.PaymentMethod, order.PaymentStatus, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return mapError("insert order", err, nil)
	}

	if err := insertItems(ctx, tx, order); err != nil {
		return err
	}
	if err := insertEvents(ctx, tx, order.ID, order.PendingEvents()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError("commit order", err, nil)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("find order", err, domain.ErrOrderNotFound)
	}

	order.Items, err = loadItems(ctx, r.db, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, id int64, apply func(*domain.Order) error) (*domain.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, mapError("begin transaction", err, nil)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("lock order", err, domain.ErrOrderNotFound)
	}
	order.Items, err = loadItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	if err := apply(order); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, subtotal = $2, tax = $3, delivery_fee = $4, total = $5,
		    payment_method = $6, payment_status = $7, updated_at = $8, completed_at = $9
		WHERE id = $10
	`, order.Status, order.Subtotal, order.Tax, order.DeliveryFee, order.Total,
		order.PaymentMethod, order.PaymentStatus, order.UpdatedAt, order.CompletedAt, order.ID)
	if err != nil {
		return nil, mapError("update order", err, nil)
	}

	kept := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ID != 0 {
			kept = append(kept, item.ID)
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1 AND NOT (id = ANY($2))`, order.ID, kept); err != nil {
		return nil, mapError("delete order items", err, nil)
	}
	if err := insertItems(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := insertEvents(ctx, tx, order.ID, order.PendingEvents()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit order", err, nil)
	}
	return order, nil
}

// insertItems stores the items that have no id yet in one batch.
func insertItems(ctx context.Context, tx Tx, order *domain.Order) error {
	var pending []int
	batch := &pgx.Batch{}
	now := time.Now().UTC()

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if order.Items[i].ID != 0 {
			continue
		}
		item := order.Items[i]
		batch.Queue(`
			INSERT INTO order_items (order_id, menu_item_id, name, price, quantity, subtotal, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, order.ID, item.MenuItemID, item.Name, item.Price, item.Quantity, item.Subtotal, now)
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	for _, i := range pending {
		if err := results.QueryRow().Scan(&order.Items[i].ID); err != nil {
			results.Close()
			return mapError("insert order item", err, nil)
		}
	}
	if err := results.Close(); err != nil {
		return mapError("insert order items", err, nil)
	}
	return nil
}

func loadItems(ctx context.Context, q querier, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, menu_item_id, name, price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, mapError("load order items", err, nil)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name,
			&item.Price, &item.Quantity, &item.Subtotal); err != nil {
			return nil, mapError("scan order item", err, nil)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("load order items", err, nil)
	}
	return items, nil
}
