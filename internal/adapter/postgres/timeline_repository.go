package postgres

import (
	"context"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

type timelineRepository struct {
	db DB
}

func NewTimelineRepository(db DB) interfaces.TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Append(ctx context.Context, event *domain.OrderTimelineEvent) error {
	query := `
		INSERT INTO order_status_log (order_id, status, changed_by, notes, changed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, event.OrderID, event.Status, event.Actor, event.Notes, event.CreatedAt).Scan(&event.ID)
	if err != nil {
		return mapError("append timeline event", err, domain.ErrOrderNotFound)
	}
	return nil
}

func (r *timelineRepository) ListForOrder(ctx context.Context, orderID int64) ([]*domain.OrderTimelineEvent, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return nil, mapError("find order", err, nil)
	}
	if !exists {
		return nil, domain.ErrOrderNotFound
	}

	query := `
		SELECT id, order_id, status, changed_by, notes, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, mapError("query status history", err, nil)
	}
	defer rows.Close()

	var events []*domain.OrderTimelineEvent
	for rows.Next() {
		var e domain.OrderTimelineEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Actor, &e.Notes, &e.CreatedAt); err != nil {
			return nil, mapError("scan status log", err, nil)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query status history", err, nil)
	}
	return events, nil
}

// insertEvents writes the timeline events produced by an order mutation inside
// the mutation's transaction.
func insertEvents(ctx context.Context, tx Tx, orderID int64, events []*domain.OrderTimelineEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		e.OrderID = orderID
		batch.Queue(`
			INSERT INTO order_status_log (order_id, status, changed_by, notes, changed_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, orderID, e.Status, e.Actor, e.Notes, e.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for _, e := range events {
		if err := results.QueryRow().Scan(&e.ID); err != nil {
			results.Close()
			return mapError("log status", err, nil)
		}
	}
	if err := results.Close(); err != nil {
		return mapError("log status", err, nil)
	}
	return nil
}
