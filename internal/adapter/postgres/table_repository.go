package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

const tableColumns = `id, company_id, table_number, capacity, location, shape, status, active, created_at, updated_at`

type tableRepository struct {
	db DB
}

func NewTableRepository(db DB) interfaces.TableRepository {
	return &tableRepository{db: db}
}

func scanTable(row Row) (*domain.Table, error) {
	var t domain.Table
	err := row.Scan(&t.ID, &t.CompanyID, &t.Number, &t.Capacity, &t.Location,
		&t.Shape, &t.Status, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepository) Create(ctx context.Context, table *domain.Table) error {
	query := `
		INSERT INTO restaurant_tables (company_id, table_number, capacity, location, shape, status, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		table.CompanyID, table.Number, table.Capacity, table.Location, table.Shape,
		table.Status, table.Active, table.CreatedAt, table.UpdatedAt,
	).Scan(&table.ID)
	if err != nil {
		return mapError("insert table", err, nil)
	}
	return nil
}

func (r *tableRepository) FindByID(ctx context.Context, id int64) (*domain.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE id = $1`

	t, err := scanTable(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("find table", err, domain.ErrTableNotFound)
	}
	return t, nil
}

func (r *tableRepository) ListByCompany(ctx context.Context, companyID int64) ([]*domain.Table, error) {
	query := `
		SELECT ` + tableColumns + `
		FROM restaurant_tables
		WHERE company_id = $1
		ORDER BY capacity, table_number, id
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapError("list tables", err, nil)
	}
	defer rows.Close()

	var tables []*domain.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, mapError("scan table", err, nil)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list tables", err, nil)
	}
	return tables, nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id int64, status domain.TableStatus) (*domain.Table, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidTableStatus
	}

	query := `
		UPDATE restaurant_tables
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + tableColumns

	t, err := scanTable(r.db.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		return nil, mapError("update table status", err, domain.ErrTableNotFound)
	}
	return t, nil
}

func (r *tableRepository) Deactivate(ctx context.Context, id int64, from time.Time, apply func(*domain.Table, []*domain.Reservation) error) (*domain.Table, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, mapError("begin transaction", err, nil)
	}
	defer tx.Rollback(ctx)

	t, err := lockTable(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE table_id = $1 AND reservation_date >= $2 AND status IN ('confirmed', 'seated')
		ORDER BY reservation_date, start_minute, id
	`
	holding, err := queryReservations(ctx, tx, query, id, domain.DateOf(from))
	if err != nil {
		return nil, err
	}

	if err := apply(t, holding); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE restaurant_tables SET active = $1, status = $2, updated_at = $3 WHERE id = $4`,
		t.Active, t.Status, t.UpdatedAt, t.ID)
	if err != nil {
		return nil, mapError("deactivate table", err, nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit deactivate table", err, nil)
	}
	return t, nil
}

// lockTable reads the table row with FOR UPDATE. Every writer that depends on
// the set of reservations of a table takes this lock first.
func lockTable(ctx context.Context, tx Tx, id int64) (*domain.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE id = $1 FOR UPDATE`

	t, err := scanTable(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("lock table %d", id), err, domain.ErrTableNotFound)
	}
	return t, nil
}
