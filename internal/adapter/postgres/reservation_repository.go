package postgres

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

const reservationColumns = `id, company_id, table_id, customer_name, customer_phone, customer_email,
		party_size, reservation_date, start_minute, end_minute, status, source, created_at, updated_at`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

type reservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) interfaces.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(row Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.CompanyID, &res.TableID,
		&res.Customer.Name, &res.Customer.Phone, &res.Customer.Email,
		&res.PartySize, &res.Date, &res.Start, &res.End, &res.Status, &res.Source,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.Date = domain.DateOf(res.Date)
	return &res, nil
}

func queryReservations(ctx context.Context, q querier, query string, args ...any) ([]*domain.Reservation, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("query reservations", err, nil)
	}
	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, mapError("scan reservation", err, nil)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query reservations", err, nil)
	}
	return out, nil
}

func (r *reservationRepository) CreateWithNoOverlap(ctx context.Context, tableID int64, date time.Time, build func(*domain.Table, []*domain.Reservation) (*domain.Reservation, error)) (*domain.Reservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, mapError("begin transaction", err, nil)
	}
	defer tx.Rollback(ctx)

	// Concurrent requests for the same table queue up here, so the overlap
	// scan below always sees every committed reservation.
	table, err := lockTable(ctx, tx, tableID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE table_id = $1 AND reservation_date = $2 AND status IN ('confirmed', 'seated')
		ORDER BY start_minute, id
	`
	existing, err := queryReservations(ctx, tx, query, tableID, domain.DateOf(date))
	if err != nil {
		return nil, err
	}

	res, err := build(table, existing)
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO reservations (company_id, table_id, customer_name, customer_phone, customer_email,
		                          party_size, reservation_date, start_minute, end_minute, status, source,
		                          created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err = tx.QueryRow(ctx, insert,
		res.CompanyID, res.TableID, res.Customer.Name, res.Customer.Phone, res.Customer.Email,
		res.PartySize, res.Date, res.Start, res.End, res.Status, res.Source,
		res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		return nil, mapError("insert reservation", err, nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit reservation", err, nil)
	}
	return res, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("find reservation", err, domain.ErrReservationNotFound)
	}
	return res, nil
}

func (r *reservationRepository) ListByTableAndDate(ctx context.Context, tableID int64, date time.Time) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE table_id = $1 AND reservation_date = $2
		ORDER BY start_minute, id
	`
	return queryReservations(ctx, r.db, query, tableID, domain.DateOf(date))
}

func (r *reservationRepository) ListHoldingByCompanyAndDate(ctx context.Context, companyID int64, date time.Time) ([]*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE company_id = $1 AND reservation_date = $2 AND status IN ('confirmed', 'seated')
		ORDER BY table_id, start_minute, id
	`
	return queryReservations(ctx, r.db, query, companyID, domain.DateOf(date))
}

func (r *reservationRepository) Update(ctx context.Context, id int64, apply func(*domain.Reservation) error) (*domain.Reservation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, mapError("begin transaction", err, nil)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	res, err := scanReservation(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("lock reservation", err, domain.ErrReservationNotFound)
	}

	if err := apply(res); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE reservations
		SET status = $1, party_size = $2, customer_name = $3, customer_phone = $4, customer_email = $5, updated_at = $6
		WHERE id = $7
	`, res.Status, res.PartySize, res.Customer.Name, res.Customer.Phone, res.Customer.Email, res.UpdatedAt, res.ID)
	if err != nil {
		return nil, mapError("update reservation", err, nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit reservation", err, nil)
	}
	return res, nil
}
