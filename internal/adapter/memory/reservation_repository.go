package memory

import (
	"context"
	"sort"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type reservationRepository struct {
	s *Store
}

func (r *reservationRepository) CreateWithNoOverlap(ctx context.Context, tableID int64, date time.Time, build func(*domain.Table, []*domain.Reservation) (*domain.Reservation, error)) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tables[tableID]
	if !ok {
		return nil, domain.ErrTableNotFound
	}

	date = domain.DateOf(date)
	existing := r.s.holdingLocked(func(res domain.Reservation) bool {
		return res.TableID == tableID && res.Date.Equal(date)
	})

	res, err := build(&t, existing)
	if err != nil {
		return nil, err
	}

	r.s.nextReservationID++
	res.ID = r.s.nextReservationID
	r.s.reservations[res.ID] = *res
	return res, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &res, nil
}

func (r *reservationRepository) ListByTableAndDate(ctx context.Context, tableID int64, date time.Time) ([]*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	date = domain.DateOf(date)
	var out []*domain.Reservation
	for _, res := range r.s.reservations {
		if res.TableID == tableID && res.Date.Equal(date) {
			res := res
			out = append(out, &res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *reservationRepository) ListHoldingByCompanyAndDate(ctx context.Context, companyID int64, date time.Time) ([]*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	date = domain.DateOf(date)
	return r.s.holdingLocked(func(res domain.Reservation) bool {
		return res.CompanyID == companyID && res.Date.Equal(date)
	}), nil
}

func (r *reservationRepository) Update(ctx context.Context, id int64, apply func(*domain.Reservation) error) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if err := apply(&res); err != nil {
		return nil, err
	}
	r.s.reservations[id] = res
	return &res, nil
}
