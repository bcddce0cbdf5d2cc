package memory

import (
	"context"
	"sort"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type tableRepository struct {
	s *Store
}

func (r *tableRepository) Create(ctx context.Context, table *domain.Table) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tables {
		if t.Active && t.CompanyID == table.CompanyID && t.Number == table.Number {
			return domain.ErrDuplicateTableNumber
		}
	}

	r.s.nextTableID++
	table.ID = r.s.nextTableID
	r.s.tables[table.ID] = *table
	return nil
}

func (r *tableRepository) FindByID(ctx context.Context, id int64) (*domain.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tables[id]
	if !ok {
		return nil, domain.ErrTableNotFound
	}
	return &t, nil
}

func (r *tableRepository) ListByCompany(ctx context.Context, companyID int64) ([]*domain.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.Table
	for _, t := range r.s.tables {
		if t.CompanyID == companyID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id int64, status domain.TableStatus) (*domain.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tables[id]
	if !ok {
		return nil, domain.ErrTableNotFound
	}
	if err := t.SetStatus(status); err != nil {
		return nil, err
	}
	r.s.tables[id] = t
	return &t, nil
}

func (r *tableRepository) Deactivate(ctx context.Context, id int64, from time.Time, apply func(*domain.Table, []*domain.Reservation) error) (*domain.Table, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tables[id]
	if !ok {
		return nil, domain.ErrTableNotFound
	}

	from = domain.DateOf(from)
	holding := r.s.holdingLocked(func(res domain.Reservation) bool {
		return res.TableID == id && !res.Date.Before(from)
	})
	if err := apply(&t, holding); err != nil {
		return nil, err
	}

	r.s.tables[id] = t
	return &t, nil
}
