package memory

import (
	"context"
	"sort"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

type expenseRepo struct{ s session }

func (r expenseRepo) Create(ctx context.Context, e *domain.Expense) error {
	return r.s.write(func(d *dataset) error {
		if err := d.checkExpenseRefs(e); err != nil {
			return err
		}
		d.expenses[e.ID] = *e
		return nil
	})
}

func (r expenseRepo) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	var out *domain.Expense
	err := r.s.read(func(d *dataset) error {
		e, ok := d.expenses[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r expenseRepo) List(ctx context.Context, filter repository.ExpenseFilter) ([]*domain.Expense, error) {
	var out []*domain.Expense
	err := r.s.read(func(d *dataset) error {
		for _, e := range d.expenses {
			if filter.VehicleID != "" && e.VehicleID != filter.VehicleID {
				continue
			}
			if filter.TripID != "" && e.TripID != filter.TripID {
				continue
			}
			if filter.Type != "" && e.Type != filter.Type {
				continue
			}
			e := e
			out = append(out, &e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r expenseRepo) Update(ctx context.Context, e *domain.Expense) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.expenses[e.ID]; !ok {
			return repository.ErrNotFound
		}
		if err := d.checkExpenseRefs(e); err != nil {
			return err
		}
		d.expenses[e.ID] = *e
		return nil
	})
}

func (r expenseRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.expenses[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.expenses, id)
		return nil
	})
}

func (d *dataset) checkExpenseRefs(e *domain.Expense) error {
	if _, ok := d.vehicles[e.VehicleID]; !ok {
		return repository.ErrReferenced
	}
	if e.TripID != "" {
		if _, ok := d.trips[e.TripID]; !ok {
			return repository.ErrReferenced
		}
	}
	return nil
}
