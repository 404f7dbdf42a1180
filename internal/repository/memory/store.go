// Package memory implements repository.Store in process memory. Transactions
// are serialized and work on a copy of the dataset that replaces the
// committed one only when the transaction function succeeds.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// Store is an in-memory implementation of repository.Store.
type Store struct {
	mu   sync.RWMutex
	data *dataset

	// Counters for verification
	TxCount       int32
	RollbackCount int32

	// Error injection: returned by WithinTx instead of committing.
	CommitError error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// WithinTx runs fn against a private copy of the data and commits it when fn
// returns nil. Transactions never interleave.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddInt32(&s.TxCount, 1)

	next := s.data.clone()
	if err := fn(session{store: s, tx: next}); err != nil {
		atomic.AddInt32(&s.RollbackCount, 1)
		return err
	}
	if s.CommitError != nil {
		atomic.AddInt32(&s.RollbackCount, 1)
		return s.CommitError
	}

	s.data = next
	return nil
}

func (s *Store) Vehicles() repository.VehicleRepository {
	return vehicleRepo{session{store: s}}
}

func (s *Store) Drivers() repository.DriverRepository {
	return driverRepo{session{store: s}}
}

func (s *Store) Trips() repository.TripRepository {
	return tripRepo{session{store: s}}
}

func (s *Store) Maintenance() repository.MaintenanceRepository {
	return maintenanceRepo{session{store: s}}
}

func (s *Store) Expenses() repository.ExpenseRepository {
	return expenseRepo{session{store: s}}
}

// session is either bound to a transaction (tx set) or reads and writes the
// committed dataset under the store lock.
type session struct {
	store *Store
	tx    *dataset
}

func (s session) Vehicles() repository.VehicleRepository { return vehicleRepo{s} }
func (s session) Drivers() repository.DriverRepository { return driverRepo{s} }
func (s session) Trips() repository.TripRepository { return tripRepo{s} }
func (s session) Maintenance() repository.MaintenanceRepository { return maintenanceRepo{s} }
func (s session) Expenses() repository.ExpenseRepository { return expenseRepo{s} }

func (s session) read(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return fn(s.store.data)
}

// write outside a transaction is applied to a copy so a failing fn leaves
// the committed data untouched.
func (s session) write(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	next := s.store.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.store.data = next
	return nil
}

type dataset struct {
	vehicles    map[string]domain.Vehicle
	drivers     map[string]domain.Driver
	trips       map[string]domain.Trip
	maintenance map[string]domain.Maintenance
	expenses    map[string]domain.Expense
}

func newDataset() *dataset {
	return &dataset{
		vehicles:    make(map[string]domain.Vehicle),
		drivers:     make(map[string]domain.Driver),
		trips:       make(map[string]domain.Trip),
		maintenance: make(map[string]domain.Maintenance),
		expenses:    make(map[string]domain.Expense),
	}
}

// clone copies the maps. Stored values own their pointer and slice fields
// (see copyTrip, copyDriver), so a shallow copy of each entry is enough.
func (d *dataset) clone() *dataset {
	return &dataset{
		vehicles:    cloneMap(d.vehicles),
		drivers:     cloneMap(d.drivers),
		trips:       cloneMap(d.trips),
		maintenance: cloneMap(d.maintenance),
		expenses:    cloneMap(d.expenses),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ repository.Store = (*Store)(nil)
