package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fleetflow/internal/repository"
)

// Store is a PostgreSQL implementation of repository.Store.
type Store struct {
	db *sql.DB
	repos
}

// NewStore creates a store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

// WithinTx runs fn inside a database transaction. Rows read with
// GetForUpdate stay locked until the transaction ends.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(newTxRepos(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// repos binds every repository to the same pool or transaction.
type repos struct {
	vehicles    *VehicleRepository
	drivers     *DriverRepository
	trips       *TripRepository
	maintenance *MaintenanceRepository
	expenses    *ExpenseRepository
}

func newRepos(db *sql.DB) repos {
	return repos{
		vehicles:    NewVehicleRepository(db),
		drivers:     NewDriverRepository(db),
		trips:       NewTripRepository(db),
		maintenance: NewMaintenanceRepository(db),
		expenses:    NewExpenseRepository(db),
	}
}

func newTxRepos(tx *sql.Tx) repos {
	return repos{
		vehicles:    NewVehicleRepositoryWithTx(tx),
		drivers:     NewDriverRepositoryWithTx(tx),
		trips:       NewTripRepositoryWithTx(tx),
		maintenance: NewMaintenanceRepositoryWithTx(tx),
		expenses:    NewExpenseRepositoryWithTx(tx),
	}
}

func (r repos) Vehicles() repository.VehicleRepository       { return r.vehicles }
func (r repos) Drivers() repository.DriverRepository         { return r.drivers }
func (r repos) Trips() repository.TripRepository             { return r.trips }
func (r repos) Maintenance() repository.MaintenanceRepository { return r.maintenance }
func (r repos) Expenses() repository.ExpenseRepository       { return r.expenses }

// Ensure Store implements repository.Store.
var _ repository.Store = (*Store)(nil)
