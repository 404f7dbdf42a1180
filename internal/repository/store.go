package repository

import "context"

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Vehicles() VehicleRepository
	Drivers() DriverRepository
	Trips() TripRepository
	Maintenance() MaintenanceRepository
	Expenses() ExpenseRepository
}

// Store is the persistence entry point. Its own repositories run outside any
// transaction; WithinTx hands fn repositories bound to a single transaction
// that commits when fn returns nil and rolls back otherwise.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
}
