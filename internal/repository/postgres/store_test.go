package postgres

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_BindsRepositoriesToPool(t *testing.T) {
	// sql.Open does not dial, so no server is needed.
	db, err := sql.Open("postgres", "host=127.0.0.1 dbname=fleetflow sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	s := NewStore(db)

	vehicles, ok := s.Vehicles().(*VehicleRepository)
	require.True(t, ok)
	assert.Same(t, db, vehicles.q)

	drivers, ok := s.Drivers().(*DriverRepository)
	require.True(t, ok)
	assert.Same(t, db, drivers.q)

	trips, ok := s.Trips().(*TripRepository)
	require.True(t, ok)
	assert.Same(t, db, trips.q)

	maintenance, ok := s.Maintenance().(*MaintenanceRepository)
	require.True(t, ok)
	assert.Same(t, db, maintenance.q)

	expenses, ok := s.Expenses().(*ExpenseRepository)
	require.True(t, ok)
	assert.Same(t, db, expenses.q)
}

func TestNewTxRepos_BindsRepositoriesToTx(t *testing.T) {
	tx := &sql.Tx{}

	r := newTxRepos(tx)

	assert.Same(t, tx, r.vehicles.q)
	assert.Same(t, tx, r.drivers.q)
	assert.Same(t, tx, r.trips.q)
	assert.Same(t, tx, r.maintenance.q)
	assert.Same(t, tx, r.expenses.q)
}
