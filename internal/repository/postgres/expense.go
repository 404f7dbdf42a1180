package postgres

import (
	"context"
	"database/sql"
	"strings"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

const expenseColumns = `id, vehicle_id, COALESCE(trip_id::text, ''), name, expense_type, expense_date,
	liters, price_per_liter, cost, COALESCE(notes, ''), created_at, updated_at`

// ExpenseRepository is a PostgreSQL implementation of repository.ExpenseRepository.
type ExpenseRepository struct {
	q Querier
}

// NewExpenseRepository creates a new PostgreSQL expense repository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{q: db}
}

// NewExpenseRepositoryWithTx creates an expense repository using a transaction.
func NewExpenseRepositoryWithTx(tx *sql.Tx) *ExpenseRepository {
	return &ExpenseRepository{q: tx}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, vehicle_id, trip_id, name, expense_type, expense_date,
			liters, price_per_liter, cost, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.ExecContext(ctx, query,
		e.ID, e.VehicleID, nullString(e.TripID), e.Name, e.Type, e.Date,
		e.Liters, e.PricePerLiter, e.Cost, nullString(e.Notes), e.CreatedAt, e.UpdatedAt,
	)
	return translateError(err, "expense", nil)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	e, err := scanExpense(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "expense", nil)
	}
	return e, nil
}

func (r *ExpenseRepository) List(ctx context.Context, filter repository.ExpenseFilter) ([]*domain.Expense, error) {
	var where []string
	var args []any
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		where = append(where, "vehicle_id = $"+itoa(len(args)))
	}
	if filter.TripID != "" {
		args = append(args, filter.TripID)
		where = append(where, "trip_id = $"+itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, "expense_type = $"+itoa(len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY expense_date DESC, created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

func (r *ExpenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	query := `
		UPDATE expenses
		SET vehicle_id = $1, trip_id = $2, name = $3, expense_type = $4, expense_date = $5,
			liters = $6, price_per_liter = $7, cost = $8, notes = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := r.q.ExecContext(ctx, query,
		e.VehicleID, nullString(e.TripID), e.Name, e.Type, e.Date,
		e.Liters, e.PricePerLiter, e.Cost, nullString(e.Notes), e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return translateError(err, "expense", nil)
	}
	return checkAffected(result)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ID, &e.VehicleID, &e.TripID, &e.Name, &e.Type, &e.Date,
		&e.Liters, &e.PricePerLiter, &e.Cost, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)
