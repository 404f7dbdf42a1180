package repository

import (
	"context"

	"fleetflow/internal/domain"
)

// ExpenseFilter narrows an expense listing. Zero values match everything.
type ExpenseFilter struct {
	VehicleID string
	TripID    string
	Type      domain.ExpenseType
}

// ExpenseRepository defines the persistence operations for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)

	// List retrieves expenses, most recent first.
	List(ctx context.Context, filter ExpenseFilter) ([]*domain.Expense, error)

	Update(ctx context.Context, e *domain.Expense) error
	Delete(ctx context.Context, id string) error
}
