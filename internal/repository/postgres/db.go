package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// SQLSTATE codes translated by translateError.
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

// translateError maps driver errors onto domain and repository errors.
func translateError(err error, entity string, fields map[string]string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("%s: %w", pqErr.Message, repository.ErrReferenced)
	}
	if pqErr.Code == uniqueViolation {
		for constraint, field := range fields {
			if pqErr.Constraint == constraint {
				return &domain.UniquenessViolationError{Entity: entity, Field: field, Value: uniqueValue(pqErr)}
			}
		}
		return &domain.UniquenessViolationError{Entity: entity, Field: pqErr.Constraint}
	}
	return err
}

// uniqueValue extracts the duplicated value from a detail such as
// `Key (license_plate)=(GJ01AB1234) already exists.`
func uniqueValue(pqErr *pq.Error) string {
	i := strings.LastIndex(pqErr.Detail, "=(")
	if i < 0 {
		return ""
	}
	rest := pqErr.Detail[i+2:]
	if j := strings.Index(rest, ")"); j >= 0 {
		return rest[:j]
	}
	return rest
}

// checkAffected returns repository.ErrNotFound when no row was touched.
func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
