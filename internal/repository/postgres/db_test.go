package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetflow/internal/domain"
	"fleetflow/internal/repository"
)

func TestTranslateError_UniqueViolation(t *testing.T) {
	pqErr := &pq.Error{
		Code:       uniqueViolation,
		Constraint: "vehicles_license_plate_key",
		Detail:     "Key (license_plate)=(GJ01AB1234) already exists.",
	}

	err := translateError(pqErr, "vehicle", vehicleUniqueFields)

	var uniq *domain.UniquenessViolationError
	require.True(t, errors.As(err, &uniq))
	assert.Equal(t, "license_plate", uniq.Field)
	assert.Equal(t, "GJ01AB1234", uniq.Value)
	assert.ErrorIs(t, err, domain.ErrUniquenessViolation)
}

func TestTranslateError_NoRows(t *testing.T) {
	assert.ErrorIs(t, translateError(sql.ErrNoRows, "trip", nil), repository.ErrNotFound)
	assert.NoError(t, translateError(nil, "trip", nil))

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other, "trip", nil))
}

func TestNullableHelpers(t *testing.T) {
	assert.Nil(t, floatPtr(nullFloat(nil)))

	zero := 0.0
	got := floatPtr(nullFloat(&zero))
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)

	assert.False(t, nullString("").Valid)
	assert.Equal(t, []string{}, categories(nil))
}

func TestTranslateError_ForeignKey(t *testing.T) {
	pqErr := &pq.Error{Code: foreignKeyViolation, Message: "update or delete on table \"drivers\" violates foreign key constraint"}

	assert.ErrorIs(t, translateError(pqErr, "driver", nil), repository.ErrReferenced)
}
