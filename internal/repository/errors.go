package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrReferenced is returned when deleting an entity other records still point to.
	ErrReferenced = errors.New("entity is still referenced")
)
