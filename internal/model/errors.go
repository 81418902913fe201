package model

import "errors"

var (
	// ErrNotFound is returned when a board, column or row id does not
	// resolve. Mutations never silently ignore stale ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidColumnType is returned when a column is created with a
	// type tag outside the registry.
	ErrInvalidColumnType = errors.New("invalid column type")

	// ErrValueType is returned when a cell value does not match the
	// declared type of its column.
	ErrValueType = errors.New("cell value does not match column type")

	// ErrValidation covers missing required fields (board name, column
	// name, link url, status label).
	ErrValidation = errors.New("validation failed")

	// ErrTooManyFiles is returned when attaching a file would push a cell
	// past MaxFilesPerCell.
	ErrTooManyFiles = errors.New("Maximum 3 fichiers autorisés")

	// ErrInvalidPartition is returned for a centrale type other than
	// coach or entrepreneur.
	ErrInvalidPartition = errors.New("invalid centrale type")

	// ErrVersionConflict is returned when an If-Match write loses the
	// race against a concurrent editor.
	ErrVersionConflict = errors.New("board version conflict")
)
