// Package sentinel holds the errors stores return. Services translate them
// into coded domain errors exactly once, so stores never pick HTTP-facing
// codes themselves.
package sentinel

import "errors"

var (
	// ErrNotFound means no record has the requested key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed means a uniqueness rule (room, invoice number) rejected the write.
	ErrAlreadyUsed = errors.New("already used")
	// ErrCorruptRow means a stored row no longer satisfies its entity schema.
	ErrCorruptRow = errors.New("stored row violates entity schema")
)
