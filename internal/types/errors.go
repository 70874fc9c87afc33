package types

import "errors"

// Error kinds the core surfaces (spec §7). Callers unwrap with
// errors.Is; every layer wraps its cause with fmt.Errorf("...: %w", ...)
// the way the teacher's disk_manager/bufferpool/catalog packages do.
var (
	ErrSchemaConflict     = errors.New("schema conflict")
	ErrUnknownTable       = errors.New("unknown table")
	ErrUnknownAttribute   = errors.New("unknown attribute")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrLengthExceeded     = errors.New("length exceeded")
	ErrNullInNotNull      = errors.New("null value in not-null attribute")
	ErrPrimaryKeyViolation = errors.New("primary key violation")
	ErrIOFailure          = errors.New("io failure")
	ErrInvariantBreach    = errors.New("invariant breach")
)
