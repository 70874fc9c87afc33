package storage

import "jottdb/internal/types"

// Re-exported here so callers importing only internal/storage can
// errors.Is against the spec's error kinds without reaching into
// internal/types directly. The sentinels themselves live in
// internal/types because internal/record needs them too, and record
// sits below storage in the dependency graph.
var (
	ErrSchemaConflict      = types.ErrSchemaConflict
	ErrUnknownTable        = types.ErrUnknownTable
	ErrUnknownAttribute    = types.ErrUnknownAttribute
	ErrTypeMismatch        = types.ErrTypeMismatch
	ErrLengthExceeded      = types.ErrLengthExceeded
	ErrNullInNotNull       = types.ErrNullInNotNull
	ErrPrimaryKeyViolation = types.ErrPrimaryKeyViolation
	ErrIOFailure           = types.ErrIOFailure
	ErrInvariantBreach     = types.ErrInvariantBreach
)
