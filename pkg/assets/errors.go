package assets

import (
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors for recoverable-by-caller store conditions. Workflow
// packages wrap these; the HTTP layer maps them onto status codes.
var (
	// ErrAssetNotFound is returned when no asset exists for a tag.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrTransferNotFound is returned when no transfer exists for an id.
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrBatchNotFound is returned when no salvage batch exists for an id.
	ErrBatchNotFound = errors.New("salvage batch not found")

	// ErrConflict is returned when a version-guarded save hits a record that
	// was modified concurrently. The operation did not apply.
	ErrConflict = errors.New("record modified concurrently")

	// ErrDuplicateBatchCode is returned when a batch insert collides with an
	// existing batch code. Codes have one-second resolution, so callers may
	// retry with a later timestamp.
	ErrDuplicateBatchCode = errors.New("batch code already exists")
)

func newID() string { return uuid.New().String() }
