package lattice

import "errors"

var (
	// ErrDimension indicates mismatched or empty axis descriptions.
	ErrDimension = errors.New("lattice: global sizes and worker grid must have the same non-zero dimension")
	// ErrWorkerGrid indicates an invalid worker grid or worker id.
	ErrWorkerGrid = errors.New("lattice: worker grid must divide the global sizes and contain the worker id")
	// ErrNotTileMultiple indicates a local interior size that is not a multiple of the tile stride.
	ErrNotTileMultiple = errors.New("lattice: local interior size must be a multiple of the tile stride")
	// ErrGhostWidth indicates a ghost width below 1 or wider than a local interior size.
	ErrGhostWidth = errors.New("lattice: ghost width must be at least 1 and at most the local interior size")
	// ErrOrbitals indicates an orbital count below 1.
	ErrOrbitals = errors.New("lattice: orbital count must be at least 1")
)
