package sim

import "errors"

var (
	// ErrMoments reports an expansion order below 2; the recursion needs
	// at least the zeroth and first moment.
	ErrMoments = errors.New("sim: expansion order must be at least 2")

	// ErrRealizations reports a non-positive random-vector or disorder
	// realization count.
	ErrRealizations = errors.New("sim: realization counts must be positive")
)
