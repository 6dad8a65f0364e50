package moments

import "errors"

var (
	// ErrOrder reports a non-positive moment count.
	ErrOrder = errors.New("moments: moment count must be positive")

	// ErrLength reports an estimate whose length does not match the
	// accumulator it is folded into.
	ErrLength = errors.New("moments: estimate length mismatch")

	// ErrEnergyRange reports a reconstruction energy outside the open
	// interval (-1, 1) of the rescaled spectrum.
	ErrEnergyRange = errors.New("moments: energy outside the rescaled spectrum")

	// ErrPlan reports an empty or inconsistent gamma traversal plan.
	ErrPlan = errors.New("moments: invalid gamma plan")
)
