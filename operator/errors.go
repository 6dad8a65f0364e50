package operator

import "errors"

var (
	// ErrStencilRange indicates a hopping offset longer than the ghost width.
	ErrStencilRange = errors.New("operator: hopping offset exceeds the ghost width")
	// ErrOrbital indicates an orbital index outside [0, Orbitals).
	ErrOrbital = errors.New("operator: orbital index out of range")
	// ErrGauge indicates a gauge field on a non-2D lattice or a real state type.
	ErrGauge = errors.New("operator: gauge field requires a two-dimensional lattice and a complex state type")
	// ErrSiteOutside indicates a vacancy or defect anchor outside the global lattice.
	ErrSiteOutside = errors.New("operator: site coordinate outside the global lattice")
	// ErrDefectRange indicates a broken defect endpoint beyond ghost reach.
	ErrDefectRange = errors.New("operator: defect endpoint not reachable within the ghost width")
	// ErrScale indicates a non-positive spectral scale factor.
	ErrScale = errors.New("operator: spectral scale factor must be positive")
	// ErrComplexAmplitude indicates a complex amplitude with a real state type.
	ErrComplexAmplitude = errors.New("operator: complex amplitude requires a complex state type")
)
