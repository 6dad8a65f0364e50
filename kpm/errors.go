package kpm

import "errors"

var (
	// ErrMemory indicates an iterate ring capacity below 1.
	ErrMemory = errors.New("kpm: iterate ring capacity must be at least 1")
	// ErrWorkerCount indicates a context built for a different worker group.
	ErrWorkerCount = errors.New("kpm: context and geometry disagree on the worker group")
	// ErrGroupSize indicates a barrier size below 1.
	ErrGroupSize = errors.New("kpm: barrier group size must be at least 1")
	// ErrSlot indicates a ring slot outside [0, capacity).
	ErrSlot = errors.New("kpm: ring slot out of range")
)
