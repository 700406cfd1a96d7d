package types

import "errors"

// Property and store errors. These are data conditions: the operation that
// returns one has no effect beyond reporting it.
var (
	ErrTypeMismatch = errors.New("type mismatch")
	ErrKeyExists    = errors.New("key already exists")
	ErrKeyNotFound  = errors.New("key not found")
)

// Uplink errors. ErrUplinkAlreadySet is returned when a store's uplink is
// registered a second time; the other two come from reconstructing a handle.
var (
	ErrUplinkAlreadySet = errors.New("uplink was already set")
	ErrNoUplink         = errors.New("store has no uplink")
	ErrUplinkDead       = errors.New("uplink target has no live owner")
)

// Handle errors (single-borrower discipline).
var (
	ErrAlreadyAcquired = errors.New("store is already acquired")
	ErrHandleReleased  = errors.New("handle was released")
	ErrGuardReleased   = errors.New("guard was released")
)

// Journal errors.
var (
	ErrJournalClosed = errors.New("journal is closed")
	ErrRunNotFound   = errors.New("run not found")
	ErrRunFinished   = errors.New("run already finished")
)

// Processor errors.
var (
	ErrStepLimit     = errors.New("processor exceeded step limit")
	ErrNoProcessors  = errors.New("scenario has no processors")
	ErrRunnerMissing = errors.New("processor has no runner")
)
