package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by both storage adapters and the service layer.
// Wrap with fmt.Errorf("...: %w", Err...) and match with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConsistency    = errors.New("ledger consistency violation")
	ErrTransientStore = errors.New("store unavailable")
)

// ErrConcurrentModification means an optimistic version check lost the race.
// It is a consistency failure, so errors.Is(err, ErrConsistency) also holds.
var ErrConcurrentModification = fmt.Errorf("%w: concurrent modification", ErrConsistency)
