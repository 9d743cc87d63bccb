package nutransport

import "errors"

// ErrInvalidState is returned when an EinsteinHelper's cached fields are
// consulted before Update has been run after a mutation.
var ErrInvalidState = errors.New("nutransport: einstein helper used before update")

// ErrConfig marks a configuration error: fatal at init.
var ErrConfig = errors.New("nutransport: configuration error")

// ErrResourceExhausted marks the max_particles overflow condition:
// emitting or splitting would exceed the configured pool ceiling.
var ErrResourceExhausted = errors.New("nutransport: max_particles exceeded")
