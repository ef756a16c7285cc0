package control

import "errors"

var (
	// ErrNotToggleable is returned when the sensor kind has no on/off actuator.
	ErrNotToggleable = errors.New("sensor kind cannot be toggled")

	// ErrAutoMode is returned when a toggle is attempted outside manual mode.
	ErrAutoMode = errors.New("control mode is automatic")

	// ErrNotOwner is returned when a user toggles a device in a room they do not own.
	ErrNotOwner = errors.New("room belongs to another user")
)
