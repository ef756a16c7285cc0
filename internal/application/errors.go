package application

import "errors"

var (
	// ErrNotFound is returned when an application id does not exist.
	ErrNotFound = errors.New("application not found")

	// ErrNotPending is returned when approving or rejecting an application
	// that has already been decided.
	ErrNotPending = errors.New("application is not pending")

	// ErrEmptyConfig is returned when an application requests no rooms.
	ErrEmptyConfig = errors.New("application requests no rooms")

	// ErrNoSensors is returned when a requested room has no sensors.
	ErrNoSensors = errors.New("room config has no sensors")

	// ErrUnknownRoomType is returned for a room type id outside the dictionary.
	ErrUnknownRoomType = errors.New("unknown room type")

	// ErrUnknownSensorType is returned for a sensor type id outside the dictionary.
	ErrUnknownSensorType = errors.New("unknown sensor type")

	// ErrAdminApplicant is returned when an admin account tries to submit
	// an application. Admins review applications, they do not file them.
	ErrAdminApplicant = errors.New("admins cannot submit applications")
)
