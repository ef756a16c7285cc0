package home

import "errors"

var (
	// ErrRoomNotFound is returned when a room id (or id/name pair) does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrSensorNotFound is returned when no sensor matches (room, kind, number).
	ErrSensorNotFound = errors.New("sensor not found")

	// ErrDuplicateRoomName is returned when an insert hits the UNIQUE(name)
	// constraint. The naming resolver treats it as a signal to re-probe.
	ErrDuplicateRoomName = errors.New("room name already exists")

	// ErrUnknownKind is returned for a sensor kind outside the fixed set.
	ErrUnknownKind = errors.New("unknown sensor kind")

	// ErrInvalidReading is returned when a reading lacks the fields its kind requires.
	ErrInvalidReading = errors.New("invalid reading")
)
