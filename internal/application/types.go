package application

import "time"

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// RoomConfig is one requested room: its dictionary type and the sensor
// types to provision inside it. The same type id may repeat to request
// several sensors of one kind.
type RoomConfig struct {
	RoomTypeID    int   `json:"room_type_id"`
	SensorTypeIDs []int `json:"sensor_type_ids"`
}

// Application is a user's provisioning request.
type Application struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	RoomsConfig      []RoomConfig `json:"rooms_config"`
	Status           Status       `json:"status"`
	RejectionComment string       `json:"rejection_comment,omitempty"`
	CreatedRoomIDs   []int64      `json:"created_room_ids,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Pending reports whether the application can still be approved or rejected.
func (a *Application) Pending() bool {
	return a.Status == StatusPending
}
