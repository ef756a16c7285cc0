package home

import (
	"time"

	"github.com/smartdom/smartdom-core/internal/catalog"
)

// Room is a provisioned physical space. Name is globally unique; TypeID
// points into the room dictionary the name was derived from.
type Room struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	TypeID    int       `json:"room_type_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Sensor is one provisioned sensor row. Only the fields belonging to its
// kind are populated; the rest stay nil.
type Sensor struct {
	ID            int64        `json:"id"`
	RoomID        int64        `json:"room_id"`
	Kind          catalog.Kind `json:"kind"`
	Number        int          `json:"sensor_number"`
	Value         *float64     `json:"value,omitempty"`          // temperature, °C
	IsOn          *bool        `json:"is_on,omitempty"`          // light, ventilation
	PPM           *float64     `json:"ppm,omitempty"`            // gas, CO2 ppm
	GasStatus     GasStatus    `json:"gas_status,omitempty"`     // gas
	HumidityLevel *float64     `json:"humidity_level,omitempty"` // humidity, %
	FanSpeed      *float64     `json:"fan_speed,omitempty"`      // ventilation
	TriggerTime   *time.Time   `json:"trigger_time,omitempty"`   // motion
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Reading is one incoming measurement from a device. Value is the generic
// fallback channel older firmware uses when it does not know the
// kind-specific field name.
type Reading struct {
	SensorNumber  int          `json:"sensor_number"`
	Kind          catalog.Kind `json:"kind"`
	Value         *float64     `json:"value,omitempty"`
	IsOn          *bool        `json:"is_on,omitempty"`
	PPM           *float64     `json:"ppm,omitempty"`
	HumidityLevel *float64     `json:"humidity_level,omitempty"`
	FanSpeed      *float64     `json:"fan_speed,omitempty"`
	TriggerTime   *time.Time   `json:"trigger_time,omitempty"`
}
