package mqtt

import "fmt"

// Topic prefixes. All topics share the flat scheme:
// smartdom/{category}/{room_id}[/...]
const (
	// TopicPrefix is the base for all service topics.
	TopicPrefix = "smartdom"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "smartdom/system"
)

// Topics provides builders for the service's MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	t := topics.Telemetry(5)
//	// Returns: "smartdom/telemetry/5"
type Topics struct{}

// Telemetry returns the topic microcontrollers publish sensor readings to
// for one room.
//
// Example: smartdom/telemetry/5
func (Topics) Telemetry(roomID int64) string {
	return fmt.Sprintf("%s/telemetry/%d", TopicPrefix, roomID)
}

// DeviceCommand returns the topic actuator commands are published to.
//
// Example: smartdom/command/5/light/1
func (Topics) DeviceCommand(roomID int64, kind string, number int) string {
	return fmt.Sprintf("%s/command/%d/%s/%d", TopicPrefix, roomID, kind, number)
}

// SensorState returns the topic the backend publishes canonical sensor
// state to after applying a reading.
//
// Example: smartdom/state/5/gas/1
func (Topics) SensorState(roomID int64, kind string, number int) string {
	return fmt.Sprintf("%s/state/%d/%s/%d", TopicPrefix, roomID, kind, number)
}

// SystemStatus returns the service status topic (online/offline, LWT).
//
// Example: smartdom/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllTelemetry returns a pattern matching telemetry from every room.
//
// Pattern: smartdom/telemetry/+
func (Topics) AllTelemetry() string {
	return fmt.Sprintf("%s/telemetry/+", TopicPrefix)
}

// AllTopics returns a pattern matching all service topics.
// Use with caution, this receives ALL traffic.
//
// Pattern: smartdom/#
func (Topics) AllTopics() string {
	return "smartdom/#"
}
