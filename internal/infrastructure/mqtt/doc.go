// Package mqtt wraps the Eclipse Paho client for the telemetry bus.
//
// Microcontrollers publish sensor readings to smartdom/telemetry/{room_id};
// the backend subscribes with a single wildcard and republishes canonical
// sensor state after each accepted reading. The wrapper adds:
//
//   - Connection management with auto-reconnect and exponential backoff
//   - Subscription tracking and restoration after reconnect
//   - Last Will and Testament on smartdom/system/status for offline detection
//   - Panic recovery around message handlers
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil { ... }
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.AllTelemetry(), 1, handleReading)
package mqtt
