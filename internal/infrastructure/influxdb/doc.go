// Package influxdb provides InfluxDB connectivity for reading history.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched sensor-reading writes, and health monitoring.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Sensor telemetry history (temperature, gas, humidity readings)
//   - Gas concentration alerts
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "smartdom",
//	    Bucket: "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSensorReading(5, "temperature", 1,
//	    map[string]interface{}{"value": 21.5})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb
