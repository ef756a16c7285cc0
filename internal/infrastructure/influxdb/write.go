package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorReading writes a sensor telemetry measurement to InfluxDB.
//
// This is the primary method for recording reading history. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - roomID: The room the sensor belongs to
//   - kind: Sensor kind (e.g., "temperature", "gas")
//   - number: Sensor number within the room
//   - fields: The reading values (e.g., "value": 21.5, "is_on": true)
//
// Example:
//
//	client.WriteSensorReading(5, "temperature", 1,
//	    map[string]interface{}{"value": 21.5})
func (c *Client) WriteSensorReading(roomID int64, kind string, number int, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"sensor_readings",
		map[string]string{
			"room_id": strconv.FormatInt(roomID, 10),
			"kind":    kind,
			"number":  strconv.Itoa(number),
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteGasAlert records a gas concentration reading that crossed into a
// non-normal status band. Kept separate from sensor_readings so alerts can
// be retained longer than raw telemetry.
func (c *Client) WriteGasAlert(roomID int64, number int, ppm float64, status string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"gas_alerts",
		map[string]string{
			"room_id": strconv.FormatInt(roomID, 10),
			"number":  strconv.Itoa(number),
			"status":  status,
		},
		map[string]interface{}{
			"ppm": ppm,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
