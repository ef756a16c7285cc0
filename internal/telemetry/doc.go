// Package telemetry applies incoming sensor readings to the home state.
//
// Readings arrive in batches scoped to a single room, either over HTTP
// (POST /telemetry/readings) or the MQTT bus (smartdom/telemetry/{room_id}).
// Both paths converge on Service.Apply, which validates the room by its
// (id, name) pair, locates each sensor by (room, kind, number), and updates
// the kind-specific fields. A sensor that does not exist yet is created with
// its kind defaults before the reading is applied.
//
// Per-reading failures (unknown kind, missing fields, storage errors) are
// collected and reported; the rest of the batch still goes through. Only a
// failed room validation aborts the whole batch.
//
// Applied readings are optionally fanned out to an InfluxDB history writer
// and a WebSocket broadcaster.
package telemetry
