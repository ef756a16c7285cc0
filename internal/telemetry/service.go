package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
)

// HistoryWriter receives applied readings for time-series storage.
// Satisfied by *influxdb.Client. Writes are fire-and-forget.
type HistoryWriter interface {
	WriteSensorReading(roomID int64, kind string, number int, fields map[string]interface{})
	WriteGasAlert(roomID int64, number int, ppm float64, status string)
}

// Broadcaster pushes applied sensor state to connected clients.
// Satisfied by the API layer's WebSocket hub.
type Broadcaster interface {
	SensorUpdated(roomID int64, s *home.Sensor)
}

// ReadingError describes one reading that could not be applied.
type ReadingError struct {
	SensorNumber int          `json:"sensor_number"`
	Kind         catalog.Kind `json:"kind"`
	Message      string       `json:"message"`
}

// Result summarises a batch application.
type Result struct {
	Processed int            `json:"processed"`
	Errors    []ReadingError `json:"errors,omitempty"`

	// Updated holds the post-apply sensor rows, in input order.
	// Used by the MQTT consumer to republish canonical state.
	Updated []home.Sensor `json:"-"`
}

// Service applies reading batches to the sensor store.
type Service struct {
	rooms   home.RoomRepository
	sensors home.SensorRepository
	logger  *logging.Logger

	history HistoryWriter
	events  Broadcaster
}

// NewService creates a telemetry service over the given repositories.
func NewService(rooms home.RoomRepository, sensors home.SensorRepository, logger *logging.Logger) *Service {
	return &Service{
		rooms:   rooms,
		sensors: sensors,
		logger:  logger.With("component", "telemetry"),
	}
}

// SetHistory wires an optional time-series writer for applied readings.
func (s *Service) SetHistory(h HistoryWriter) {
	s.history = h
}

// SetBroadcaster wires an optional live-update sink for applied readings.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.events = b
}

// Apply validates the room and applies each reading in the batch.
//
// The room must exist under exactly the given (id, name) pair; a mismatch
// aborts the batch with home.ErrRoomNotFound and no mutation. Individual
// reading failures are collected in the result and do not stop the batch.
func (s *Service) Apply(ctx context.Context, roomID int64, roomName string, readings []home.Reading) (*Result, error) {
	room, err := s.rooms.GetByIDName(ctx, roomID, roomName)
	if err != nil {
		return nil, fmt.Errorf("validating room %d %q: %w", roomID, roomName, err)
	}

	res := &Result{}
	for _, r := range readings {
		sensor, err := s.applyReading(ctx, room.ID, r)
		if err != nil {
			s.logger.Warn("reading rejected",
				"room_id", room.ID,
				"kind", string(r.Kind),
				"sensor_number", r.SensorNumber,
				"error", err)
			res.Errors = append(res.Errors, ReadingError{
				SensorNumber: r.SensorNumber,
				Kind:         r.Kind,
				Message:      err.Error(),
			})
			continue
		}
		res.Processed++
		res.Updated = append(res.Updated, *sensor)
		s.fanOut(room.ID, sensor)
	}

	return res, nil
}

// applyReading updates a single sensor from a reading, creating the sensor
// with its kind defaults when it does not exist yet.
func (s *Service) applyReading(ctx context.Context, roomID int64, r home.Reading) (*home.Sensor, error) {
	if !catalog.ValidKind(r.Kind) {
		return nil, fmt.Errorf("%w: %q", home.ErrUnknownKind, r.Kind)
	}
	if r.SensorNumber < 1 {
		return nil, fmt.Errorf("%w: sensor_number must be positive", home.ErrInvalidReading)
	}

	sensor, err := s.sensors.Get(ctx, roomID, r.Kind, r.SensorNumber)
	switch {
	case errors.Is(err, home.ErrSensorNotFound):
		sensor, err = home.NewDefaultSensor(r.Kind, roomID, r.SensorNumber, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if err := home.ApplyReading(sensor, r); err != nil {
			return nil, err
		}
		if err := s.sensors.Create(ctx, sensor); err != nil {
			return nil, fmt.Errorf("creating sensor: %w", err)
		}
		return sensor, nil
	case err != nil:
		return nil, fmt.Errorf("loading sensor: %w", err)
	}

	if err := home.ApplyReading(sensor, r); err != nil {
		return nil, err
	}
	if err := s.sensors.Update(ctx, sensor); err != nil {
		return nil, fmt.Errorf("updating sensor: %w", err)
	}
	return sensor, nil
}

// fanOut delivers an applied sensor to the optional history and
// broadcast sinks.
func (s *Service) fanOut(roomID int64, sensor *home.Sensor) {
	if s.history != nil {
		if fields := historyFields(sensor); len(fields) > 0 {
			s.history.WriteSensorReading(roomID, string(sensor.Kind), sensor.Number, fields)
		}
		if sensor.Kind == catalog.KindGas && sensor.PPM != nil && sensor.GasStatus != home.GasStatusOutdoorAir {
			s.history.WriteGasAlert(roomID, sensor.Number, *sensor.PPM, string(sensor.GasStatus))
		}
	}
	if s.events != nil {
		s.events.SensorUpdated(roomID, sensor)
	}
}

// historyFields flattens a sensor's populated kind fields into an InfluxDB
// field map.
func historyFields(s *home.Sensor) map[string]interface{} {
	fields := make(map[string]interface{})
	if s.Value != nil {
		fields["value"] = *s.Value
	}
	if s.IsOn != nil {
		fields["is_on"] = *s.IsOn
	}
	if s.PPM != nil {
		fields["ppm"] = *s.PPM
	}
	if s.HumidityLevel != nil {
		fields["humidity_level"] = *s.HumidityLevel
	}
	if s.FanSpeed != nil {
		fields["fan_speed"] = *s.FanSpeed
	}
	if s.TriggerTime != nil {
		fields["trigger_time"] = s.TriggerTime.UTC().Format(time.RFC3339)
	}
	return fields
}
