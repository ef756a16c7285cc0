package control

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
	"github.com/smartdom/smartdom-core/internal/infrastructure/mqtt"
)

// CommandPublisher pushes device commands onto the MQTT bus.
// Satisfied by *mqtt.Client.
type CommandPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Service implements control mode management and actuator toggling.
type Service struct {
	modes   ModeRepository
	rooms   home.RoomRepository
	sensors home.SensorRepository
	logger  *logging.Logger

	commands CommandPublisher
	qos      byte
}

// NewService creates a control service over the given repositories.
func NewService(modes ModeRepository, rooms home.RoomRepository, sensors home.SensorRepository, logger *logging.Logger) *Service {
	return &Service{
		modes:   modes,
		rooms:   rooms,
		sensors: sensors,
		logger:  logger.With("component", "control"),
	}
}

// SetCommandPublisher wires an optional MQTT connection for device commands.
func (s *Service) SetCommandPublisher(p CommandPublisher, qos byte) {
	s.commands = p
	s.qos = qos
}

// Mode returns the user's current control mode.
func (s *Service) Mode(ctx context.Context, userID int64) (*Mode, error) {
	return s.modes.Get(ctx, userID)
}

// SetMode switches the user between manual and automatic control.
func (s *Service) SetMode(ctx context.Context, userID int64, isManual bool) (*Mode, error) {
	mode, err := s.modes.Set(ctx, userID, isManual)
	if err != nil {
		return nil, err
	}
	s.logger.Info("control mode changed", "user_id", userID, "is_manual", isManual)
	return mode, nil
}

// Toggle sets a light or ventilation actuator on or off.
//
// The caller must be in manual mode and, unless admin, own the room.
// The stored sensor state is updated first; the MQTT command is
// best-effort on top of that.
func (s *Service) Toggle(ctx context.Context, userID int64, admin bool, roomID int64, kind catalog.Kind, number int, on bool) (*home.Sensor, error) {
	if kind != catalog.KindLight && kind != catalog.KindVentilation {
		return nil, fmt.Errorf("%w: %q", ErrNotToggleable, kind)
	}

	mode, err := s.modes.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !mode.IsManual {
		return nil, ErrAutoMode
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("loading room %d: %w", roomID, err)
	}
	if !admin && room.OwnerID != userID {
		return nil, ErrNotOwner
	}

	sensor, err := s.sensors.Get(ctx, roomID, kind, number)
	if err != nil {
		return nil, fmt.Errorf("loading sensor: %w", err)
	}

	sensor.IsOn = &on
	if kind == catalog.KindVentilation && !on {
		zero := 0.0
		sensor.FanSpeed = &zero
	}
	if err := s.sensors.Update(ctx, sensor); err != nil {
		return nil, fmt.Errorf("updating sensor: %w", err)
	}

	s.publishCommand(roomID, sensor, on)
	return sensor, nil
}

// toggleCommand is the payload devices receive on the command topic.
type toggleCommand struct {
	IsOn     bool   `json:"is_on"`
	IssuedAt string `json:"issued_at"`
}

// publishCommand sends the toggle to the device. Failures are logged only;
// the stored state already reflects the user's intent.
func (s *Service) publishCommand(roomID int64, sensor *home.Sensor, on bool) {
	if s.commands == nil {
		return
	}

	payload, err := json.Marshal(toggleCommand{
		IsOn:     on,
		IssuedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Error("marshalling toggle command", "error", err)
		return
	}

	topic := mqtt.Topics{}.DeviceCommand(roomID, string(sensor.Kind), sensor.Number)
	if err := s.commands.Publish(topic, payload, s.qos, false); err != nil {
		s.logger.Warn("publishing toggle command", "topic", topic, "error", err)
	}
}
