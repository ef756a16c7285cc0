package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/logging"
	"github.com/smartdom/smartdom-core/internal/infrastructure/mqtt"
)

// applyTimeout bounds one batch application triggered by an MQTT message.
const applyTimeout = 10 * time.Second

// Bus is the slice of the MQTT client the consumer needs.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Message is the telemetry payload microcontrollers publish to
// smartdom/telemetry/{room_id}. The room name doubles as a shared-secret
// check: a mismatch with the stored room rejects the batch.
type Message struct {
	RoomName string         `json:"room_name"`
	Readings []home.Reading `json:"readings"`
}

// Consumer feeds MQTT telemetry into the ingestion service and republishes
// the canonical sensor state after each applied reading.
type Consumer struct {
	bus    Bus
	svc    *Service
	qos    byte
	logger *logging.Logger
}

// NewConsumer creates a consumer over an MQTT connection.
func NewConsumer(bus Bus, svc *Service, qos byte, logger *logging.Logger) *Consumer {
	return &Consumer{
		bus:    bus,
		svc:    svc,
		qos:    qos,
		logger: logger.With("component", "telemetry_consumer"),
	}
}

// Start subscribes to the telemetry wildcard. The underlying client restores
// the subscription after reconnects.
func (c *Consumer) Start() error {
	topic := mqtt.Topics{}.AllTelemetry()
	if err := c.bus.Subscribe(topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	c.logger.Info("telemetry consumer started", "topic", topic)
	return nil
}

// handleMessage processes one telemetry publication. Errors are logged and
// swallowed; a malformed message must not wedge the subscription.
func (c *Consumer) handleMessage(topic string, payload []byte) error {
	roomID, err := roomIDFromTopic(topic)
	if err != nil {
		c.logger.Warn("ignoring telemetry on malformed topic", "topic", topic, "error", err)
		return nil
	}

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn("ignoring malformed telemetry payload", "room_id", roomID, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()

	res, err := c.svc.Apply(ctx, roomID, msg.RoomName, msg.Readings)
	if err != nil {
		c.logger.Warn("telemetry batch rejected", "room_id", roomID, "error", err)
		return nil
	}

	c.logger.Info("telemetry batch applied",
		"room_id", roomID,
		"processed", res.Processed,
		"failed", len(res.Errors))

	c.publishState(roomID, res.Updated)
	return nil
}

// publishState republishes applied sensor rows as retained state messages so
// late subscribers see the current value without waiting for new telemetry.
func (c *Consumer) publishState(roomID int64, sensors []home.Sensor) {
	for i := range sensors {
		s := &sensors[i]
		payload, err := json.Marshal(s)
		if err != nil {
			c.logger.Error("marshalling sensor state", "sensor_id", s.ID, "error", err)
			continue
		}
		topic := mqtt.Topics{}.SensorState(roomID, string(s.Kind), s.Number)
		if err := c.bus.Publish(topic, payload, c.qos, true); err != nil {
			c.logger.Warn("publishing sensor state", "topic", topic, "error", err)
		}
	}
}

// roomIDFromTopic extracts the room id from smartdom/telemetry/{room_id}.
func roomIDFromTopic(topic string) (int64, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return 0, fmt.Errorf("unexpected topic shape %q", topic)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid room id in topic %q", topic)
	}
	return id, nil
}
