package telemetry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/smartdom/smartdom-core/internal/catalog"
	"github.com/smartdom/smartdom-core/internal/home"
	"github.com/smartdom/smartdom-core/internal/infrastructure/mqtt"
)

// fakeBus records subscriptions and publications without a broker.
type fakeBus struct {
	subscribed []string
	published  map[string][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][]byte)}
}

func (b *fakeBus) Subscribe(topic string, _ byte, _ mqtt.MessageHandler) error {
	b.subscribed = append(b.subscribed, topic)
	return nil
}

func (b *fakeBus) Publish(topic string, payload []byte, _ byte, _ bool) error {
	b.published[topic] = payload
	return nil
}

func TestRoomIDFromTopic(t *testing.T) {
	tests := []struct {
		topic   string
		want    int64
		wantErr bool
	}{
		{topic: "smartdom/telemetry/5", want: 5},
		{topic: "smartdom/telemetry/123", want: 123},
		{topic: "smartdom/telemetry/0", wantErr: true},
		{topic: "smartdom/telemetry/abc", wantErr: true},
		{topic: "smartdom/telemetry", wantErr: true},
		{topic: "smartdom/telemetry/5/extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := roomIDFromTopic(tt.topic)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("roomIDFromTopic(%q) expected error", tt.topic)
				}
				return
			}
			if err != nil {
				t.Fatalf("roomIDFromTopic(%q) error = %v", tt.topic, err)
			}
			if got != tt.want {
				t.Errorf("roomIDFromTopic(%q) = %d, want %d", tt.topic, got, tt.want)
			}
		})
	}
}

func TestConsumerStartSubscribesWildcard(t *testing.T) {
	svc, _ := newTestService(t)
	bus := newFakeBus()

	consumer := NewConsumer(bus, svc, 1, quietLogger())
	if err := consumer.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(bus.subscribed) != 1 || bus.subscribed[0] != "smartdom/telemetry/+" {
		t.Errorf("subscribed = %v, want [smartdom/telemetry/+]", bus.subscribed)
	}
}

func TestConsumerAppliesAndRepublishesState(t *testing.T) {
	svc, db := newTestService(t)
	roomID := seedRoom(t, db, "Кухня")
	seedSensor(t, db, roomID, catalog.KindTemperature, 1)

	bus := newFakeBus()
	consumer := NewConsumer(bus, svc, 1, quietLogger())

	payload, _ := json.Marshal(Message{
		RoomName: "Кухня",
		Readings: []home.Reading{
			{SensorNumber: 1, Kind: catalog.KindTemperature, Value: f64(24.0)},
		},
	})

	topic := mqtt.Topics{}.Telemetry(roomID)
	if err := consumer.handleMessage(topic, payload); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	// Reading landed in the store
	sensor, err := home.NewSensorRepository(db).Get(context.Background(), roomID, catalog.KindTemperature, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sensor.Value == nil || *sensor.Value != 24.0 {
		t.Errorf("sensor value = %v, want 24.0", sensor.Value)
	}

	// Canonical state republished
	stateTopic := mqtt.Topics{}.SensorState(roomID, string(catalog.KindTemperature), 1)
	state, ok := bus.published[stateTopic]
	if !ok {
		t.Fatalf("no state published on %s; published: %v", stateTopic, bus.published)
	}
	var published home.Sensor
	if err := json.Unmarshal(state, &published); err != nil {
		t.Fatalf("unmarshalling published state: %v", err)
	}
	if published.Value == nil || *published.Value != 24.0 {
		t.Errorf("published value = %v, want 24.0", published.Value)
	}
}

func TestConsumerIgnoresMalformedInput(t *testing.T) {
	svc, _ := newTestService(t)
	bus := newFakeBus()
	consumer := NewConsumer(bus, svc, 1, quietLogger())

	// Bad topic, bad JSON, unknown room: all swallowed, nothing published
	if err := consumer.handleMessage("smartdom/telemetry/abc", []byte(`{}`)); err != nil {
		t.Errorf("handleMessage(bad topic) error = %v", err)
	}
	if err := consumer.handleMessage("smartdom/telemetry/1", []byte(`{not json`)); err != nil {
		t.Errorf("handleMessage(bad json) error = %v", err)
	}
	if err := consumer.handleMessage("smartdom/telemetry/999", []byte(`{"room_name":"Кухня","readings":[]}`)); err != nil {
		t.Errorf("handleMessage(unknown room) error = %v", err)
	}
	if len(bus.published) != 0 {
		t.Errorf("published = %v, want none", bus.published)
	}
}
