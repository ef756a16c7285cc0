package application

import (
	"errors"
	"testing"

	"github.com/smartdom/smartdom-core/internal/catalog"
)

func TestValidate(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name    string
		cfg     []RoomConfig
		wantErr error
	}{
		{
			name:    "empty config",
			cfg:     nil,
			wantErr: ErrEmptyConfig,
		},
		{
			name:    "valid single room",
			cfg:     []RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1, 2}}},
			wantErr: nil,
		},
		{
			name: "repeated sensor types are allowed",
			cfg:  []RoomConfig{{RoomTypeID: 1, SensorTypeIDs: []int{2, 2, 2}}},
		},
		{
			name:    "unknown room type",
			cfg:     []RoomConfig{{RoomTypeID: 99, SensorTypeIDs: []int{1}}},
			wantErr: ErrUnknownRoomType,
		},
		{
			name:    "room without sensors",
			cfg:     []RoomConfig{{RoomTypeID: 3, SensorTypeIDs: nil}},
			wantErr: ErrNoSensors,
		},
		{
			name:    "unknown sensor type",
			cfg:     []RoomConfig{{RoomTypeID: 3, SensorTypeIDs: []int{1, 42}}},
			wantErr: ErrUnknownSensorType,
		},
		{
			name: "error in later room surfaces",
			cfg: []RoomConfig{
				{RoomTypeID: 3, SensorTypeIDs: []int{1}},
				{RoomTypeID: 0, SensorTypeIDs: []int{1}},
			},
			wantErr: ErrUnknownRoomType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg, cat)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
