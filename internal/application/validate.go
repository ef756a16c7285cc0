package application

import (
	"fmt"

	"github.com/smartdom/smartdom-core/internal/catalog"
)

// Validate checks a requested configuration against the dictionaries.
// Every room must name a known room type and at least one known sensor type.
func Validate(cfg []RoomConfig, cat *catalog.Catalog) error {
	if len(cfg) == 0 {
		return ErrEmptyConfig
	}
	for i, rc := range cfg {
		if _, ok := cat.RoomTypeName(rc.RoomTypeID); !ok {
			return fmt.Errorf("room %d: %w: id %d", i, ErrUnknownRoomType, rc.RoomTypeID)
		}
		if len(rc.SensorTypeIDs) == 0 {
			return fmt.Errorf("room %d: %w", i, ErrNoSensors)
		}
		for _, stID := range rc.SensorTypeIDs {
			if _, ok := cat.SensorType(stID); !ok {
				return fmt.Errorf("room %d: %w: id %d", i, ErrUnknownSensorType, stID)
			}
		}
	}
	return nil
}
