package catalog

import "sort"

// Kind identifies one of the fixed sensor families. The set is closed:
// there is no extensibility mechanism beyond these six.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindLight       Kind = "light"
	KindGas         Kind = "gas"
	KindHumidity    Kind = "humidity"
	KindVentilation Kind = "ventilation"
	KindMotion      Kind = "motion"
)

// SensorType is one entry of the sensor dictionary.
type SensorType struct {
	ID   int    `json:"id"`
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// Catalog is the immutable pair of reference dictionaries.
type Catalog struct {
	roomTypes   map[int]string
	sensorTypes map[int]SensorType
}

// Default returns the built-in dictionaries. Room and sensor display names
// match what the mobile client and the microcontroller firmware expect.
func Default() *Catalog {
	return &Catalog{
		roomTypes: map[int]string{
			1:  "Прихожая",
			2:  "Гостиная",
			3:  "Кухня",
			4:  "Спальня",
			5:  "Ванная",
			6:  "Туалет",
			7:  "Балкон",
			8:  "Коридор",
			9:  "Кабинет",
			10: "Детская",
		},
		sensorTypes: map[int]SensorType{
			1: {ID: 1, Kind: KindTemperature, Name: "Датчик температуры"},
			2: {ID: 2, Kind: KindLight, Name: "Датчик освещения"},
			3: {ID: 3, Kind: KindGas, Name: "Датчик газа"},
			4: {ID: 4, Kind: KindHumidity, Name: "Датчик влажности"},
			5: {ID: 5, Kind: KindVentilation, Name: "Датчик вентиляции"},
			6: {ID: 6, Kind: KindMotion, Name: "Датчик движения"},
		},
	}
}

// RoomTypeName returns the display name for a room type id.
func (c *Catalog) RoomTypeName(id int) (string, bool) {
	name, ok := c.roomTypes[id]
	return name, ok
}

// SensorType returns the dictionary entry for a sensor type id.
func (c *Catalog) SensorType(id int) (SensorType, bool) {
	st, ok := c.sensorTypes[id]
	return st, ok
}

// RoomTypes returns a copy of the room dictionary for read-only exposure.
func (c *Catalog) RoomTypes() map[int]string {
	out := make(map[int]string, len(c.roomTypes))
	for id, name := range c.roomTypes {
		out[id] = name
	}
	return out
}

// SensorTypes returns a copy of the sensor dictionary (id → display name).
func (c *Catalog) SensorTypes() map[int]string {
	out := make(map[int]string, len(c.sensorTypes))
	for id, st := range c.sensorTypes {
		out[id] = st.Name
	}
	return out
}

// RoomTypeIDs returns all room type ids in ascending order.
func (c *Catalog) RoomTypeIDs() []int {
	ids := make([]int, 0, len(c.roomTypes))
	for id := range c.roomTypes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// KindName returns the display name for a sensor kind, or the kind itself
// if it is not in the dictionary.
func (c *Catalog) KindName(k Kind) string {
	for _, st := range c.sensorTypes {
		if st.Kind == k {
			return st.Name
		}
	}
	return string(k)
}

// ValidKind reports whether k is one of the six known sensor kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindTemperature, KindLight, KindGas, KindHumidity, KindVentilation, KindMotion:
		return true
	}
	return false
}
