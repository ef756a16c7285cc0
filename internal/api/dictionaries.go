package api

import "net/http"

// handleDictionaries returns the room and sensor type dictionaries the
// mobile client renders its application form from.
func (s *Server) handleDictionaries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"room_types":   s.catalog.RoomTypes(),
		"sensor_types": s.catalog.SensorTypes(),
	})
}
