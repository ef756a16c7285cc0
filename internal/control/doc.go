// Package control implements manual home control.
//
// Each user has a control mode: automatic (the default, devices follow
// their own logic) or manual. In manual mode the user may toggle actuators,
// which for this system means light and ventilation sensors. A toggle
// updates the stored sensor state and, when an MQTT connection is wired,
// publishes a command to smartdom/command/{room}/{kind}/{number} for the
// device to act on.
package control
