// Package catalog holds the reference dictionaries for room and sensor
// types: fixed id → display-name tables compiled into the binary.
//
// The catalog is immutable after construction and is injected into the
// components that validate user input against it (application intake,
// provisioning). Display names are what the mobile client shows in its
// forms and what room names are derived from.
package catalog
