// Package provision turns an approved application into real room and sensor
// rows. It owns the two allocation rules that make provisioning safe to
// repeat: globally unique room names derived from the room type's display
// name, and per-room per-kind sensor numbering that continues where the
// previous approval left off.
//
// The whole batch for one application runs inside a single transaction, so
// a failure partway through leaves no half-provisioned rooms behind.
package provision
