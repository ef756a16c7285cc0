// Package api implements the HTTP REST API and WebSocket server.
//
// This package provides:
//   - REST endpoints for auth, dictionaries, applications, rooms, sensors,
//     telemetry ingestion, and manual home control
//   - WebSocket hub broadcasting applied sensor readings in real time
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// Authorisation is two-tier: regular users submit applications and work with
// their own rooms; admins review applications and see everything. The access
// token carries the admin flag; refresh tokens are stored hashed and rotated
// on use.
//
// The server follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
