// Package home provides the room and sensor domain model.
//
// Rooms are created exclusively by the provisioning engine when an
// application is approved; they are never renamed or deleted afterwards.
// Sensors belong to a room and carry a per-room, per-kind sequence number.
// The pair of SQLite repositories accepts anything that satisfies DBTX,
// so callers can run several operations inside one transaction.
//
// Per-kind behaviour (default values on provisioning, field updates on
// ingestion) is dispatched through a kind registry rather than type
// switches scattered across call sites.
package home
