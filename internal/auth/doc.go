// Package auth provides authentication for the SmartDom backend.
//
// It implements a two-tier account model (user, admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens carrying the admin flag
//   - Opaque refresh tokens stored hashed, rotated on every use
//
// Users own their rooms and applications; admins review applications and
// see everything. There is no per-room grant model: ownership of a room is
// the access boundary.
package auth
