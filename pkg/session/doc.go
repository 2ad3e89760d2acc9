// Package session issues and validates opaque session tokens with 30-day
// expiry, activity tracking, and bulk invalidation. Persistence is pluggable
// through the Store interface; MemoryStore is the reference implementation,
// with Postgres and Redis stores under storage/.
package session
