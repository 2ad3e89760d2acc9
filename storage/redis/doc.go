// Package redis implements session storage and distributed rate limiting on
// Redis. Sessions expire server-side via key TTLs; a per-user set indexes
// tokens for bulk sign-out.
package redis
