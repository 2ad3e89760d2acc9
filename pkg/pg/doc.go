// Package pg wires up pgx connection pooling, goose migrations, and health
// checks for PostgreSQL-backed storage.
package pg
