// Package postgres implements the user, session, reset token, and audit
// storage interfaces over a pgx connection pool. Schema lives in the
// migrations directory and is applied with goose.
package postgres
