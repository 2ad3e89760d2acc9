package pg

import "errors"

var (
	ErrFailedToParseDBConfig    = errors.New("pg: failed to parse db config")
	ErrFailedToOpenDBConnection = errors.New("pg: failed to open db connection")
	ErrFailedToApplyMigrations  = errors.New("pg: failed to apply migrations")
	ErrMigrationPathNotProvided = errors.New("pg: migration path not provided")
	ErrMigrationsDirNotFound    = errors.New("pg: migrations directory not found")
)
