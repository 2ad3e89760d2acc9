// Package config loads typed configuration structs from environment
// variables, with optional .env file support and per-type caching.
package config
