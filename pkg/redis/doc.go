// Package redis provides Redis connection bootstrapping with retries and
// health checks.
package redis
