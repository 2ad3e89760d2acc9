// Package logger provides a small factory around log/slog with environment
// presets and shared attribute helpers.
package logger
