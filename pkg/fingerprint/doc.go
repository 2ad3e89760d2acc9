// Package fingerprint derives a soft device fingerprint from HTTP request
// attributes, used to flag session tokens replayed from a different device.
package fingerprint
