// Package ratelimiter implements a token bucket rate limiter with pluggable
// state storage. The auth service uses it to throttle login attempts per
// email and lock out brute-force attackers.
package ratelimiter
