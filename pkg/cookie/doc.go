// Package cookie provides an HMAC-signed cookie manager with strict
// session-cookie defaults.
package cookie
