// Package jwks verifies externally-issued RS256 JWTs against published JSON
// Web Key Sets, with a process-wide TTL cache keyed by JWKS URL. Used for
// Cloudflare Access and AWS Cognito token validation.
package jwks
