// Package audit records security-relevant events (logins, password changes,
// suspicious activity) with enough metadata for forensic review. Events are
// written before errors propagate so failed attempts are never lost.
package audit
