// Package auth implements account registration, credential authentication,
// session validation, and password lifecycle management.
//
// The Service composes pluggable user and reset-token storage with the
// session manager, password hashing, breach checking, rate limiting, audit
// logging, and transactional email. Errors returned to callers carry an HTTP
// status classification so transports can map them without inspecting
// messages.
//
// Credential failures are deliberately indistinguishable: unknown emails,
// wrong passwords, and externally managed accounts all produce the same
// response, and unknown emails still burn a bcrypt comparison so timing does
// not leak account existence.
package auth
