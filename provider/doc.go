// Package provider abstracts identity systems behind a single Adapter
// interface. Four adapters ship in the box: the first-party local adapter
// with cookie-backed opaque sessions, Clerk, Cloudflare Access, and AWS
// Cognito. The Factory picks and memoizes one based on configuration, and
// Protect wraps HTTP handlers with route guarding backed by whichever
// adapter is active.
//
// External adapters provision local user records just in time, so the rest
// of the application always works with the same User type regardless of who
// authenticated the request.
package provider
