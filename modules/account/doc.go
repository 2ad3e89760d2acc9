// Package account mounts a JSON HTTP API for registration, login, password
// lifecycle, and profile management on top of the auth service, with
// first-party sessions carried in signed cookies.
package account
