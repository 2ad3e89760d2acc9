package password

import "errors"

var (
	// ErrEmptyPassword is returned when an empty password is passed to Hash.
	ErrEmptyPassword = errors.New("password: empty password")

	// ErrHashingFailed is returned when bcrypt fails to produce a hash.
	ErrHashingFailed = errors.New("password: hashing failed")
)
