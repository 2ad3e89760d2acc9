package mailer

import "errors"

var (
	ErrMissingServerToken = errors.New("mailer: missing postmark server token")
	ErrMissingFromEmail   = errors.New("mailer: missing from email")
	ErrSendFailed         = errors.New("mailer: failed to send email")
)
