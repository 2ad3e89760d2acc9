package mailer

import "context"

// Email is a single transactional message.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Tag      string
}

// Sender delivers transactional email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
