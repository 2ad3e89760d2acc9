// Package mailer sends transactional email through Postmark, with a no-op
// sender for development environments.
package mailer
