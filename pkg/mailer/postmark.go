package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// Config holds Postmark credentials and sender identity.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	FromEmail    string `env:"MAILER_FROM_EMAIL"`
	FromName     string `env:"MAILER_FROM_NAME" envDefault:""`
}

// PostmarkSender delivers email through the Postmark API.
type PostmarkSender struct {
	client *postmark.Client
	from   string
}

var _ Sender = (*PostmarkSender)(nil)

// NewPostmarkSender creates a Postmark-backed Sender.
func NewPostmarkSender(cfg Config) (*PostmarkSender, error) {
	if cfg.ServerToken == "" {
		return nil, ErrMissingServerToken
	}
	if cfg.FromEmail == "" {
		return nil, ErrMissingFromEmail
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		from:   from,
	}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, email Email) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       email.To,
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
		Tag:      email.Tag,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode != 0 {
		return fmt.Errorf("%w: %s (code %d)", ErrSendFailed, resp.Message, resp.ErrorCode)
	}
	return nil
}
