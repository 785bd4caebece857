package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"midtownwebserver/internal/domain"
)

type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	SenderEmail  string
}

type postmarkSender struct {
	client *postmark.Client
	from   string
}

// NewPostmarkSender returns a Sender backed by Postmark's transactional API.
func NewPostmarkSender(cfg PostmarkConfig) (Sender, error) {
	if cfg.ServerToken == "" {
		return nil, errors.New("postmark: server token is required")
	}
	if cfg.SenderEmail == "" {
		return nil, errors.New("postmark: sender email is required")
	}
	return &postmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		from:   cfg.SenderEmail,
	}, nil
}

func (s *postmarkSender) Send(ctx context.Context, msg Message) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: msg.HTMLBody,
		Tag:      msg.Tag,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmailDelivery, err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("%w: postmark %d: %s", domain.ErrEmailDelivery, resp.ErrorCode, resp.Message)
	}
	return nil
}
