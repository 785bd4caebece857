package email

import "context"

// Sender delivers templated transactional email. Implementations must not be
// relied on for core state transitions; callers decide whether a delivery
// failure is fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To       string
	Subject  string
	HTMLBody string
	Tag      string
}
