package notify

import "context"

// Email is a single outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers one email. Implemented by the Resend/SMTP adapter in
// infrastructure; delivery is best-effort, callers never surface its errors
// to end users.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
