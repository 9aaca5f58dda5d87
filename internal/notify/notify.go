package notify

import (
	"context"
)

// Result records one delivery attempt. It is written to the email log whether or not
// the provider accepted the message.
type Result struct {
	Success   bool
	MessageID string
	To        string
	Subject   string
	Body      string
	Err       error
}

// Notifier sends operator notifications for unhandled alerts.
type Notifier interface {
	// Enabled reports whether provider credentials are configured. When false no
	// attempt is made and no result is recorded.
	Enabled() bool
	SendAlert(ctx context.Context, alertType, message string) Result
}
