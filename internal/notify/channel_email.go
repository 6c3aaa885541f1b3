package notify

import (
	"context"
	"fmt"

	"github.com/example/admin-platform/internal/email"
)

// EmailChannel delivers through the mail provider chain. The recipient
// address comes from the user's stored settings.
type EmailChannel struct {
	Sender   *email.Sender
	Settings UserSettings
}

func (c *EmailChannel) Send(ctx context.Context, userID, typ, title, message string, payload map[string]any) (map[string]any, error) {
	to, err := c.Settings.EmailAddress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve email address: %w", err)
	}

	data := map[string]any{"type": typ}
	for k, v := range payload {
		data[k] = v
	}
	provider, err := c.Sender.Send(ctx, email.Message{
		To:      to,
		Subject: title,
		Body:    message,
		Data:    data,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"provider": provider, "to": to}, nil
}
