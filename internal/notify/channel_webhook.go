package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookChannel covers the user-configurable chat integrations (telegram,
// slack and friends): the delivery target is a per-user webhook URL looked
// up at send time, so the channel needs no global credentials.
type WebhookChannel struct {
	ChannelID string
	Settings  UserSettings
	Client    *http.Client
}

func (c *WebhookChannel) Send(ctx context.Context, userID, typ, title, message string, payload map[string]any) (map[string]any, error) {
	url, err := c.Settings.WebhookURL(ctx, userID, c.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s webhook: %w", c.ChannelID, err)
	}

	body, err := json.Marshal(map[string]any{
		"type":    typ,
		"title":   title,
		"message": message,
		"payload": payload,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s webhook error: %s", c.ChannelID, resp.Status)
	}
	return map[string]any{"status": resp.Status}, nil
}
