package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSChannel delivers through an external SMS gateway.
type SMSChannel struct {
	GatewayURL string
	APIKey     string
	Settings   UserSettings
	Client     *http.Client
}

func (c *SMSChannel) Send(ctx context.Context, userID, typ, title, message string, payload map[string]any) (map[string]any, error) {
	phone, err := c.Settings.PhoneNumber(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve phone number: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"to":   phone,
		"text": title + ": " + message,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GatewayURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.APIKey)

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
		return nil, fmt.Errorf("sms gateway error: %s", resp.Status)
	}
	return map[string]any{"to": phone, "status": resp.Status}, nil
}
