package notify

import (
	"context"
	"fmt"
)

// DatabaseChannel delivers by writing an in-app notification record.
type DatabaseChannel struct {
	Repo Repository
}

func (c *DatabaseChannel) Send(ctx context.Context, userID, typ, title, message string, payload map[string]any) (map[string]any, error) {
	saved, err := createInApp(ctx, c.Repo, userID, typ, title, message, payload)
	if err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	return map[string]any{
		"notification_id": saved.ID,
		"created_at":      saved.CreatedAt,
	}, nil
}
