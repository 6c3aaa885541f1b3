package notify

import (
	"context"
	"time"
)

// Notification is one persisted in-app record.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Message   string
	Payload   map[string]any
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Handler is the single capability every delivery channel implements.
// The orchestrator treats the call as synchronous; whether a transport
// defers work internally is its own business.
type Handler interface {
	Send(ctx context.Context, userID, typ, title, message string, payload map[string]any) (map[string]any, error)
}

// Outcome is the per-channel result of a batch dispatch.
type Outcome struct {
	Success bool           `json:"success"`
	Result  map[string]any `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Descriptor carries the availability metadata the UI and orchestrator use
// to decide whether a channel can be offered or enabled.
type Descriptor struct {
	ID string `json:"id"`
	// AlwaysAvailable channels need no global credentials (in-app, email).
	AlwaysAvailable bool `json:"always_available"`
	// UserConfigurable channels only need per-user settings (chat webhooks).
	UserConfigurable bool `json:"user_configurable"`
}

// Repository persists and reads in-app notification records.
type Repository interface {
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
}

// Settings is the externally owned, read-only configuration surface. It is
// consulted at dispatch time, never cached here.
type Settings interface {
	DefaultChannels() []string
	ChannelEnabled(id string) bool
}

// UserSettings resolves per-user delivery targets for user-configurable
// channels. Backed by the platform's settings storage, out of scope here.
type UserSettings interface {
	WebhookURL(ctx context.Context, userID, channelID string) (string, error)
	PhoneNumber(ctx context.Context, userID string) (string, error)
	EmailAddress(ctx context.Context, userID string) (string, error)
}
