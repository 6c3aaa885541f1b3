package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectWebhook = `
SELECT webhook_url FROM user_channel_settings
WHERE user_id = $1 AND channel_id = $2
`

const selectContact = `
SELECT phone_number, email_address FROM user_contacts
WHERE user_id = $1
`

// PostgresUserSettings reads per-user delivery targets from the platform's
// settings tables.
type PostgresUserSettings struct {
	pool *pgxpool.Pool
}

func NewPostgresUserSettings(pool *pgxpool.Pool) *PostgresUserSettings {
	return &PostgresUserSettings{pool: pool}
}

func (s *PostgresUserSettings) WebhookURL(ctx context.Context, userID, channelID string) (string, error) {
	var url string
	err := s.pool.QueryRow(ctx, selectWebhook, userID, channelID).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("no %s webhook configured for user %s", channelID, userID)
	}
	if err != nil {
		return "", fmt.Errorf("load webhook url: %w", err)
	}
	return url, nil
}

func (s *PostgresUserSettings) PhoneNumber(ctx context.Context, userID string) (string, error) {
	phone, _, err := s.contact(ctx, userID)
	if err != nil {
		return "", err
	}
	if phone == "" {
		return "", fmt.Errorf("no phone number configured for user %s", userID)
	}
	return phone, nil
}

func (s *PostgresUserSettings) EmailAddress(ctx context.Context, userID string) (string, error) {
	_, email, err := s.contact(ctx, userID)
	if err != nil {
		return "", err
	}
	if email == "" {
		return "", fmt.Errorf("no email address configured for user %s", userID)
	}
	return email, nil
}

func (s *PostgresUserSettings) contact(ctx context.Context, userID string) (phone, email string, err error) {
	err = s.pool.QueryRow(ctx, selectContact, userID).Scan(&phone, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("no contact details for user %s", userID)
	}
	if err != nil {
		return "", "", fmt.Errorf("load contact details: %w", err)
	}
	return phone, email, nil
}
