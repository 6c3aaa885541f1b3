package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertNotification = `
INSERT INTO notifications (
id,
user_id,
type,
title,
message,
payload_json,
read_at,
created_at
) VALUES ($1,$2,$3,$4,$5,$6,NULL,$7)
RETURNING id, user_id, type, title, message, payload_json, read_at, created_at
`

const selectNotifications = `
SELECT id, user_id, type, title, message, payload_json, read_at, created_at
FROM notifications
WHERE user_id = $1 AND ($2 = false OR read_at IS NULL)
ORDER BY created_at DESC
`

const markRead = `
UPDATE notifications SET read_at = $3
WHERE id = $1 AND user_id = $2 AND read_at IS NULL
`

const markAllRead = `
UPDATE notifications SET read_at = $2
WHERE user_id = $1 AND read_at IS NULL
`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateNotification(ctx context.Context, n Notification) (Notification, error) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return Notification{}, err
	}

	row := r.pool.QueryRow(ctx, insertNotification,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
		payload,
		n.CreatedAt,
	)
	saved, err := scanNotification(row)
	if err != nil {
		return Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, selectNotifications, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, markRead, id, userID, at)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.pool.Exec(ctx, markAllRead, userID, at); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (Notification, error) {
	var (
		n           Notification
		payloadJSON []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &payloadJSON, &n.ReadAt, &n.CreatedAt); err != nil {
		return Notification{}, err
	}
	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &n.Payload); err != nil {
			return Notification{}, err
		}
	}
	return n, nil
}

var ErrNotFound = errors.New("notification not found")
