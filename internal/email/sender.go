package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	Subject string
	Body    string
	Data    map[string]any
}

// Sender delivers a message through the first provider that accepts it.
// Each provider attempt is retried with exponential backoff; a provider
// returning backoff.Permanent fails over to the next provider immediately.
type Sender struct {
	Providers []Provider
	Logger    zerolog.Logger
}

// Send returns the name of the provider that accepted the message.
func (s *Sender) Send(ctx context.Context, msg Message) (string, error) {
	if len(s.Providers) == 0 {
		return "", errors.New("at least one provider required")
	}

	var lastErr error
	for _, provider := range s.Providers {
		if err := s.deliverWithProvider(ctx, provider, msg); err != nil {
			lastErr = err
			s.Logger.Warn().Err(err).Str("provider", provider.Name()).Msg("provider send failed")
			continue
		}
		return provider.Name(), nil
	}
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

func (s *Sender) deliverWithProvider(ctx context.Context, provider Provider, msg Message) error {
	op := backoff.NewExponentialBackOff()
	op.MaxElapsedTime = 5 * time.Second
	return backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return provider.Send(attemptCtx, msg)
	}, op)
}
