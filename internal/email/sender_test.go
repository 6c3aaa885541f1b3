package email

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

type stubProvider struct {
	name  string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Send(context.Context, Message) error {
	p.calls++
	return p.err
}

func TestSenderFallsOverToNextProvider(t *testing.T) {
	failing := &stubProvider{name: "ses", err: backoff.Permanent(errors.New("rejected"))}
	healthy := &stubProvider{name: "sendgrid"}
	s := &Sender{Providers: []Provider{failing, healthy}, Logger: zerolog.Nop()}

	used, err := s.Send(context.Background(), Message{To: "a@b.com", Subject: "s", Body: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != "sendgrid" {
		t.Fatalf("used provider %q, expected sendgrid", used)
	}
	if failing.calls != 1 {
		t.Fatalf("permanent failure retried %d times, expected 1 attempt", failing.calls)
	}
}

func TestSenderAllProvidersFail(t *testing.T) {
	s := &Sender{
		Providers: []Provider{
			&stubProvider{name: "ses", err: backoff.Permanent(errors.New("down"))},
			&stubProvider{name: "sendgrid", err: backoff.Permanent(errors.New("also down"))},
		},
		Logger: zerolog.Nop(),
	}

	if _, err := s.Send(context.Background(), Message{To: "a@b.com"}); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestSenderRequiresProviders(t *testing.T) {
	s := &Sender{Logger: zerolog.Nop()}
	if _, err := s.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error with no providers")
	}
}
