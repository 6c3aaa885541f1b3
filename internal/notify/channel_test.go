package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubUserSettings struct {
	webhook    string
	webhookErr error
	phone      string
	email      string
}

func (s stubUserSettings) WebhookURL(context.Context, string, string) (string, error) {
	return s.webhook, s.webhookErr
}

func (s stubUserSettings) PhoneNumber(context.Context, string) (string, error) {
	return s.phone, nil
}

func (s stubUserSettings) EmailAddress(context.Context, string) (string, error) {
	return s.email, nil
}

func TestWebhookChannelPostsPayload(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &WebhookChannel{ChannelID: "slack", Settings: stubUserSettings{webhook: srv.URL}}
	result, err := c.Send(context.Background(), "u1", "alert", "Disk full", "Volume /data is at 95%",
		map[string]any{"volume": "/data"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status, _ := result["status"].(string); status == "" {
		t.Fatalf("result missing status: %v", result)
	}
	if received["title"] != "Disk full" || received["type"] != "alert" {
		t.Fatalf("unexpected webhook payload: %v", received)
	}
	if received["payload"].(map[string]any)["volume"] != "/data" {
		t.Fatalf("payload not forwarded: %v", received["payload"])
	}
}

func TestWebhookChannelErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := &WebhookChannel{ChannelID: "telegram", Settings: stubUserSettings{webhook: srv.URL}}
	_, err := c.Send(context.Background(), "u1", "alert", "T", "M", nil)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error %q does not carry the response status", err)
	}
}

func TestWebhookChannelMissingConfiguration(t *testing.T) {
	c := &WebhookChannel{
		ChannelID: "telegram",
		Settings:  stubUserSettings{webhookErr: errors.New("no telegram webhook configured for user u1")},
	}
	if _, err := c.Send(context.Background(), "u1", "alert", "T", "M", nil); err == nil {
		t.Fatal("expected error when the user has no webhook configured")
	}
}

func TestSMSChannelSends(t *testing.T) {
	var gotPath, gotKey string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode sms body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := &SMSChannel{GatewayURL: srv.URL, APIKey: "k1", Settings: stubUserSettings{phone: "+4712345678"}}
	result, err := c.Send(context.Background(), "u1", "alert", "Login", "New sign-in detected", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/messages" {
		t.Fatalf("posted to %q, expected /messages", gotPath)
	}
	if gotKey != "k1" {
		t.Fatalf("api key header=%q, expected k1", gotKey)
	}
	if body["to"] != "+4712345678" {
		t.Fatalf("sms recipient=%v, expected the user's number", body["to"])
	}
	if result["to"] != "+4712345678" {
		t.Fatalf("result missing recipient: %v", result)
	}
}

func TestSMSChannelGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &SMSChannel{GatewayURL: srv.URL, Settings: stubUserSettings{phone: "+4712345678"}}
	_, err := c.Send(context.Background(), "u1", "alert", "T", "M", nil)
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error %q does not carry the response status", err)
	}
}
