package redact

import (
	"reflect"
	"testing"
)

func TestRedactMasksSensitiveKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		denylist []string
		want     map[string]any
	}{
		{
			name:     "flat and nested",
			input:    map[string]any{"password": "secret1", "nested": map[string]any{"api_key": "abc", "ok": "fine"}},
			denylist: DefaultDenylist,
			want:     map[string]any{"password": Mask, "nested": map[string]any{"api_key": Mask, "ok": "fine"}},
		},
		{
			name:     "substring and case insensitive",
			input:    map[string]any{"UserPassword": "x", "Authorization": "Bearer y", "username": "alice"},
			denylist: DefaultDenylist,
			want:     map[string]any{"UserPassword": Mask, "Authorization": Mask, "username": "alice"},
		},
		{
			name:     "matched key masks whole subtree",
			input:    map[string]any{"secrets": map[string]any{"inner": "v"}},
			denylist: DefaultDenylist,
			want:     map[string]any{"secrets": Mask},
		},
		{
			name:     "broadcast list",
			input:    map[string]any{"api_token": "t", "csrf_token": "c", "request_id": "r"},
			denylist: BroadcastDenylist,
			want:     map[string]any{"api_token": Mask, "csrf_token": Mask, "request_id": "r"},
		},
		{
			name:     "deep nesting",
			input:    map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{"ssn": "123-45-6789", "note": "keep"}}}},
			denylist: DefaultDenylist,
			want:     map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{"ssn": Mask, "note": "keep"}}}},
		},
		{
			name:     "non-map leaves are opaque",
			input:    map[string]any{"items": []any{map[string]any{"password": "inside-slice"}}, "count": 2},
			denylist: DefaultDenylist,
			want:     map[string]any{"items": []any{map[string]any{"password": "inside-slice"}}, "count": 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Redact(tc.input, tc.denylist)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Redact()=%v, expected %v", got, tc.want)
			}
		})
	}
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"password": "secret1", "nested": map[string]any{"api_key": "abc"}}
	_ = Redact(input, DefaultDenylist)

	if input["password"] != "secret1" {
		t.Fatalf("input mutated: password=%v", input["password"])
	}
	if input["nested"].(map[string]any)["api_key"] != "abc" {
		t.Fatal("nested input mutated")
	}
}

func TestRedactIdempotent(t *testing.T) {
	input := map[string]any{
		"password": "secret1",
		"profile":  map[string]any{"credit_card": "4111", "city": "Oslo"},
	}
	once := Redact(input, DefaultDenylist)
	twice := Redact(once, DefaultDenylist)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("redaction not idempotent: %v vs %v", once, twice)
	}
}

func TestRedactNil(t *testing.T) {
	if got := Redact(nil, DefaultDenylist); got != nil {
		t.Fatalf("Redact(nil)=%v, expected nil", got)
	}
}
