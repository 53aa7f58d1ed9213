package webhook

import (
	"fmt"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	config := &RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}

	tests := []struct {
		name    string
		attempt int
		base    time.Duration
	}{
		{name: "no backoff for attempt 0", attempt: 0, base: 0},
		{name: "first retry", attempt: 1, base: 100 * time.Millisecond},
		{name: "second retry", attempt: 2, base: 200 * time.Millisecond},
		{name: "third retry", attempt: 3, base: 400 * time.Millisecond},
		{name: "capped at max delay", attempt: 10, base: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := calculateBackoff(tt.attempt, config)
			lo, hi := tt.base*9/10, tt.base*11/10
			if delay < lo || delay > hi {
				t.Errorf("calculateBackoff(%d) = %v, want within [%v, %v]", tt.attempt, delay, lo, hi)
			}
		})
	}
}

func TestCalculateBackoffUnsetFields(t *testing.T) {
	config := &RetryConfig{InitialDelay: 100 * time.Millisecond}
	delay := calculateBackoff(4, config)
	if delay < 90*time.Millisecond || delay > 110*time.Millisecond {
		t.Errorf("zero multiplier should hold the delay constant, got %v", delay)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := map[int]bool{
		200: false, 204: false, 400: false, 401: false, 404: false,
		408: true, 429: true, 500: true, 501: false, 502: true, 503: true, 504: true,
	}
	for code, want := range tests {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			if got := isRetryableStatus(code); got != want {
				t.Errorf("isRetryableStatus(%d) = %v; want %v", code, got, want)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, retry, err := ParseConfig(map[string]any{
		"url":         "https://ci.example.com/hook",
		"method":      "put",
		"auth_type":   "bearer",
		"auth_token":  "s3cret",
		"timeout":     "10s",
		"retry_delay": "250ms",
		"retries":     float64(5),
		"headers":     map[string]any{"X-Run": "nightly"},
	})
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.Method != "PUT" || cfg.AuthType != "bearer" || cfg.AuthToken != "s3cret" || cfg.Timeout != 10*time.Second {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Headers["X-Run"] != "nightly" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if retry.MaxRetries != 5 || retry.InitialDelay != 250*time.Millisecond || retry.MaxDelay != 30*time.Second {
		t.Errorf("retry = %+v", retry)
	}
}

func TestParseConfigDefaultsAndErrors(t *testing.T) {
	cfg, retry, err := ParseConfig(map[string]any{})
	if err != nil || cfg != nil || retry != nil {
		t.Fatalf("empty config should disable the webhook, got %v %v %v", cfg, retry, err)
	}

	cfg, retry, err = ParseConfig(map[string]any{"url": "http://hook"})
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.Method != "POST" || cfg.AuthType != "none" || cfg.Timeout != 30*time.Second || retry.MaxRetries != 3 {
		t.Errorf("defaults not applied: %+v %+v", cfg, retry)
	}

	bad := []map[string]any{
		{"url": "http://hook", "timeout": "soon"},
		{"url": "http://hook", "retry_delay": "-"},
		{"url": "http://hook", "auth_type": "basic"},
		{"url": "http://hook", "retries": -1},
	}
	for _, m := range bad {
		if _, _, err := ParseConfig(m); err == nil {
			t.Errorf("ParseConfig(%v) expected error", m)
		}
	}
}
