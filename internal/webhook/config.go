package webhook

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zinc-sig/ghostci/internal/kv"
)

const (
	DefaultMethod  = http.MethodPost
	DefaultTimeout = 30 * time.Second
)

// Config holds webhook endpoint configuration
type Config struct {
	URL       string            // Webhook endpoint URL
	Method    string            // HTTP method (default: POST)
	Headers   map[string]string // Custom headers
	Timeout   time.Duration     // Overall timeout for all retries
	AuthType  string            // none, bearer or api-key
	AuthToken string
}

type RetryConfig struct {
	MaxRetries   int           // Retry attempts after the first (default: 3)
	InitialDelay time.Duration // Delay before the first retry (default: 1s)
	MaxDelay     time.Duration // Delay cap (default: 30s)
	Multiplier   float64       // Backoff growth factor (default: 2.0)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// ParseConfig converts a merged configuration map into client settings.
// It returns nil configs when no url is set.
func ParseConfig(m map[string]any) (*Config, *RetryConfig, error) {
	url, ok := kv.String(m, "url")
	if !ok {
		return nil, nil, nil
	}

	timeout, err := durationOr(m, "timeout", DefaultTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid webhook timeout duration: %w", err)
	}

	retry := DefaultRetryConfig()
	retry.InitialDelay, err = durationOr(m, "retry_delay", retry.InitialDelay)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid webhook retry delay: %w", err)
	}
	retry.MaxRetries = kv.IntOr(m, "retries", retry.MaxRetries)
	if retry.MaxRetries < 0 {
		return nil, nil, fmt.Errorf("webhook retries must not be negative, got %d", retry.MaxRetries)
	}

	authType := strings.ToLower(kv.StringOr(m, "auth_type", "none"))
	switch authType {
	case "none", "bearer", "api-key":
	default:
		return nil, nil, fmt.Errorf("unsupported webhook auth type %q", authType)
	}

	cfg := &Config{
		URL:       url,
		Method:    strings.ToUpper(kv.StringOr(m, "method", DefaultMethod)),
		Timeout:   timeout,
		AuthType:  authType,
		AuthToken: kv.StringOr(m, "auth_token", ""),
	}
	if headers, ok := m["headers"].(map[string]any); ok {
		cfg.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			cfg.Headers[k] = fmt.Sprint(v)
		}
	}
	return cfg, retry, nil
}

func durationOr(m map[string]any, key string, def time.Duration) (time.Duration, error) {
	s, ok := kv.String(m, key)
	if !ok {
		return def, nil
	}
	return time.ParseDuration(s)
}
