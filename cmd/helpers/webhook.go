package helpers

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ghostci/cmd/config"
	"github.com/zinc-sig/ghostci/internal/kv"
	"github.com/zinc-sig/ghostci/internal/webhook"
)

// WebhookEnvPrefix names the environment variables read for webhook configuration.
const WebhookEnvPrefix = "GHOSTCI_WEBHOOK"

// BuildWebhookConfig builds webhook configuration from all sources.
// Precedence: env < file < json < kv < direct flags
func BuildWebhookConfig(cmd *cobra.Command, cfg *config.WebhookConfig) (map[string]any, error) {
	webhookConf, err := kv.Build(kv.Sources{
		EnvPrefix: WebhookEnvPrefix,
		JSON:      cfg.Config,
		KV:        cfg.ConfigKV,
		File:      cfg.ConfigFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}

	// Direct flags override only when set on the command line.
	flags := cmd.Flags()
	direct := []struct {
		flag, key string
		value     any
	}{
		{"webhook-url", "url", cfg.URL},
		{"webhook-method", "method", cfg.Method},
		{"webhook-auth-type", "auth_type", cfg.AuthType},
		{"webhook-auth-token", "auth_token", cfg.AuthToken},
		{"webhook-timeout", "timeout", cfg.Timeout},
		{"webhook-retries", "retries", cfg.Retries},
		{"webhook-retry-delay", "retry_delay", cfg.RetryDelay},
	}
	for _, d := range direct {
		if flags.Changed(d.flag) {
			webhookConf[d.key] = d.value
		}
	}

	return webhookConf, nil
}

// SetupWebhookSink creates the webhook sink, or nil when no URL is configured.
func SetupWebhookSink(cmd *cobra.Command, cfg *config.WebhookConfig, logger *slog.Logger) (*webhook.Sink, error) {
	configMap, err := BuildWebhookConfig(cmd, cfg)
	if err != nil {
		return nil, err
	}
	webhookConfig, retryConfig, err := webhook.ParseConfig(configMap)
	if err != nil {
		return nil, err
	}
	if webhookConfig == nil {
		return nil, nil
	}
	return webhook.NewSink(webhook.NewClient(webhookConfig, retryConfig, logger)), nil
}
