package helpers

import (
	"fmt"

	"github.com/zinc-sig/ghostci/cmd/config"
	"github.com/zinc-sig/ghostci/internal/kv"
	"github.com/zinc-sig/ghostci/internal/upload"
)

// UploadEnvPrefix names the environment variables read for upload configuration.
const UploadEnvPrefix = "GHOSTCI_UPLOAD_CONFIG"

// BuildUploadConfig builds upload configuration from all sources
func BuildUploadConfig(cfg *config.UploadConfig) (map[string]any, error) {
	result, err := kv.Build(kv.Sources{
		EnvPrefix: UploadEnvPrefix,
		JSON:      cfg.Config,
		KV:        cfg.ConfigKV,
		File:      cfg.ConfigFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build upload config: %w", err)
	}
	if cfg.RunID != "" {
		result["run_id"] = cfg.RunID
	}
	return result, nil
}

// SetupUploadSink creates the report upload sink, or nil when no provider is selected.
func SetupUploadSink(cfg *config.UploadConfig, reportFile string) (*upload.Sink, error) {
	if cfg.Provider == "" {
		return nil, nil
	}

	uploadConf, err := BuildUploadConfig(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := upload.NewProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload provider: %w", err)
	}
	if err := provider.Configure(uploadConf); err != nil {
		return nil, fmt.Errorf("failed to configure upload provider: %w", err)
	}

	return upload.NewSink(provider, kv.StringOr(uploadConf, "run_id", ""), reportFile), nil
}
