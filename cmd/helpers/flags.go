package helpers

import (
	"github.com/spf13/cobra"

	"github.com/zinc-sig/ghostci/cmd/config"
	appconfig "github.com/zinc-sig/ghostci/internal/config"
)

// SetupRunFlags adds pipeline flags to a command
func SetupRunFlags(cmd *cobra.Command, flags *config.RunFlags) {
	cmd.Flags().StringVarP(&flags.ProjectRoot, "project-root", "C", ".", "Project directory to validate")
	cmd.Flags().StringVarP(&flags.Stage, "stage", "s", "all", "Stage to run: install-deps, install-test-deps, lint, unit, integration, security or all")
	cmd.Flags().StringVar(&flags.Python, "python", "", "Python interpreter used for pip and tools (default python3)")
	cmd.Flags().StringVarP(&flags.TimeoutStr, "timeout", "t", "", "Per-command timeout (e.g., 30s, 2m; default 5m)")
	cmd.Flags().StringVar(&flags.ReportFile, "report-file", "", "Report filename relative to the project root (default test-report.json)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Stream command output and execution details")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "", "Log format: text, json")
}

// ConfigFlagValues reports which run flags were set explicitly so they can
// override the project config file.
func ConfigFlagValues(cmd *cobra.Command, flags *config.RunFlags) (appconfig.FlagValues, error) {
	changed := cmd.Flags().Changed
	values := appconfig.FlagValues{
		Python:     appconfig.StringFlag{Value: flags.Python, Set: changed("python")},
		ReportFile: appconfig.StringFlag{Value: flags.ReportFile, Set: changed("report-file")},
		Verbose:    appconfig.BoolFlag{Value: flags.Verbose, Set: changed("verbose")},
		LogLevel:   appconfig.StringFlag{Value: flags.LogLevel, Set: changed("log-level")},
		LogFormat:  appconfig.StringFlag{Value: flags.LogFormat, Set: changed("log-format")},
	}
	if changed("timeout") {
		timeout, err := ParseTimeout(flags.TimeoutStr)
		if err != nil {
			return values, err
		}
		values.Timeout = appconfig.DurationFlag{Value: timeout, Set: timeout > 0}
	}
	return values, nil
}

// SetupUploadFlags adds upload-related flags to a command
func SetupUploadFlags(cmd *cobra.Command, cfg *config.UploadConfig) {
	cmd.Flags().StringVar(&cfg.Provider, "upload-provider", "", "Upload the report with this provider (e.g., minio)")
	cmd.Flags().StringVar(&cfg.Config, "upload-config", "", "Upload configuration as JSON string")
	cmd.Flags().StringArrayVar(&cfg.ConfigKV, "upload-config-kv", nil, "Upload config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.ConfigFile, "upload-config-file", "", "Path to JSON file containing upload configuration")
	cmd.Flags().StringVar(&cfg.RunID, "upload-run-id", "", "Run identifier used in the object path (default: random UUID)")
}

// SetupWebhookFlags adds webhook-related flags to a command
func SetupWebhookFlags(cmd *cobra.Command, cfg *config.WebhookConfig) {
	cmd.Flags().StringVar(&cfg.URL, "webhook-url", "", "Webhook URL to send the report to")
	cmd.Flags().StringVar(&cfg.Method, "webhook-method", "POST", "HTTP method to use: POST, PUT, PATCH")
	cmd.Flags().StringVar(&cfg.AuthType, "webhook-auth-type", "none", "Authentication type: none, bearer, api-key")
	cmd.Flags().StringVar(&cfg.AuthToken, "webhook-auth-token", "", "Authentication token (use with --webhook-auth-type)")
	cmd.Flags().IntVar(&cfg.Retries, "webhook-retries", 3, "Maximum webhook retry attempts (0 = no retries)")
	cmd.Flags().StringVar(&cfg.RetryDelay, "webhook-retry-delay", "1s", "Initial delay between webhook retries")
	cmd.Flags().StringVar(&cfg.Timeout, "webhook-timeout", "30s", "Total timeout for webhook including retries")

	cmd.Flags().StringVar(&cfg.Config, "webhook-config", "", "Webhook configuration as JSON string")
	cmd.Flags().StringArrayVar(&cfg.ConfigKV, "webhook-config-kv", nil, "Webhook config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.ConfigFile, "webhook-config-file", "", "Path to JSON file containing webhook configuration")
}
