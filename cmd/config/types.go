// Package config holds the flag values bound by the cobra commands.
package config

// RunFlags holds flags for the run command
type RunFlags struct {
	ProjectRoot string
	Stage       string
	Python      string
	TimeoutStr  string
	ReportFile  string
	Verbose     bool
	LogLevel    string
	LogFormat   string
}

// UploadConfig holds upload-related flags
type UploadConfig struct {
	Provider   string
	Config     string
	ConfigKV   []string
	ConfigFile string
	RunID      string
}

// WebhookConfig holds webhook-related flags
type WebhookConfig struct {
	// Direct configuration flags
	URL        string
	Method     string // HTTP method (GET, POST, PUT, PATCH, DELETE)
	AuthType   string
	AuthToken  string
	Timeout    string
	Retries    int
	RetryDelay string

	// Alternative configuration methods
	Config     string   // JSON string configuration
	ConfigKV   []string // Key-value pairs
	ConfigFile string   // Path to JSON config file
}
