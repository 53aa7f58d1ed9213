package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/zinc-sig/ghostci/internal/report"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	name      string
	uploadErr error
	uploads   []mockUpload
}

type mockUpload struct {
	content    string
	size       int64
	remotePath string
}

func (m *MockProvider) Name() string                   { return m.name }
func (m *MockProvider) Configure(map[string]any) error { return nil }

func (m *MockProvider) Upload(_ context.Context, reader io.Reader, size int64, remotePath string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.uploads = append(m.uploads, mockUpload{content: string(content), size: size, remotePath: remotePath})
	return nil
}

func TestProviderRegistry(t *testing.T) {
	RegisterProvider("test-provider", func() Provider {
		return &MockProvider{name: "test-provider"}
	})

	provider, err := NewProvider("test-provider")
	if err != nil {
		t.Fatalf("Failed to create registered provider: %v", err)
	}
	if provider.Name() != "test-provider" {
		t.Errorf("Expected provider name test-provider, got %s", provider.Name())
	}

	if _, err := NewProvider("unknown-provider"); err == nil {
		t.Error("Expected error for unknown provider, got nil")
	}

	minio, err := NewProvider("minio")
	if err != nil || minio.Name() != "minio" {
		t.Errorf("minio provider not registered: %v", err)
	}
}

func TestSinkPublish(t *testing.T) {
	provider := &MockProvider{name: "mock"}
	sink := NewSink(provider, "run-42", "test-report.json")

	data := []byte(`{"summary":{}}`)
	if err := sink.Publish(context.Background(), &report.Report{}, data); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if sink.Name() != "upload:mock" {
		t.Errorf("Name() = %q", sink.Name())
	}
	if len(provider.uploads) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(provider.uploads))
	}
	got := provider.uploads[0]
	if got.remotePath != "run-42/test-report.json" {
		t.Errorf("remote path = %q", got.remotePath)
	}
	if got.content != string(data) || got.size != int64(len(data)) {
		t.Errorf("upload = %+v", got)
	}
}

func TestSinkGeneratesRunID(t *testing.T) {
	sink := NewSink(&MockProvider{name: "mock"}, "", "")
	runID, file, ok := strings.Cut(sink.RemotePath(), "/")
	if !ok || file != report.DefaultFilename {
		t.Fatalf("RemotePath() = %q", sink.RemotePath())
	}
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("run id %q is not a UUID: %v", runID, err)
	}
}

func TestSinkPublishError(t *testing.T) {
	sink := NewSink(&MockProvider{name: "mock", uploadErr: errors.New("denied")}, "r", "report.json")
	err := sink.Publish(context.Background(), &report.Report{}, []byte("{}"))
	if err == nil || !strings.Contains(err.Error(), "r/report.json") {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}

func TestMinioProviderEndpoint(t *testing.T) {
	tests := []struct {
		name         string
		endpoint     string
		secure       bool
		wantEndpoint string
		wantSecure   bool
		wantErr      bool
	}{
		{name: "http protocol", endpoint: "http://localhost:9000", secure: true, wantEndpoint: "localhost:9000", wantSecure: false},
		{name: "https protocol", endpoint: "https://s3.amazonaws.com", secure: false, wantEndpoint: "s3.amazonaws.com", wantSecure: true},
		{name: "no protocol keeps secure", endpoint: "localhost:9000", secure: true, wantEndpoint: "localhost:9000", wantSecure: true},
		{name: "no protocol explicit insecure", endpoint: "localhost:9000", secure: false, wantEndpoint: "localhost:9000", wantSecure: false},
		{name: "protocol only", endpoint: "http://", wantErr: true},
		{name: "unsupported scheme", endpoint: "ftp://host", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, secure, err := parseEndpoint(tt.endpoint, tt.secure)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if endpoint != tt.wantEndpoint || secure != tt.wantSecure {
				t.Errorf("parseEndpoint() = %q, %v; want %q, %v", endpoint, secure, tt.wantEndpoint, tt.wantSecure)
			}
		})
	}
}

func TestMinioProviderConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		errMsg string
	}{
		{name: "missing endpoint", config: map[string]any{}, errMsg: "endpoint is required"},
		{
			name:   "missing access_key",
			config: map[string]any{"endpoint": "localhost:9000"},
			errMsg: "access_key is required",
		},
		{
			name:   "missing secret_key",
			config: map[string]any{"endpoint": "localhost:9000", "access_key": "minioadmin"},
			errMsg: "secret_key is required",
		},
		{
			name:   "missing bucket",
			config: map[string]any{"endpoint": "localhost:9000", "access_key": "minioadmin", "secret_key": "minioadmin"},
			errMsg: "bucket is required",
		},
		{
			name:   "invalid endpoint URL",
			config: map[string]any{"endpoint": "http://", "access_key": "a", "secret_key": "b", "bucket": "test"},
			errMsg: "invalid endpoint URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMinioProvider().Configure(tt.config)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestMinioProviderConfigure(t *testing.T) {
	provider := NewMinioProvider()
	err := provider.Configure(map[string]any{
		"endpoint":   "http://localhost:9000",
		"access_key": "minioadmin",
		"secret_key": "minioadmin",
		"bucket":     "reports",
		"prefix":     "/ci/",
	})
	if err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	if got := provider.ObjectName("run/test-report.json"); got != "ci/run/test-report.json" {
		t.Errorf("ObjectName() = %q", got)
	}
}

func TestMinioProviderUploadUnconfigured(t *testing.T) {
	err := NewMinioProvider().Upload(context.Background(), strings.NewReader("x"), 1, "a.json")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}
}
