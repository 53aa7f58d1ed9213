package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/zinc-sig/ghostci/internal/report"
)

// Sink uploads each finished report under <run-id>/<filename>.
type Sink struct {
	provider Provider
	runID    string
	filename string
}

// NewSink wraps a configured provider. An empty runID gets a fresh UUID.
func NewSink(provider Provider, runID, filename string) *Sink {
	if runID == "" {
		runID = uuid.NewString()
	}
	if filename == "" {
		filename = report.DefaultFilename
	}
	return &Sink{provider: provider, runID: runID, filename: path.Base(filename)}
}

func (s *Sink) Name() string {
	return "upload:" + s.provider.Name()
}

// RemotePath is the object path handed to the provider.
func (s *Sink) RemotePath() string {
	return path.Join(s.runID, s.filename)
}

func (s *Sink) Publish(ctx context.Context, _ *report.Report, data []byte) error {
	remote := s.RemotePath()
	if err := s.provider.Upload(ctx, bytes.NewReader(data), int64(len(data)), remote); err != nil {
		return fmt.Errorf("upload report to %s: %w", remote, err)
	}
	return nil
}
