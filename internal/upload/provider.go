// Package upload publishes finished reports to object storage.
package upload

import (
	"context"
	"io"
)

// Provider stores one object per Upload call.
type Provider interface {
	// Upload stores size bytes from reader at remotePath. size may be -1 when unknown.
	Upload(ctx context.Context, reader io.Reader, size int64, remotePath string) error

	// Configure sets up the provider from a flat configuration map. It must not
	// contact the remote service.
	Configure(config map[string]any) error

	Name() string
}
