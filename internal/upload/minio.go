package upload

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/zinc-sig/ghostci/internal/kv"
)

// MinioProvider implements the Provider interface for MinIO/S3 storage
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioProvider() *MinioProvider {
	return &MinioProvider{}
}

func (m *MinioProvider) Name() string {
	return "minio"
}

// Configure builds the MinIO client. An http:// or https:// scheme on the
// endpoint decides transport security and overrides the secure key.
func (m *MinioProvider) Configure(config map[string]any) error {
	rawEndpoint, ok := kv.String(config, "endpoint")
	if !ok {
		return fmt.Errorf("minio: endpoint is required")
	}
	accessKey, ok := kv.String(config, "access_key")
	if !ok {
		return fmt.Errorf("minio: access_key is required")
	}
	secretKey, ok := kv.String(config, "secret_key")
	if !ok {
		return fmt.Errorf("minio: secret_key is required")
	}
	bucket, ok := kv.String(config, "bucket")
	if !ok {
		return fmt.Errorf("minio: bucket is required")
	}

	endpoint, secure, err := parseEndpoint(rawEndpoint, kv.BoolOr(config, "secure", true))
	if err != nil {
		return err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: kv.StringOr(config, "region", "us-east-1"),
	})
	if err != nil {
		return fmt.Errorf("minio: failed to create client: %w", err)
	}

	m.client = client
	m.bucket = bucket
	m.prefix = strings.Trim(kv.StringOr(config, "prefix", ""), "/")
	return nil
}

func parseEndpoint(raw string, secure bool) (string, bool, error) {
	if !strings.Contains(raw, "://") {
		return raw, secure, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("minio: invalid endpoint URL %q", raw)
	}
	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("minio: invalid endpoint URL %q: unsupported scheme %q", raw, u.Scheme)
	}
}

// ObjectName joins the configured prefix and remotePath into an object key.
func (m *MinioProvider) ObjectName(remotePath string) string {
	if m.prefix == "" {
		return remotePath
	}
	return path.Join(m.prefix, remotePath)
}

func (m *MinioProvider) Upload(ctx context.Context, reader io.Reader, size int64, remotePath string) error {
	if m.client == nil {
		return fmt.Errorf("minio: provider not configured")
	}

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("minio: failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("minio: bucket %s does not exist", m.bucket)
	}

	objectName := m.ObjectName(remotePath)
	opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(path.Ext(objectName))}
	if _, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, opts); err != nil {
		return fmt.Errorf("minio: failed to upload to %s: %w", objectName, err)
	}
	return nil
}
