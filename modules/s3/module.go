// Package s3 provides the "s3" storage provider, which uploads artifacts to
// any S3-compatible object store.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/registry"
)

// Scheme is the destination prefix routed to this provider.
const Scheme = "s3"

// ErrNotConfigured is returned when the provider is used without an endpoint
// or credentials.
var ErrNotConfigured = errors.New("s3 storage is not configured")

// Config holds the connection settings of the object store.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	// Bucket receives destinations that do not name one.
	Bucket string
	UseSSL bool
	// PublicBaseURL, when set, turns saved locations into
	// "<PublicBaseURL>/<bucket>/<key>" instead of "s3://<bucket>/<key>".
	PublicBaseURL string
}

// objectStore is the part of the minio client this module calls.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Module implements the registry.Module interface for this package. The
// client is created on first save.
type Module struct {
	Config Config

	newStore func() (objectStore, error)
	once     sync.Once
	store    objectStore
	initErr  error

	mu      sync.Mutex
	buckets map[string]*bucketInit
}

type bucketInit struct {
	mu    sync.Mutex
	ready bool
}

func (m *Module) client() (objectStore, error) {
	m.once.Do(func() {
		newStore := m.newStore
		if newStore == nil {
			newStore = m.dial
		}
		m.store, m.initErr = newStore()
	})
	return m.store, m.initErr
}

func (m *Module) dial() (objectStore, error) {
	endpoint := strings.TrimSpace(m.Config.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrNotConfigured)
	}
	access := strings.TrimSpace(m.Config.AccessKey)
	secret := strings.TrimSpace(m.Config.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("%w: access key and secret key are required", ErrNotConfigured)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: m.Config.UseSSL,
		Region: m.region(),
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return client, nil
}

func (m *Module) region() string {
	if r := strings.TrimSpace(m.Config.Region); r != "" {
		return r
	}
	return "us-east-1"
}

// ensureBucket creates bucket on first use. Only success is remembered; a
// failed check is retried by the next save.
func (m *Module) ensureBucket(ctx context.Context, store objectStore, bucket string) error {
	m.mu.Lock()
	if m.buckets == nil {
		m.buckets = make(map[string]*bucketInit)
	}
	b, ok := m.buckets[bucket]
	if !ok {
		b = &bucketInit{}
		m.buckets[bucket] = b
	}
	m.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		return nil
	}

	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !exists {
		ctxlog.FromContext(ctx).Info("Creating bucket.", "bucket", bucket, "region", m.region())
		if err := store.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.region()}); err != nil {
			return err
		}
	}
	b.ready = true
	return nil
}

// parseDestination splits "s3://bucket/key" into its parts. A destination
// without the scheme is a key in the default bucket.
func (m *Module) parseDestination(destination string) (bucket, key string, err error) {
	rest, hasScheme := cutScheme(destination)
	if hasScheme {
		bucket, key, _ = strings.Cut(rest, "/")
	} else {
		bucket, key = strings.TrimSpace(m.Config.Bucket), rest
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("destination %q names no bucket and no default bucket is configured", destination)
	}
	if key == "" {
		return "", "", fmt.Errorf("destination %q has an empty object key", destination)
	}
	return bucket, key, nil
}

func cutScheme(destination string) (string, bool) {
	prefix := Scheme + "://"
	if len(destination) >= len(prefix) && strings.EqualFold(destination[:len(prefix)], prefix) {
		return destination[len(prefix):], true
	}
	return destination, false
}

func (m *Module) location(bucket, key string) string {
	if base := strings.TrimRight(strings.TrimSpace(m.Config.PublicBaseURL), "/"); base != "" {
		return base + "/" + bucket + "/" + key
	}
	return Scheme + "://" + bucket + "/" + key
}

// Save uploads in under destination.
func (m *Module) Save(ctx context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error) {
	if in == nil || len(in.Data) == 0 {
		return nil, fmt.Errorf("artifact is empty")
	}
	bucket, key, err := m.parseDestination(destination)
	if err != nil {
		return nil, err
	}
	store, err := m.client()
	if err != nil {
		return nil, err
	}
	if err := m.ensureBucket(ctx, store, bucket); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}

	logger := ctxlog.FromContext(ctx).With("bucket", bucket, "key", key)
	logger.Debug("Uploading artifact.", "size", in.Size(), "format", in.Format)

	info, err := store.PutObject(ctx, bucket, key, bytes.NewReader(in.Data), in.Size(), minio.PutObjectOptions{
		ContentType: contentType(in.Format),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	logger.Info("Uploaded artifact.", "etag", info.ETag)
	return &artifact.SaveResult{
		Location: m.location(bucket, key),
		Provider: "s3",
		Size:     in.Size(),
	}, nil
}

func contentType(format string) string {
	if format == "" {
		return "application/octet-stream"
	}
	return "image/" + format
}

// Register registers the provider and its scheme with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProvider("s3", m, Scheme)
}
