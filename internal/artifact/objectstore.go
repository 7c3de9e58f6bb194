package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// ObjectStoreConfig configures the S3-compatible result upload.
type ObjectStoreConfig struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Validate checks the fields needed to reach the bucket.
func (c ObjectStoreConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New(messages.ArtifactEndpointRequired)
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf(messages.ArtifactEndpointSchemeFmt, c.Endpoint)
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New(messages.ArtifactBucketRequired)
	}
	if strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return errors.New(messages.ArtifactCredentials)
	}
	return nil
}

// NewMinIOClient creates a client for cfg.Endpoint with static credentials.
func NewMinIOClient(cfg ObjectStoreConfig) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf(messages.ArtifactClientFmt, cfg.Endpoint, err)
	}
	return client, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// ObjectStore is the subset of *minio.Client used for uploads.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	PutObject(ctx context.Context, bucket string, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// PackageNamer resolves the Move package name of a directory.
type PackageNamer interface {
	Load(dir string) (*manifest.Manifest, error)
}

// ObjectStoreWriter uploads result documents to <prefix>/<package>/publish-result.<network>.json.
type ObjectStoreWriter struct {
	Store    ObjectStore
	Bucket   string
	Prefix   string
	Packages PackageNamer
}

// NewObjectStoreWriter returns a writer backed by store that names objects after the
// package declared in each Move.toml.
func NewObjectStoreWriter(store ObjectStore, bucket string, prefix string) *ObjectStoreWriter {
	return &ObjectStoreWriter{
		Store:    store,
		Bucket:   bucket,
		Prefix:   strings.Trim(prefix, "/"),
		Packages: manifest.NewStore(nil),
	}
}

// Key returns the object key for packageName on network.
func (w *ObjectStoreWriter) Key(packageName string, network string) string {
	if w.Prefix == "" {
		return path.Join(packageName, FileName(network))
	}
	return path.Join(w.Prefix, packageName, FileName(network))
}

// CheckBucket reports an error when the configured bucket is missing.
func (w *ObjectStoreWriter) CheckBucket(ctx context.Context) error {
	exists, err := w.Store.BucketExists(ctx, w.Bucket)
	if err != nil {
		return fmt.Errorf(messages.ArtifactBucketCheckFmt, w.Bucket, err)
	}
	if !exists {
		return fmt.Errorf(messages.ArtifactBucketMissingFmt, w.Bucket)
	}
	return nil
}

// Write implements Writer.
func (w *ObjectStoreWriter) Write(ctx context.Context, dir string, network string, doc map[string]any) error {
	if err := validate(dir, network); err != nil {
		return err
	}
	if strings.TrimSpace(w.Bucket) == "" {
		return errors.New(messages.ArtifactBucketRequired)
	}
	m, err := w.Packages.Load(dir)
	if err != nil {
		return fmt.Errorf(messages.ArtifactPackageNameFmt, dir, err)
	}
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf(messages.ArtifactEncodeFmt, dir, err)
	}
	key := w.Key(m.Package.Name, network)
	putCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	_, err = w.Store.PutObject(putCtx, w.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf(messages.ArtifactUploadFmt, w.Bucket, key, err)
	}
	return nil
}
