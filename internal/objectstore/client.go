// Package objectstore wraps the S3-compatible store holding the three
// medallion buckets. Reads and writes are retried a bounded number of times;
// writes overwrite by name and the store guarantees all-or-nothing object
// visibility.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ecommerce-pipeline/internal/config"
	"github.com/dvloznov/ecommerce-pipeline/internal/retry"
)

// Client is an explicitly constructed object-store handle; stages receive it
// as a parameter instead of sharing a process-wide cached connection.
type Client struct {
	mc  *minio.Client
	log zerolog.Logger
}

// New connects to the configured S3-compatible endpoint.
func New(cfg config.MinioConfig, log zerolog.Logger) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: connect to %q: %w", cfg.Endpoint, err)
	}
	return &Client{mc: mc, log: log}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("objectstore: check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("objectstore: create bucket %q: %w", bucket, err)
	}
	c.log.Info().Str("bucket", bucket).Msg("created bucket")
	return nil
}

// Put writes data under bucket/object, overwriting any previous version.
func (c *Client) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	_, err := retry.Do(ctx, retry.DefaultAttempts, IsTransient, func(ctx context.Context) (minio.UploadInfo, error) {
		return c.mc.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: contentType})
	})
	if err != nil {
		return fmt.Errorf("objectstore: put %s/%s: %w", bucket, object, err)
	}
	c.log.Debug().Str("bucket", bucket).Str("object", object).Int("bytes", len(data)).Msg("wrote object")
	return nil
}

// Get reads the full content of bucket/object.
func (c *Client) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	data, err := retry.Do(ctx, retry.DefaultAttempts, IsTransient, func(ctx context.Context) ([]byte, error) {
		obj, err := c.mc.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		defer obj.Close()
		return io.ReadAll(obj)
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: get %s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// Exists reports whether bucket/object is present. A missing bucket counts
// as a missing object, not an error.
func (c *Client) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := c.mc.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return false, nil
		}
		return false, fmt.Errorf("objectstore: stat %s/%s: %w", bucket, object, err)
	}
	return true, nil
}

// IsTransient classifies store errors for the retry combinator. Definitive
// answers from the store (missing object or bucket, denied access) and
// cancelled contexts are not worth retrying; everything else is assumed to
// be a network hiccup.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "AccessDenied", "InvalidBucketName":
		return false
	}
	return true
}
