// Package backup uploads database snapshots to S3.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/storage"
)

// PutObjectAPI is the subset of *s3.Client used by Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from the default AWS credential chain.
// An empty region defers to the environment.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Uploader writes timestamped snapshots under a bucket prefix.
type Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewUploader creates an Uploader. prefix is prepended to every object key.
func NewUploader(client PutObjectAPI, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Upload exports a snapshot from snap and stores it as
// <prefix>contacts-<UTC timestamp>.db. It returns the object key.
func (u *Uploader) Upload(ctx context.Context, snap storage.Snapshotter) (string, error) {
	if u.bucket == "" {
		return "", fmt.Errorf("backup bucket is not configured")
	}

	data, err := snap.ExportSnapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export snapshot: %w", err)
	}

	key := u.Key(u.now())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(codec.FormatSnapshot.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	slog.Info("Snapshot uploaded", "bucket", u.bucket, "key", key, "bytes", len(data))
	return key, nil
}

// Key returns the object key for a snapshot taken at t.
func (u *Uploader) Key(t time.Time) string {
	prefix := u.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + "contacts-" + t.UTC().Format("20060102T150405Z") + ".db"
}
