// Package minio provides a MinIO implementation of archive.Store.
//
// Usage:
//
//	store, err := minio.New(ctx, &archive.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "askdb-runs",
//	})
package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/askdb/askdb/internal/archive"
)

// Store is a MinIO implementation of archive.Store.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	client *miniogo.Client
	bucket string
}

// New connects to MinIO using the provided Config and returns a Store.
// It verifies the target bucket exists before returning.
func New(ctx context.Context, cfg *archive.Config) (*Store, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("archive bucket %q does not exist", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// --- archive.Store implementation ---

// Put writes rec as a JSON object under a date-based key.
func (s *Store) Put(ctx context.Context, rec *archive.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	key := objectKey(rec)
	_, err = s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		miniogo.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to put run record %q: %w", key, err)
	}
	return nil
}

// objectKey builds a per-run key like
// runs/2026/08/26/153040.123456789.json, unique down to the nanosecond.
func objectKey(rec *archive.Record) string {
	return "runs/" + rec.CompletedAt.UTC().Format("2006/01/02/150405.000000000") + ".json"
}
