// Package archive defines the store for completed pipeline run records.
//
// Archiving is best-effort: the orchestrator hands every successful run to
// the configured Store, and a failed Put is logged, never surfaced to the
// pipeline caller.
package archive

import (
	"context"
	"time"
)

// Record captures one completed pipeline run.
type Record struct {
	Question    string    `json:"question"`
	Query       string    `json:"query"`
	Answer      string    `json:"answer"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Store is the single interface all archive backends must implement.
type Store interface {
	// Put persists one run record.
	Put(ctx context.Context, rec *Record) error
}

// Config holds all settings needed to connect to an archive backend.
type Config struct {
	// Endpoint is the host:port of the object storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Bucket is the bucket run records are written to.
	Bucket string
}
