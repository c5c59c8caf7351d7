package minio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askdb/askdb/internal/archive"
)

func TestObjectKey(t *testing.T) {
	rec := &archive.Record{
		Question:    "how many users?",
		CompletedAt: time.Date(2026, 8, 26, 15, 30, 40, 123456789, time.UTC),
	}

	assert.Equal(t, "runs/2026/08/26/153040.123456789.json", objectKey(rec))
}

func TestObjectKey_NormalizesToUTC(t *testing.T) {
	kyiv := time.FixedZone("EEST", 3*60*60)
	rec := &archive.Record{
		CompletedAt: time.Date(2026, 8, 26, 18, 30, 40, 0, kyiv),
	}

	assert.Equal(t, "runs/2026/08/26/153040.000000000.json", objectKey(rec))
}
