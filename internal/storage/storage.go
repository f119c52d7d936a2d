package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one archived export document.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service keeps copies of generated export documents in remote object
// storage and hands out short-lived download URLs for them.
type Service interface {
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
