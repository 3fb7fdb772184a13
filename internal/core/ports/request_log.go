package ports

import (
	"context"
	"time"
)

// RequestRecord is one entry of the append-only request log.
type RequestRecord struct {
	Time      time.Time
	RequestID string
	Method    string
	Path      string
	Status    int
	Principal string
	Payload   string // mutating methods only, secrets redacted
	Latency   time.Duration
}

// RequestLogSink accepts records without blocking the caller.
type RequestLogSink interface {
	Record(rec RequestRecord)
}

// RequestLogRepository persists request records.
type RequestLogRepository interface {
	Append(ctx context.Context, rec RequestRecord) error
}
