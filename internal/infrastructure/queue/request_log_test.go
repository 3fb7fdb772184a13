package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/ports"
	"github.com/storefront/gateway/internal/pkg/metrics"
)

type memRepo struct {
	mu      sync.Mutex
	records []ports.RequestRecord
	err     error
	block   chan struct{}
}

func (r *memRepo) Append(ctx context.Context, rec ports.RequestRecord) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRequestLog_PersistsRecords(t *testing.T) {
	repo := &memRepo{}
	q := NewRequestLog(3, 30, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	for i := 0; i < 9; i++ {
		q.Record(ports.RequestRecord{RequestID: fmt.Sprintf("req-%d", i), Method: "GET", Path: "/orders"})
	}

	waitFor(t, func() bool { return repo.count() == 9 })
	cancel()
	q.Wait()
}

func TestRequestLog_RecordNeverBlocks(t *testing.T) {
	repo := &memRepo{block: make(chan struct{})}
	q := NewRequestLog(1, 2, repo, zerolog.Nop())
	// Workers not started: the buffer fills after two records.
	before := testutil.ToFloat64(metrics.RequestLogDroppedTotal)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			q.Record(ports.RequestRecord{RequestID: "same"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	if dropped := testutil.ToFloat64(metrics.RequestLogDroppedTotal) - before; dropped != 8 {
		t.Fatalf("expected 8 dropped records, got %v", dropped)
	}
}

func TestRequestLog_WriteErrorsAreCounted(t *testing.T) {
	repo := &memRepo{err: errors.New("mongo down")}
	q := NewRequestLog(1, 4, repo, zerolog.Nop())
	before := testutil.ToFloat64(metrics.RequestLogWriteErrorsTotal)

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	q.Record(ports.RequestRecord{RequestID: "r1"})

	waitFor(t, func() bool {
		return testutil.ToFloat64(metrics.RequestLogWriteErrorsTotal)-before == 1
	})
	cancel()
	q.Wait()
}

func TestRequestLog_DrainsOnShutdown(t *testing.T) {
	repo := &memRepo{}
	q := NewRequestLog(1, 8, repo, zerolog.Nop())
	for i := 0; i < 5; i++ {
		q.Record(ports.RequestRecord{RequestID: "r"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q.Start(ctx)
	q.Wait()

	if repo.count() != 5 {
		t.Fatalf("expected buffered records flushed on shutdown, got %d", repo.count())
	}
}

func TestRequestLog_QueueDepthTracksBufferedRecords(t *testing.T) {
	repo := &memRepo{}
	q := NewRequestLog(1, 2, repo, zerolog.Nop())
	depth := metrics.RequestLogQueueDepth.WithLabelValues("0")
	before := testutil.ToFloat64(depth)

	for i := 0; i < 5; i++ {
		q.Record(ports.RequestRecord{RequestID: "r"})
	}
	if got := testutil.ToFloat64(depth) - before; got != 2 {
		t.Fatalf("dropped records must not count toward depth: got %v, want 2", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	waitFor(t, func() bool { return repo.count() == 2 })
	cancel()
	q.Wait()

	if got := testutil.ToFloat64(depth); got != before {
		t.Fatalf("depth should return to %v once drained, got %v", before, got)
	}
}
