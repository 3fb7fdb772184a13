package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/gateway/internal/core/ports"
	"github.com/storefront/gateway/internal/pkg/metrics"
)

const (
	defaultWorkers = 2
	defaultBuffer  = 1024
	drainTimeout   = 5 * time.Second
)

// RequestLog fans request records out to a fixed set of workers that persist
// them. Record never blocks: when a worker's channel is full the record is
// dropped and counted.
type RequestLog struct {
	workers []chan ports.RequestRecord
	repo    ports.RequestLogRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewRequestLog creates a RequestLog with numWorkers workers, each buffering
// up to buffer/numWorkers records. Non-positive values select the defaults.
func NewRequestLog(numWorkers, buffer int, repo ports.RequestLogRepository, log zerolog.Logger) *RequestLog {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	perWorker := buffer / numWorkers
	if perWorker < 1 {
		perWorker = 1
	}
	q := &RequestLog{
		workers: make([]chan ports.RequestRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range q.workers {
		q.workers[i] = make(chan ports.RequestRecord, perWorker)
	}
	return q
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// flushes what is already buffered and exits; Wait blocks until they have.
func (q *RequestLog) Start(ctx context.Context) {
	for i, ch := range q.workers {
		q.wg.Add(1)
		go q.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (q *RequestLog) Wait() {
	q.wg.Wait()
}

// Record enqueues rec without blocking.
func (q *RequestLog) Record(rec ports.RequestRecord) {
	idx := q.shardIndex(rec.RequestID)
	// Count before sending so a fast worker's Dec never precedes the Inc.
	depth := metrics.RequestLogQueueDepth.WithLabelValues(strconv.Itoa(idx))
	depth.Inc()
	select {
	case q.workers[idx] <- rec:
	default:
		depth.Dec()
		metrics.RequestLogDroppedTotal.Inc()
	}
}

// shardIndex spreads records across workers by request id.
func (q *RequestLog) shardIndex(requestID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(requestID))
	return int(h.Sum32() % uint32(len(q.workers)))
}

func (q *RequestLog) runWorker(ctx context.Context, id int, ch <-chan ports.RequestRecord) {
	defer q.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			q.drain(id, label, ch)
			return
		case rec := <-ch:
			metrics.RequestLogQueueDepth.WithLabelValues(label).Dec()
			q.write(ctx, id, rec)
		}
	}
}

func (q *RequestLog) drain(id int, label string, ch <-chan ports.RequestRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case rec := <-ch:
			metrics.RequestLogQueueDepth.WithLabelValues(label).Dec()
			q.write(ctx, id, rec)
		default:
			return
		}
	}
}

func (q *RequestLog) write(ctx context.Context, id int, rec ports.RequestRecord) {
	if err := q.repo.Append(ctx, rec); err != nil {
		metrics.RequestLogWriteErrorsTotal.Inc()
		q.log.Error().Err(err).
			Str("request_id", rec.RequestID).
			Int("worker_id", id).
			Msg("request log write failed")
	}
}
