// Package shardqueue provides a small per-key FIFO executor.  Jobs submitted
// with the same key always land on the same shard and therefore run in
// submission order; jobs for different keys may interleave freely.  It backs
// the fire-and-forget persistence path: cache puts and conversation-record
// saves are enqueued here keyed by entity id, so same-entity writes never
// reorder and a failing write never blocks the caller.
package shardqueue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// ShardExecutor runs one worker goroutine per shard, each draining a bounded
// channel of jobs.
type ShardExecutor struct {
	cfg    Config
	queues []chan Job

	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// NewShardExecutor starts cfg.Shards workers. Zero/negative knobs fall back
// to the envconfig defaults.
func NewShardExecutor(cfg Config) *ShardExecutor {
	if cfg.Shards <= 0 {
		cfg.Shards = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 20 * time.Second
	}

	ex := &ShardExecutor{
		cfg:     cfg,
		queues:  make([]chan Job, cfg.Shards),
		stopped: make(chan struct{}),
	}
	for i := range ex.queues {
		ex.queues[i] = make(chan Job, cfg.QueueSize)
		ex.wg.Add(1)
		go ex.worker(i)
	}
	return ex
}

// Submit enqueues job on the shard owning key.  It blocks up to
// cfg.EnqueueTimeout before reporting back-pressure via *QueueFullError.
func (ex *ShardExecutor) Submit(ctx context.Context, key string, job Job) error {
	select {
	case <-ex.stopped:
		return ErrExecutorClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	shard := ex.shardFor(key)
	q := ex.queues[shard]

	timer := time.NewTimer(ex.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case q <- job:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-ex.stopped:
		return ErrExecutorClosed
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(q), Capacity: cap(q)}
	}
}

// Stop signals every worker to drain its remaining queue FIFO, waits for
// them to terminate, and then returns. A job enqueued before Stop still
// runs (one attempt, retries are cut short); safe to call multiple times.
func (ex *ShardExecutor) Stop() {
	ex.stopOnce.Do(func() { close(ex.stopped) })
	ex.wg.Wait()
}

func (ex *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(ex.cfg.Shards))
}

func (ex *ShardExecutor) worker(shard int) {
	defer ex.wg.Done()
	label := labelFor(shard)
	q := ex.queues[shard]
	for {
		select {
		case <-ex.stopped:
			ex.drain(shard, q)
			return
		case job := <-q:
			queueDepth.WithLabelValues(label).Set(float64(len(q)))
			start := time.Now()
			err := ex.runWithRetry(job)
			runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
			if err != nil {
				log.Warn().Err(err).Int("shard", shard).Msg("shardqueue job failed after retries")
				if ex.cfg.ErrorHandler != nil {
					ex.cfg.ErrorHandler(err)
				}
			}
		}
	}
}

// drain runs the jobs still queued at stop time, preserving FIFO, one attempt
// each so shutdown stays bounded. A record save or cache put enqueued just
// before Stop must still land.
func (ex *ShardExecutor) drain(shard int, q <-chan Job) {
	label := labelFor(shard)
	drained := 0
	for {
		select {
		case job := <-q:
			start := time.Now()
			err := job.Run(context.Background())
			runDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
			if err != nil {
				log.Warn().Err(err).Int("shard", shard).Msg("shardqueue drain job failed")
				if ex.cfg.ErrorHandler != nil {
					ex.cfg.ErrorHandler(err)
				}
			}
			drained++
		default:
			if drained > 0 {
				log.Debug().Int("shard", shard).Int("drained", drained).Msg("shardqueue drained remaining jobs")
			}
			queueDepth.WithLabelValues(label).Set(0)
			return
		}
	}
}

// runWithRetry executes job with exponential backoff up to cfg.MaxAttempts.
// The in-flight attempt is never cancelled; Stop only cuts the sleep between
// retries short, so a stuck loop cannot outlive Stop by more than one
// interval.
func (ex *ShardExecutor) runWithRetry(job Job) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = ex.cfg.BaseBackoff
	bo.MaxInterval = ex.cfg.MaxInterval

	var err error
	for attempt := 0; ; attempt++ {
		err = job.Run(context.Background())
		if err == nil || attempt >= ex.cfg.MaxAttempts-1 {
			return err
		}
		select {
		case <-time.After(bo.NextBackOff()):
		case <-ex.stopped:
			return err
		}
	}
}
