// Package worker provides an asynchronous worker pool for persisting
// reconstructed transcripts using the provided storage.Driver and announcing
// newly stored ones on the provided eventstream.Publisher.
//
// The pool decouples storage from the API's request path so that a
// reconstruction response never waits on the database or the event stream.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/restream/pkg/eventstream"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Transcript *storage.Transcript
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting transcripts.
	Driver storage.Driver

	// Publisher is the optional event stream for stored transcripts.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Transcript == nil {
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"hash", job.Transcript.Hash,
			"source", job.Transcript.Source,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"hash", job.Transcript.Hash,
			"source", job.Transcript.Source,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", "worker_id", id)
}

// processJob stores the transcript and, when it was new, publishes an event.
// Publishing failures are logged and never undo the stored record.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()
	t := job.Transcript

	isNew, err := p.config.Driver.Put(ctx, t)
	if err != nil {
		p.logger.Error("async transcript storage failed",
			"hash", t.Hash,
			"error", err,
		)
		return
	}

	if !isNew {
		p.logger.Debug("transcript already stored", "hash", t.Hash)
		return
	}

	p.logger.Info("transcript stored",
		"hash", t.Hash,
		"provider", t.Provider,
		"chunks", t.ChunkCount,
		"errors", t.ErrorCount,
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewTranscriptStoredEvent(t)
	if err := p.config.Publisher.PublishTranscript(ctx, event); err != nil {
		p.logger.Warn("failed to publish transcript event",
			"hash", t.Hash,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("published transcript event",
		"hash", t.Hash,
		"event_id", event.EventID,
	)
}
