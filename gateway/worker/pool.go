// Package worker provides the asynchronous worker pool that persists
// generated turn pairs and publishes generation events.
//
// The pool decouples storage and event publishing from the gateway's
// response path so a slow database never delays a reply.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/sitesmith/pkg/eventstream"
	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/logger"
	"github.com/papercomputeco/sitesmith/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// Job is one successful generation to persist and announce.
type Job struct {
	SessionID string
	Provider  string
	Model     string

	// Prompt and Response are the user and assistant turn contents.
	Prompt   string
	Response string

	TokensUsed int
	Attempted  []string

	// StartedAt and CompletedAt bound the generation. The user turn is
	// stamped with StartedAt and the assistant turn with CompletedAt.
	StartedAt   time.Time
	CompletedAt time.Time
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the conversation store. Nil disables persistence.
	Driver storage.Driver

	// Publisher receives a generation event for every processed job.
	// Nil disables publishing.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds storage and publish calls for a single job.
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Pool processes persistence jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	// mu guards closed against concurrent Enqueue and Close.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
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

// Enqueue submits a job without blocking on the workers. When the queue is
// full, or the pool is closed, the job is processed inline on the caller's
// goroutine so no turn pair is lost. Returns true if the job was queued.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		p.logger.Warn("pool closed, processing job inline",
			"provider", job.Provider,
			"session_id", job.SessionID,
		)
		p.processJob(job)
		return false
	}

	select {
	case p.queue <- job:
		p.mu.RUnlock()
		p.logger.Debug("job queued",
			"provider", job.Provider,
			"model", job.Model,
		)
		return true
	default:
		p.mu.RUnlock()
		p.logger.Warn("queue full, processing job inline",
			"provider", job.Provider,
			"model", job.Model,
		)
		p.processJob(job)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob stores the turn pair and publishes the generation event.
// Failures are logged and discarded; the client already has its response.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	if p.config.Driver != nil && job.SessionID != "" {
		if err := p.storeTurnPair(ctx, job); err != nil {
			p.logger.Error("conversation storage failed",
				"session_id", job.SessionID,
				"provider", job.Provider,
				"error", err,
			)
			return
		}

		p.logger.Debug("conversation stored",
			"session_id", job.SessionID,
			"provider", job.Provider,
		)
	}

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewGenerationEvent(
		job.SessionID,
		job.Provider,
		job.Model,
		job.TokensUsed,
		job.Attempted,
		job.CompletedAt.Sub(job.StartedAt),
	)
	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish generation event",
			"event_id", event.EventID,
			"error", err,
		)
	}
}

// storeTurnPair appends the user turn followed by the assistant turn.
func (p *Pool) storeTurnPair(ctx context.Context, job Job) error {
	completedAt := job.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	startedAt := job.StartedAt
	if startedAt.IsZero() {
		startedAt = completedAt
	}

	user := llm.ChatTurn{
		SessionID: job.SessionID,
		Role:      llm.RoleUser,
		Content:   job.Prompt,
		CreatedAt: startedAt,
	}
	if err := p.config.Driver.Append(ctx, user); err != nil {
		return fmt.Errorf("storing user turn: %w", err)
	}

	assistant := llm.ChatTurn{
		SessionID: job.SessionID,
		Role:      llm.RoleAssistant,
		Content:   job.Response,
		CreatedAt: completedAt,
	}
	if err := p.config.Driver.Append(ctx, assistant); err != nil {
		return fmt.Errorf("storing assistant turn: %w", err)
	}

	return nil
}
