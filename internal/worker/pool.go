// Package worker provides background processing for playlist warmup jobs.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodlens/internal/core/domain"
	"github.com/ewilliams-labs/moodlens/internal/core/ports"
)

// Job represents one emotion whose playlist should be resolved ahead of
// traffic so the first request for it hits the cache.
type Job struct {
	Label domain.EmotionLabel
}

// Pool manages background workers for warmup jobs.
type Pool struct {
	source  ports.PlaylistSource
	jobs    chan Job
	wg      sync.WaitGroup
	timeout time.Duration
	logger  *log.Logger
}

// NewPool creates a worker pool with the given queue size.
func NewPool(source ports.PlaylistSource, queueSize int, logger *log.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{
		source:  source,
		jobs:    make(chan Job, queueSize),
		timeout: 15 * time.Second,
		logger:  logger.With("component", "worker"),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking. A full queue drops the job; warmup
// is best effort and the next live request resolves the playlist anyway.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn("dropping warmup job", "emotion", job.Label)
	}
}

// WarmAll queues one job per known emotion.
func (p *Pool) WarmAll() {
	for _, label := range domain.Labels {
		p.Submit(Job{Label: label})
	}
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	rec := p.source.PlaylistForEmotion(ctx, job.Label)
	if rec.Fallback {
		p.logger.Debug("warmup resolved to curated playlist", "emotion", job.Label, "reason", rec.Reason)
		return
	}
	p.logger.Debug("warmup cached playlist", "emotion", job.Label, "url", rec.URL)
}
