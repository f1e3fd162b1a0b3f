// Package worker provides background persistence for analysis snapshots.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ewilliams-labs/soundmetrics/internal/core/domain"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
)

const writeTimeout = 5 * time.Second

// Job is one queued snapshot write. Exactly one of Genre or Artist is set.
type Job struct {
	Genre    *domain.GenreSnapshot
	Artist   *domain.ArtistIdentity
	Snapshot *domain.ArtistSnapshot
}

func (j Job) entity() string {
	switch {
	case j.Genre != nil:
		return "genre " + j.Genre.Genre
	case j.Artist != nil:
		return "artist " + j.Artist.ID
	}
	return "unknown"
}

// compile-time interface assertion
var _ ports.SnapshotRecorder = (*Pool)(nil)

// Pool owns the single writer goroutine in front of the snapshot store.
// Writes never block callers; failures are logged and dropped.
type Pool struct {
	store  ports.SnapshotStore
	logger *slog.Logger
	jobs   chan Job
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool with the given queue size. Call Start before use.
func NewPool(store ports.SnapshotStore, queueSize int, logger *slog.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{store: store, logger: logger, jobs: make(chan Job, queueSize)}
}

// Start launches the writer goroutine.
func (p *Pool) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for job := range p.jobs {
			p.processJob(job)
		}
	}()
}

// Stop closes the queue and waits for pending writes to drain.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// RecordGenre queues a genre snapshot.
func (p *Pool) RecordGenre(s domain.GenreSnapshot) {
	p.Submit(Job{Genre: &s})
}

// RecordArtist queues an artist identity upsert plus snapshot.
func (p *Pool) RecordArtist(a domain.ArtistIdentity, s domain.ArtistSnapshot) {
	p.Submit(Job{Artist: &a, Snapshot: &s})
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("worker: pool stopped, dropping snapshot", "entity", job.entity())
		return
	}
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn("worker: queue full, dropping snapshot", "entity", job.entity())
	}
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	switch {
	case job.Genre != nil:
		err = p.store.SaveGenreSnapshot(ctx, *job.Genre)
	case job.Artist != nil && job.Snapshot != nil:
		err = p.store.SaveArtistSnapshot(ctx, *job.Artist, *job.Snapshot)
	default:
		return
	}
	if err != nil {
		perr := &domain.PersistenceError{Entity: job.entity(), Err: err}
		p.logger.Warn("worker: snapshot write failed", "error", perr)
		return
	}
	p.logger.Debug("worker: snapshot saved", "entity", job.entity())
}
