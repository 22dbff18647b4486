package analytics

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/enrichment"
	"Shortly-Backend/internal/repository"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ClickData is the synchronously-built skeleton of a click event. Only
// cheap fields are filled on the hot path; enrichment happens in the
// workers.
type ClickData struct {
	Code          string
	VariantServed *string
	ClientID      string
	IPAddress     *string
	UserAgent     *string
	Referer       *string
	ClickedAt     time.Time
}

// ClientID derives the uniqueness-counting identifier from the source
// IP. The raw address never serves as the identifier itself.
func ClientID(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:16])
}

// RecorderConfig holds configuration for the click recorder.
type RecorderConfig struct {
	WorkerCount     int           // number of worker goroutines
	BufferSize      int           // size of the job queue buffer
	RetryAttempts   int           // persistence attempts per event
	RetryDelay      time.Duration // base delay between retries
	ShutdownTimeout time.Duration // time to wait for graceful shutdown
}

// DefaultRecorderConfig returns sensible default configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Recorder persists enriched click events off the redirect hot path.
// Submission never blocks: when the queue is full the event is dropped
// and counted, trading analytics completeness for redirect latency.
type Recorder struct {
	config   RecorderConfig
	storage  repository.Storage
	enricher *enrichment.Enricher
	log      *zap.Logger
	jobQueue chan *ClickData
	dropped  atomic.Int64
	failed   atomic.Int64
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

func NewRecorder(storage repository.Storage, enricher *enrichment.Enricher, log *zap.Logger, config RecorderConfig) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		config:   config,
		storage:  storage,
		enricher: enricher,
		log:      log,
		jobQueue: make(chan *ClickData, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recorder already started")
	}

	r.log.Info("starting click recorder",
		zap.Int("workers", r.config.WorkerCount),
		zap.Int("buffer_size", r.config.BufferSize),
		zap.Int("retry_attempts", r.config.RetryAttempts),
	)

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	return nil
}

// Stop gracefully shuts down the recorder, draining queued events until
// the shutdown timeout.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return fmt.Errorf("recorder not started")
	}

	r.log.Info("stopping click recorder", zap.Int("queued", len(r.jobQueue)))

	// Flip started before closing: Submit checks it under the read lock,
	// so once the write lock drops no send on the closed queue is
	// possible. The lock is released before waiting so that concurrent
	// Submit calls drop immediately instead of blocking on the drain.
	r.started = false
	close(r.jobQueue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		r.log.Info("click recorder stopped gracefully")
	case <-time.After(r.config.ShutdownTimeout):
		r.cancel()
		r.log.Warn("click recorder shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	return nil
}

// Submit queues a click for asynchronous processing. It is
// fire-and-forget by contract: a full queue or a stopped recorder drops
// the event, increments a counter and returns without signaling the
// caller.
func (r *Recorder) Submit(click *ClickData) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started {
		r.dropped.Add(1)
		r.log.Warn("click submitted before recorder start, dropping", zap.String("code", click.Code))
		return
	}

	select {
	case r.jobQueue <- click:
	default:
		r.dropped.Add(1)
		r.log.Warn("click queue full, dropping event",
			zap.String("code", click.Code),
			zap.Int64("dropped_total", r.dropped.Load()),
		)
	}
}

// worker drains the queue, enriching and persisting each event.
func (r *Recorder) worker(workerID int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", workerID))
	log.Debug("click worker started")

	for click := range r.jobQueue {
		r.processClick(log, click)
	}

	log.Debug("click worker stopped")
}

// processClick enriches and persists one event. Enrichment failure is
// absorbed: the event is stored with nil enrichment fields rather than
// dropped. Persistence failure is retried a bounded number of times and
// then counted; there is no durable retry queue.
func (r *Recorder) processClick(log *zap.Logger, click *ClickData) {
	event := &domain.ClickEvent{
		ShortLinkCode: click.Code,
		ClickedAt:     click.ClickedAt,
		ClientID:      click.ClientID,
		IPAddress:     click.IPAddress,
		UserAgent:     click.UserAgent,
		Referer:       click.Referer,
		VariantServed: click.VariantServed,
	}

	if r.enricher != nil {
		var ua, ip string
		if click.UserAgent != nil {
			ua = *click.UserAgent
		}
		if click.IPAddress != nil {
			ip = *click.IPAddress
		}
		enriched := r.enricher.Enrich(ua, ip)
		event.Device = enriched.Device
		event.Browser = enriched.Browser
		event.OS = enriched.OS
		event.Country = enriched.Country
		event.City = enriched.City
	}

	var lastErr error
	for attempt := 1; attempt <= r.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := r.storage.AppendClick(ctx, event)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Info("click persisted after retry",
					zap.String("code", click.Code),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		log.Warn("click persistence failed",
			zap.String("code", click.Code),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == r.config.RetryAttempts {
			break
		}

		delay := r.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-r.ctx.Done():
			log.Info("recorder shutdown during retry delay")
			return
		}
	}

	// Acceptable loss under the best-effort analytics contract.
	r.failed.Add(1)
	log.Error("click lost after all retries",
		zap.String("code", click.Code),
		zap.Int("attempts", r.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

// Stats returns recorder counters for observability.
func (r *Recorder) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"started":        r.started,
		"queue_length":   len(r.jobQueue),
		"queue_capacity": cap(r.jobQueue),
		"worker_count":   r.config.WorkerCount,
		"dropped_events": r.dropped.Load(),
		"failed_events":  r.failed.Load(),
	}
}
