// Package audit persists who-changed-what entries off the request path.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/metrics"
	"construction-sales-ledger/internal/repository"
)

// Recorder queues audit entries and writes them with a fixed pool of
// workers. Record never blocks: when the queue is full the entry is dropped,
// logged and counted.
type Recorder struct {
	repo         repository.AuditRepository
	entries      chan domain.AuditEntry
	workers      int
	writeTimeout time.Duration
	now          func() time.Time

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopping bool
}

func NewRecorder(repo repository.AuditRepository, workers, queueSize int, writeTimeout time.Duration) *Recorder {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Recorder{
		repo:         repo,
		entries:      make(chan domain.AuditEntry, queueSize),
		workers:      workers,
		writeTimeout: writeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the workers. They drain the queue until Stop is called.
func (r *Recorder) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	logger.Info("Audit recorder started", "workers", r.workers, "queueSize", cap(r.entries))
}

// Stop refuses new entries, flushes what is queued and waits for the workers
// or for ctx to end.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.stopping {
		r.stopping = true
		close(r.entries)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("Audit recorder stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) Record(ctx context.Context, actorID string, action domain.AuditAction, entityType, entityID string, before, after any) {
	entry := domain.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Diff:       diff(before, after),
		CreatedAt:  r.now(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopping {
		r.drop(ctx, entry, "stopped")
		return
	}
	select {
	case r.entries <- entry:
		metrics.AuditQueueDepth.Set(float64(len(r.entries)))
	default:
		r.drop(ctx, entry, "queue_full")
	}
}

func (r *Recorder) drop(ctx context.Context, entry domain.AuditEntry, reason string) {
	metrics.AuditDropped.WithLabelValues(reason).Inc()
	logger.WarnContext(ctx, "Audit entry dropped", "reason", reason,
		"action", entry.Action, "entityType", entry.EntityType, "entityID", entry.EntityID)
}

func (r *Recorder) worker(id int) {
	defer r.wg.Done()
	logger.Debug("Audit worker started", "worker", id)

	for entry := range r.entries {
		metrics.AuditQueueDepth.Set(float64(len(r.entries)))
		r.write(entry)
	}
	logger.Debug("Audit worker stopped", "worker", id)
}

func (r *Recorder) write(entry domain.AuditEntry) {
	ctx := context.Background()
	if r.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.writeTimeout)
		defer cancel()
	}

	if err := r.repo.Append(ctx, &entry); err != nil {
		metrics.AuditDropped.WithLabelValues("write_failed").Inc()
		logger.Error("Failed to write audit entry", "error", err,
			"action", entry.Action, "entityType", entry.EntityType, "entityID", entry.EntityID)
		return
	}
	metrics.AuditWritten.Inc()
}

func diff(before, after any) string {
	b, err := json.Marshal(map[string]any{"before": before, "after": after})
	if err != nil {
		logger.Warn("Failed to encode audit diff", "error", err)
		return "{}"
	}
	return string(b)
}
