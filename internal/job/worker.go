package job

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imageforge/caption-api/internal/caption"
	"github.com/imageforge/caption-api/internal/domain"
	"github.com/imageforge/caption-api/internal/store"
)

// maxAttempts is the fixed bound on captioning calls per job. When every
// attempt fails the job terminates with the sentinel result instead.
const maxAttempts = 3

// WorkerConfig holds the tunable settings of the job worker.
type WorkerConfig struct {
	// PollInterval is how often the worker checks the queue for a job.
	PollInterval time.Duration

	// AttemptTimeout bounds each individual captioning call so a hung
	// backend cannot stall the pipeline indefinitely.
	AttemptTimeout time.Duration
}

// DefaultWorkerConfig returns a WorkerConfig with the standard defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:   2 * time.Second,
		AttemptTimeout: 60 * time.Second,
	}
}

// Worker is the single periodic poller of the job queue. Exactly one
// goroutine executes ticks, so at most one captioning call is in flight
// system-wide.
//
// The worker's in-flight list is the authoritative record of jobs that have
// been dequeued but not yet persisted. It is mutated only by the worker and
// read concurrently by status queries.
type Worker struct {
	queue     *JobQueue
	captioner caption.Captioner
	taskStore store.TaskStore
	config    WorkerConfig
	logger    *slog.Logger

	// busy guards tick re-entrancy: a tick that comes due while the
	// previous one is still running is skipped entirely, never queued.
	busy atomic.Bool

	mu      sync.RWMutex
	current []*domain.CaptionRequest

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a worker draining the given queue against the given
// captioning backend, persisting terminal results to the task store.
func NewWorker(
	queue *JobQueue,
	captioner caption.Captioner,
	taskStore store.TaskStore,
	config WorkerConfig,
	logger *slog.Logger,
) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWorkerConfig().PollInterval
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = DefaultWorkerConfig().AttemptTimeout
	}

	return &Worker{
		queue:     queue,
		captioner: captioner,
		taskStore: taskStore,
		config:    config,
		logger:    logger,
		current:   make([]*domain.CaptionRequest, 0),
	}
}

// Start launches the single poller goroutine. It must be called at most
// once.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("job worker started",
		"poll_interval", w.config.PollInterval,
		"attempt_timeout", w.config.AttemptTimeout,
		"max_attempts", maxAttempts)
}

// Stop signals the poller to exit and waits for a running tick to finish.
// A dequeued job always runs to its terminal outcome; there is no
// cancellation path for in-flight work.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("job worker stopped")
}

// run is the poller loop.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
			// A tick that came due while the last one was processing is
			// dropped rather than run back-to-back.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// tick runs a single poll of the queue. The busy flag makes it a no-op when
// a previous tick is still executing.
func (w *Worker) tick(ctx context.Context) {
	if !w.busy.CompareAndSwap(false, true) {
		w.logger.Debug("previous tick still running, skipping")
		return
	}
	defer w.busy.Store(false)

	w.processJob(ctx)
}

// processJob drives one job from dequeue to terminal outcome: caption with
// bounded retries, persist the result (generated or sentinel), and drop the
// job from the in-flight list. A job is never left stuck and never dropped
// without a persisted result.
func (w *Worker) processJob(ctx context.Context) {
	request, ok := w.queue.GetJob()
	if !ok {
		w.logger.Debug("no caption requests pending")
		return
	}

	// Visible to status queries before any network work starts.
	w.addInFlight(request)

	logger := w.logger.With("request_token", request.RequestToken, "user_token", request.UserToken)
	logger.Info("processing caption request")

	result := w.generate(ctx, request, logger)

	if err := w.taskStore.AddRequest(ctx, result); err != nil {
		// The job is still terminal from the pipeline's perspective even
		// though the result may not have been durably saved.
		logger.Error("failed to persist caption result", "error", err)
	}

	w.removeInFlight(request.RequestToken)
}

// generate calls the captioning backend up to maxAttempts times with no
// inter-attempt delay. The first well-formed response wins; exhaustion
// yields the sentinel result.
func (w *Worker) generate(
	ctx context.Context,
	request *domain.CaptionRequest,
	logger *slog.Logger,
) *domain.CaptionResult {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, w.config.AttemptTimeout)
		c, err := w.captioner.Caption(attemptCtx, request.Image)
		cancel()

		if err != nil {
			logger.Warn("captioning attempt failed",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", err)
			continue
		}

		logger.Info("caption generated", "attempt", attempt)
		return domain.NewCaptionResult(request, c.Title, c.Description)
	}

	logger.Error("all captioning attempts failed, recording empty result")
	return domain.NewSentinelResult(request)
}

// InFlight reports whether the given token is currently being processed.
func (w *Worker) InFlight(requestToken string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, request := range w.current {
		if request.RequestToken == requestToken {
			return true
		}
	}
	return false
}

// InFlightSnapshot returns copies of the requests currently being processed.
// With a single worker the snapshot holds at most one entry.
func (w *Worker) InFlightSnapshot() []domain.CaptionRequest {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snapshot := make([]domain.CaptionRequest, 0, len(w.current))
	for _, request := range w.current {
		snapshot = append(snapshot, *request)
	}
	return snapshot
}

func (w *Worker) addInFlight(request *domain.CaptionRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = append(w.current, request)
}

func (w *Worker) removeInFlight(requestToken string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, request := range w.current {
		if request.RequestToken == requestToken {
			w.current = append(w.current[:i], w.current[i+1:]...)
			return
		}
	}
}
