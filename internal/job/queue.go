package job

import (
	"log/slog"
	"sync"

	"github.com/imageforge/caption-api/internal/domain"
)

// JobQueue is a FIFO queue of caption requests with a lookup index by
// request token. Multiple producers may enqueue concurrently with the single
// worker dequeuing; the FIFO and the index always mutate together under one
// lock, so no caller can observe one updated without the other.
type JobQueue struct {
	mu     sync.Mutex
	queue  []*domain.CaptionRequest
	index  map[string]*domain.CaptionRequest
	logger *slog.Logger
}

// NewJobQueue creates an empty job queue.
func NewJobQueue(logger *slog.Logger) *JobQueue {
	return &JobQueue{
		queue:  make([]*domain.CaptionRequest, 0),
		index:  make(map[string]*domain.CaptionRequest),
		logger: logger,
	}
}

// AddJob mints a fresh request token for the request, overwriting any
// caller-supplied value, appends the request in FIFO order, and indexes it.
// The token is assigned before the request becomes visible anywhere and is
// never mutated afterwards.
// Returns the minted token.
func (q *JobQueue) AddJob(request *domain.CaptionRequest) string {
	token := domain.NewRequestToken()

	q.mu.Lock()
	request.RequestToken = token
	q.queue = append(q.queue, request)
	q.index[token] = request
	depth := len(q.queue)
	q.mu.Unlock()

	q.logger.Info("caption request enqueued",
		"request_token", token,
		"user_token", request.UserToken,
		"queue_len", depth)
	return token
}

// GetJob removes and returns the FIFO head. The second return value is false
// when the queue holds nothing; an empty queue is a normal condition, not an
// error.
func (q *JobQueue) GetJob() (*domain.CaptionRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return nil, false
	}

	request := q.queue[0]
	q.queue[0] = nil // release the reference held by the backing array
	q.queue = q.queue[1:]
	delete(q.index, request.RequestToken)

	q.logger.Info("caption request dequeued",
		"request_token", request.RequestToken,
		"queue_len", len(q.queue))
	return request, true
}

// GetJobStatus reports the queue's view of the given token. A token still
// queued yields Finished=false and Index = number of requests strictly ahead
// of it (0 = next to run). A token not present in the queue, including one
// that was never issued, yields Finished=true, Index=0.
//
// This is a liveness signal only: a dequeued job may still be generating.
// Callers answering user-facing status queries must also consult the
// worker's in-flight set (see StatusResolver).
func (q *JobQueue) GetJobStatus(requestToken string) domain.RequestQueryResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.index[requestToken]; ok {
		for i, request := range q.queue {
			if request.RequestToken == requestToken {
				return domain.RequestQueryResult{Finished: false, Index: i}
			}
		}
	}

	return domain.RequestQueryResult{Finished: true, Index: 0}
}

// IsEmpty reports whether the queue holds no requests.
func (q *JobQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue) == 0
}

// Len returns the number of queued requests.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// PendingForUser returns a snapshot of the given user's still-queued
// requests in FIFO order. The returned values are copies; mutating them does
// not affect the queue.
func (q *JobQueue) PendingForUser(userToken string) []domain.CaptionRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pending []domain.CaptionRequest
	for _, request := range q.queue {
		if request.UserToken == userToken {
			pending = append(pending, *request)
		}
	}
	return pending
}
