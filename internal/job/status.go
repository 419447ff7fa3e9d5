package job

import (
	"github.com/imageforge/caption-api/internal/domain"
)

// StatusResolver answers status queries for a request token by reconciling
// the two independently mutated structures that hold live pipeline state:
// the queue's token index and the worker's in-flight list.
//
// The queue alone cannot distinguish "currently generating" from "finished";
// it reports Finished=true for any token it no longer indexes, so the
// in-flight list must always be consulted as well.
type StatusResolver struct {
	queue  *JobQueue
	worker *Worker
}

// NewStatusResolver creates a resolver over the given queue and worker.
func NewStatusResolver(queue *JobQueue, worker *Worker) *StatusResolver {
	return &StatusResolver{
		queue:  queue,
		worker: worker,
	}
}

// Resolve returns the externally observable state of the token:
//   - still queued: Finished=false, Index = jobs strictly ahead
//   - dequeued but in flight: Finished=false, Index=0
//   - absent from both: Finished=true, Index=0. The result, generated or
//     sentinel, is retrievable from the task store (or the token was never
//     issued).
func (r *StatusResolver) Resolve(requestToken string) domain.RequestQueryResult {
	status := r.queue.GetJobStatus(requestToken)
	if status.Finished && r.worker.InFlight(requestToken) {
		return domain.RequestQueryResult{Finished: false, Index: 0}
	}
	return status
}
