// Package job implements the asynchronous caption pipeline: an in-memory
// FIFO queue of caption requests, a single periodic worker that drains it
// one job at a time against the captioning backend, and the status
// resolution protocol that reconciles queued, in-flight, and finished
// state for a request token.
//
// All queue and in-flight state is process-local and volatile; a restart
// discards any job that has not yet been persisted as a result.
package job
