package store

import (
	"context"

	"github.com/imageforge/caption-api/internal/domain"
)

// TaskStore defines the interface for persisting terminal caption results
// and querying a user's caption history. It is the durable side of the job
// pipeline: once AddRequest succeeds, the in-memory request ceases to exist
// and only the stored result remains.
type TaskStore interface {
	// AddRequest persists a terminal caption result (generated or sentinel).
	// Returns ErrRequestExists if a result with the same request token has
	// already been stored.
	AddRequest(ctx context.Context, result *domain.CaptionResult) error

	// GetHistory returns all persisted results for the given user, newest
	// first. An unknown user yields an empty slice, not an error.
	GetHistory(ctx context.Context, userToken string) ([]domain.CaptionResult, error)
}
