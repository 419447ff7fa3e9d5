package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/imageforge/caption-api/internal/domain"
	"github.com/imageforge/caption-api/internal/platform/logger"
	"github.com/imageforge/caption-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new PostgreSQL implementation of store.TaskStore.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// AddRequest implements store.TaskStore.AddRequest.
func (s *TaskStore) AddRequest(ctx context.Context, result *domain.CaptionResult) error {
	log := logger.FromContext(ctx)

	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO caption_results (request_token, user_token, image, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		result.RequestToken,
		result.UserToken,
		result.Image,
		result.Title,
		result.Description,
		time.Now().UTC(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrRequestExists
		}
		log.Error("failed to persist caption result",
			"request_token", result.RequestToken,
			"error", err)
		return fmt.Errorf("failed to persist caption result: %w", MapError(err))
	}

	return nil
}

// GetHistory implements store.TaskStore.GetHistory.
func (s *TaskStore) GetHistory(ctx context.Context, userToken string) ([]domain.CaptionResult, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT request_token, user_token, image, title, description
		FROM caption_results
		WHERE user_token = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userToken)
	if err != nil {
		log.Error("failed to query caption history", "user_token", userToken, "error", err)
		return nil, fmt.Errorf("failed to query caption history: %w", MapError(err))
	}
	defer rows.Close()

	history := make([]domain.CaptionResult, 0)
	for rows.Next() {
		var result domain.CaptionResult
		if err := rows.Scan(
			&result.RequestToken,
			&result.UserToken,
			&result.Image,
			&result.Title,
			&result.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan caption result row: %w", err)
		}
		history = append(history, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating caption result rows: %w", err)
	}

	return history, nil
}
