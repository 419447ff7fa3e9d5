package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/imageforge/caption-api/internal/api/shared"
	"github.com/imageforge/caption-api/internal/domain"
	"github.com/imageforge/caption-api/internal/job"
	"github.com/imageforge/caption-api/internal/store"
)

// CaptionHandler handles caption request submission, status queries, and
// history retrieval.
type CaptionHandler struct {
	queue     *job.JobQueue
	worker    *job.Worker
	resolver  *job.StatusResolver
	taskStore store.TaskStore
	validator *validator.Validate
	logger    *slog.Logger
}

// NewCaptionHandler creates a new CaptionHandler with the given dependencies.
func NewCaptionHandler(
	queue *job.JobQueue,
	worker *job.Worker,
	resolver *job.StatusResolver,
	taskStore store.TaskStore,
	logger *slog.Logger,
) *CaptionHandler {
	return &CaptionHandler{
		queue:     queue,
		worker:    worker,
		resolver:  resolver,
		taskStore: taskStore,
		validator: validator.New(),
		logger:    logger,
	}
}

// Enqueue handles POST /api/captions. It validates the image payload and
// appends a caption request to the job queue; a rejected request never
// reaches the queue. The response always carries {request_token, error_msg}
// with error_msg non-null exactly on rejection.
func (h *CaptionHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	userToken, ok := shared.GetUserToken(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req EnqueueRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil {
		h.logger.Warn("rejected caption request with invalid image encoding",
			"user_token", userToken)
		msg := "invalid base64 encoding"
		shared.RespondWithJSON(w, r, http.StatusBadRequest, EnqueueResponse{
			RequestToken: "",
			ErrorMsg:     &msg,
		})
		return
	}

	request, err := domain.NewCaptionRequest(userToken, req.Image)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	token := h.queue.AddJob(request)

	shared.RespondWithJSON(w, r, http.StatusAccepted, EnqueueResponse{
		RequestToken: token,
		ErrorMsg:     nil,
	})
}

// Status handles GET /api/captions/{token}. The answer reconciles the
// queue's index with the worker's in-flight list, so a job that has been
// dequeued but is still generating reports finished=false.
func (h *CaptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	requestToken := chi.URLParam(r, "token")
	if requestToken == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Request token is required")
		return
	}

	status := h.resolver.Resolve(requestToken)
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// History handles GET /api/captions. It merges the user's still-queued and
// in-flight requests (finished=false, no caption yet) with their persisted
// results, unfinished entries first.
func (h *CaptionHandler) History(w http.ResponseWriter, r *http.Request) {
	userToken, ok := shared.GetUserToken(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	history := make([]HistoryEntry, 0)

	for _, request := range h.worker.InFlightSnapshot() {
		if request.UserToken == userToken {
			history = append(history, HistoryEntry{
				Finished:     false,
				RequestToken: request.RequestToken,
				Image:        request.Image,
			})
		}
	}

	for _, request := range h.queue.PendingForUser(userToken) {
		history = append(history, HistoryEntry{
			Finished:     false,
			RequestToken: request.RequestToken,
			Image:        request.Image,
		})
	}

	finished, err := h.taskStore.GetHistory(r.Context(), userToken)
	if err != nil {
		h.logger.Error("failed to retrieve caption history", "error", err, "user_token", userToken)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	for _, result := range finished {
		history = append(history, HistoryEntry{
			Finished:     true,
			RequestToken: result.RequestToken,
			Image:        result.Image,
			Title:        result.Title,
			Description:  result.Description,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, history)
}
