package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imageforge/caption-api/internal/api/shared"
	"github.com/imageforge/caption-api/internal/caption"
	"github.com/imageforge/caption-api/internal/domain"
	"github.com/imageforge/caption-api/internal/job"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// stubCaptioner satisfies caption.Captioner for wiring a worker that never
// runs during handler tests.
type stubCaptioner struct{}

func (stubCaptioner) Caption(ctx context.Context, image string) (*caption.Caption, error) {
	return nil, errors.New("not used in handler tests")
}

// memTaskStore is an in-memory store.TaskStore for handler tests.
type memTaskStore struct {
	mu      sync.Mutex
	results []domain.CaptionResult
	err     error
}

func (m *memTaskStore) AddRequest(ctx context.Context, result *domain.CaptionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, *result)
	return nil
}

func (m *memTaskStore) GetHistory(ctx context.Context, userToken string) ([]domain.CaptionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.CaptionResult, 0)
	for _, r := range m.results {
		if r.UserToken == userToken {
			out = append(out, r)
		}
	}
	return out, nil
}

type captionTestEnv struct {
	handler   *CaptionHandler
	queue     *job.JobQueue
	worker    *job.Worker
	taskStore *memTaskStore
}

func newCaptionTestEnv(t *testing.T) *captionTestEnv {
	t.Helper()
	logger := setupTestLogger()
	queue := job.NewJobQueue(logger)
	taskStore := &memTaskStore{}
	worker := job.NewWorker(queue, stubCaptioner{}, taskStore, job.DefaultWorkerConfig(), logger)
	resolver := job.NewStatusResolver(queue, worker)

	return &captionTestEnv{
		handler:   NewCaptionHandler(queue, worker, resolver, taskStore, logger),
		queue:     queue,
		worker:    worker,
		taskStore: taskStore,
	}
}

func authedRequest(method, target string, body []byte, userToken string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if userToken != "" {
		req = req.WithContext(shared.SetUserToken(req.Context(), userToken))
	}
	return req
}

func TestEnqueueAcceptsValidImage(t *testing.T) {
	env := newCaptionTestEnv(t)

	body, err := json.Marshal(EnqueueRequest{Image: "aGVsbG8gd29ybGQ="})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.handler.Enqueue(rec, authedRequest(http.MethodPost, "/api/captions", body, "user-1"))

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp EnqueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestToken)
	assert.Nil(t, resp.ErrorMsg)

	// The accepted request is queued and next to run.
	assert.Equal(t, 1, env.queue.Len())
	status := env.queue.GetJobStatus(resp.RequestToken)
	assert.False(t, status.Finished)
	assert.Equal(t, 0, status.Index)
}

func TestEnqueueRejectsInvalidBase64(t *testing.T) {
	env := newCaptionTestEnv(t)

	body, err := json.Marshal(EnqueueRequest{Image: "!!!not-base64!!!"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.handler.Enqueue(rec, authedRequest(http.MethodPost, "/api/captions", body, "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp EnqueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.RequestToken)
	require.NotNil(t, resp.ErrorMsg)
	assert.Equal(t, "invalid base64 encoding", *resp.ErrorMsg)

	// A rejected request never reaches the queue.
	assert.True(t, env.queue.IsEmpty())
}

func TestEnqueueRejectsEmptyImage(t *testing.T) {
	env := newCaptionTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.Enqueue(rec, authedRequest(http.MethodPost, "/api/captions", []byte(`{"image": ""}`), "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, env.queue.IsEmpty())
}

func TestEnqueueRequiresAuthentication(t *testing.T) {
	env := newCaptionTestEnv(t)

	body, err := json.Marshal(EnqueueRequest{Image: "aGVsbG8="})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.handler.Enqueue(rec, authedRequest(http.MethodPost, "/api/captions", body, ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, env.queue.IsEmpty())
}

func TestEnqueueRejectsUnknownFields(t *testing.T) {
	env := newCaptionTestEnv(t)

	body := []byte(`{"image": "aGVsbG8=", "user_token": "spoofed"}`)
	rec := httptest.NewRecorder()
	env.handler.Enqueue(rec, authedRequest(http.MethodPost, "/api/captions", body, "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, env.queue.IsEmpty())
}

func statusVia(t *testing.T, env *captionTestEnv, token string) domain.RequestQueryResult {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/captions/{token}", env.handler.Status)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/captions/"+token, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status domain.RequestQueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status
}

func TestStatusReportsQueuePositions(t *testing.T) {
	env := newCaptionTestEnv(t)

	first, err := domain.NewCaptionRequest("user-1", "aGVsbG8=")
	require.NoError(t, err)
	second, err := domain.NewCaptionRequest("user-1", "aGVsbG8=")
	require.NoError(t, err)

	firstToken := env.queue.AddJob(first)
	secondToken := env.queue.AddJob(second)

	assert.Equal(t, domain.RequestQueryResult{Finished: false, Index: 0}, statusVia(t, env, firstToken))
	assert.Equal(t, domain.RequestQueryResult{Finished: false, Index: 1}, statusVia(t, env, secondToken))

	// An unknown token reads as finished.
	assert.Equal(t, domain.RequestQueryResult{Finished: true, Index: 0}, statusVia(t, env, "unknown-token"))
}

func TestHistoryMergesPendingAndFinished(t *testing.T) {
	env := newCaptionTestEnv(t)

	env.taskStore.results = []domain.CaptionResult{
		{
			RequestToken: "done-1",
			UserToken:    "user-1",
			Image:        "aW1n",
			Title:        "Quiet Harbor",
			Description:  "Fishing boats resting under a pale morning sky.",
		},
		{RequestToken: "done-other", UserToken: "user-2", Image: "aW1n", Title: "x", Description: "y"},
	}

	pending, err := domain.NewCaptionRequest("user-1", "cGVuZGluZw==")
	require.NoError(t, err)
	pendingToken := env.queue.AddJob(pending)

	rec := httptest.NewRecorder()
	env.handler.History(rec, authedRequest(http.MethodGet, "/api/captions", nil, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var history []HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)

	// Unfinished entries come first and carry no caption.
	assert.False(t, history[0].Finished)
	assert.Equal(t, pendingToken, history[0].RequestToken)
	assert.Empty(t, history[0].Title)

	assert.True(t, history[1].Finished)
	assert.Equal(t, "done-1", history[1].RequestToken)
	assert.Equal(t, "Quiet Harbor", history[1].Title)
}

func TestHistoryEmptyForNewUser(t *testing.T) {
	env := newCaptionTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.History(rec, authedRequest(http.MethodGet, "/api/captions", nil, "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	// An empty history is a JSON array, never null.
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHistoryStoreFailure(t *testing.T) {
	env := newCaptionTestEnv(t)
	env.taskStore.err = errors.New("connection reset")

	rec := httptest.NewRecorder()
	env.handler.History(rec, authedRequest(http.MethodGet, "/api/captions", nil, "user-1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
