package ollama

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imageforge/caption-api/internal/caption"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "minicpm-v", setupTestLogger())
	assert.ErrorIs(t, err, caption.ErrInvalidConfig)

	_, err = NewClient("http://localhost:11434/api/generate", "", setupTestLogger())
	assert.ErrorIs(t, err, caption.ErrInvalidConfig)

	client, err := NewClient("http://localhost:11434/api/generate", "minicpm-v", setupTestLogger())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestCaptionSuccess(t *testing.T) {
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		inner, err := json.Marshal(map[string]string{
			"title":       "Emerald Wanderer",
			"description": "A lone traveler crossing a mossy forest bridge at dawn.",
		})
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{Response: string(inner)}))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "minicpm-v", setupTestLogger())
	require.NoError(t, err)

	got, err := client.Caption(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "Emerald Wanderer", got.Title)
	assert.Equal(t, "A lone traveler crossing a mossy forest bridge at dawn.", got.Description)

	// Wire format of the request itself.
	assert.Equal(t, "minicpm-v", gotBody.Model)
	assert.Equal(t, caption.Prompt, gotBody.Prompt)
	assert.Equal(t, []string{"aGVsbG8="}, gotBody.Images)
	assert.False(t, gotBody.Stream)
	assert.Equal(t, "json", gotBody.Format)
}

func TestCaptionNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "minicpm-v", setupTestLogger())
	require.NoError(t, err)

	_, err = client.Caption(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, caption.ErrRequestFailed)
}

func TestCaptionConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(server.URL, "minicpm-v", setupTestLogger())
	require.NoError(t, err)

	_, err = client.Caption(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, caption.ErrRequestFailed)
}

func TestCaptionInvalidResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "body not JSON", body: `not json at all`},
		{name: "response field not JSON", body: `{"response": "plain text caption"}`},
		{name: "missing title", body: `{"response": "{\"description\": \"A dim cellar.\"}"}`},
		{name: "missing description", body: `{"response": "{\"title\": \"Dim Cellar\"}"}`},
		{name: "empty object", body: `{"response": "{}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "minicpm-v", setupTestLogger())
			require.NoError(t, err)

			_, err = client.Caption(context.Background(), "aGVsbG8=")
			assert.ErrorIs(t, err, caption.ErrInvalidResponse)
		})
	}
}

func TestCaptionEmptyStringsAccepted(t *testing.T) {
	// Present-but-empty fields are structurally valid; rejecting useless
	// captions is the caller's policy, not the codec's.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": "{\"title\": \"\", \"description\": \"\"}"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "minicpm-v", setupTestLogger())
	require.NoError(t, err)

	got, err := client.Caption(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Description)
}

func TestCaptionContextCanceled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		// The server does not cancel r.Context() on client disconnect while
		// the request body is unread, so also unblock at test teardown or
		// Server.Close would deadlock waiting for this handler.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, "minicpm-v", setupTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err = client.Caption(ctx, "aGVsbG8=")
	assert.Error(t, err)
}
