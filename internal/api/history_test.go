package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idw-coder/quizterm/internal/history"
)

func newTestHistoryClient(t *testing.T, handler http.HandlerFunc) *HistoryClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHistoryClient(NewClient(srv.URL, func() string { return "test-token" }))
}

func TestHistoryClient_FetchAll(t *testing.T) {
	client := newTestHistoryClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/quiz/histories", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]HistoryEntry{
			{ID: 1, QuizID: 5, CategoryID: 2, IsCorrect: false, AnsweredAt: "2024-01-01 00:00:00"},
			{ID: 2, QuizID: 6, CategoryID: 2, IsCorrect: true, AnsweredAt: "2024-01-01T00:00:05Z"},
			{ID: 3, QuizID: 7, CategoryID: 2, IsCorrect: true, AnsweredAt: "garbage"},
		})
	})

	events, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2, "unparseable timestamp entry should be skipped")
	assert.Equal(t, 5, events[0].QuizID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC), events[1].AnsweredAt)
}

func TestHistoryClient_AppendPayloadShape(t *testing.T) {
	var got HistoryPayload
	client := newTestHistoryClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/quiz/histories", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(HistoryEntry{ID: 1})
	})

	e := history.AnswerEvent{
		QuizID:     5,
		CategoryID: 2,
		IsCorrect:  true,
		AnsweredAt: time.Date(2024, 1, 1, 9, 30, 0, 500_000_000, time.UTC),
	}
	require.NoError(t, client.Append(context.Background(), e))

	assert.Equal(t, 5, got.QuizID)
	assert.Equal(t, 2, got.CategoryID)
	assert.True(t, got.IsCorrect)
	assert.Equal(t, "2024-01-01 09:30:00", got.AnsweredAt, "wire time must be whole-second, space-separated")
}

func TestHistoryClient_BulkAppend(t *testing.T) {
	var got struct {
		Histories []HistoryPayload `json:"histories"`
	}
	client := newTestHistoryClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quiz/histories/bulk", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"message": "ok", "count": len(got.Histories)})
	})

	events := []history.AnswerEvent{
		{QuizID: 1, CategoryID: 1, IsCorrect: true, AnsweredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{QuizID: 2, CategoryID: 1, IsCorrect: false, AnsweredAt: time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)},
	}
	count, err := client.BulkAppend(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, got.Histories, 2)
	assert.Equal(t, "2024-01-01 00:00:01", got.Histories[1].AnsweredAt)
}

func TestHistoryClient_BulkAppendRejectsInvalidBatchBeforeSend(t *testing.T) {
	called := false
	client := newTestHistoryClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	// Zero quiz id fails the schema's minimum.
	events := []history.AnswerEvent{
		{QuizID: 0, CategoryID: 1, IsCorrect: true, AnsweredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	_, err := client.BulkAppend(context.Background(), events)
	require.Error(t, err)
	assert.False(t, called, "invalid batch must not reach the network")
}

func TestHistoryClient_Clear(t *testing.T) {
	client := newTestHistoryClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/quiz/histories", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "cleared"})
	})
	require.NoError(t, client.Clear(context.Background()))
}

func TestHistoryClient_ErrorTaxonomy(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		client := newTestHistoryClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"validation failed"}`, http.StatusUnprocessableEntity)
		})
		_, err := client.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, IsServer(err))
		assert.False(t, IsNetwork(err))

		var se *ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close() // connection now refused

		client := NewHistoryClient(NewClient(url, nil))
		_, err := client.FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, IsNetwork(err))
		assert.False(t, IsServer(err))
	})
}
