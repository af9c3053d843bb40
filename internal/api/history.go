package api

import (
	"context"
	"fmt"

	"github.com/idw-coder/quizterm/internal/history"
)

// HistoryPayload is the wire shape of one answer sent to the service.
// answered_at is whole-second UTC, space-separated date/time.
type HistoryPayload struct {
	QuizID     int    `json:"quiz_id"`
	CategoryID int    `json:"category_id"`
	IsCorrect  bool   `json:"is_correct"`
	AnsweredAt string `json:"answered_at"`
}

// HistoryEntry is one stored answer as returned by the service.
type HistoryEntry struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	QuizID     int    `json:"quiz_id"`
	CategoryID int    `json:"category_id"`
	IsCorrect  bool   `json:"is_correct"`
	AnsweredAt string `json:"answered_at"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// HistoryClient talks to the answer-history endpoints, scoped to the
// authenticated user. It implements history.RemoteClient.
type HistoryClient struct {
	c *Client
}

var _ history.RemoteClient = (*HistoryClient)(nil)

// NewHistoryClient creates a history client over the shared HTTP core.
func NewHistoryClient(c *Client) *HistoryClient {
	return &HistoryClient{c: c}
}

// FetchAll returns the user's full answer log. Entries whose timestamp
// does not parse are skipped rather than failing the whole read.
func (h *HistoryClient) FetchAll(ctx context.Context) ([]history.AnswerEvent, error) {
	var entries []HistoryEntry
	if err := h.c.get(ctx, "/quiz/histories", nil, &entries); err != nil {
		return nil, err
	}

	events := make([]history.AnswerEvent, 0, len(entries))
	for _, e := range entries {
		at, err := history.ParseAnsweredAt(e.AnsweredAt)
		if err != nil {
			continue
		}
		events = append(events, history.AnswerEvent{
			QuizID:     e.QuizID,
			CategoryID: e.CategoryID,
			IsCorrect:  e.IsCorrect,
			AnsweredAt: at,
		})
	}
	return events, nil
}

// Append records one answer.
func (h *HistoryClient) Append(ctx context.Context, e history.AnswerEvent) error {
	payload := HistoryPayload{
		QuizID:     e.QuizID,
		CategoryID: e.CategoryID,
		IsCorrect:  e.IsCorrect,
		AnsweredAt: e.WireTime(),
	}
	var entry HistoryEntry
	return h.c.post(ctx, "/quiz/histories", payload, &entry)
}

// BulkAppend persists a batch of answers in one call, used by the sign-in
// migration. The batch is validated against the service schema before it
// leaves the client; a validation failure is a hard error and nothing is
// sent.
func (h *HistoryClient) BulkAppend(ctx context.Context, events []history.AnswerEvent) (int, error) {
	payloads := make([]HistoryPayload, 0, len(events))
	for _, e := range events {
		payloads = append(payloads, HistoryPayload{
			QuizID:     e.QuizID,
			CategoryID: e.CategoryID,
			IsCorrect:  e.IsCorrect,
			AnsweredAt: e.WireTime(),
		})
	}

	if err := validateBulkPayload(payloads); err != nil {
		return 0, fmt.Errorf("bulk payload rejected: %w", err)
	}

	req := struct {
		Histories []HistoryPayload `json:"histories"`
	}{Histories: payloads}

	var resp struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
	if err := h.c.post(ctx, "/quiz/histories/bulk", req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Clear deletes the user's entire answer log.
func (h *HistoryClient) Clear(ctx context.Context) error {
	var resp struct {
		Message string `json:"message"`
	}
	return h.c.delete(ctx, "/quiz/histories", &resp)
}
