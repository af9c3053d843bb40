package history

import (
	"fmt"
	"time"
)

// WireTimeLayout is the timestamp format the history service accepts:
// whole-second UTC, space-separated date and time, no timezone suffix.
const WireTimeLayout = "2006-01-02 15:04:05"

// AnswerEvent is an immutable record of one answer submission.
// History is an append-only log of these; events are never mutated.
type AnswerEvent struct {
	QuizID     int
	CategoryID int
	IsCorrect  bool
	AnsweredAt time.Time
}

// WireTime returns the event timestamp in the service's wire format.
func (e AnswerEvent) WireTime() string {
	return FormatWireTime(e.AnsweredAt)
}

// FormatWireTime converts a timestamp to the wire format, truncating to
// whole-second UTC precision.
func FormatWireTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(WireTimeLayout)
}

// ParseAnsweredAt accepts both timestamp shapes that appear in stored
// history: RFC 3339 (written by older local-only builds) and the wire
// format used by the remote service.
func ParseAnsweredAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(WireTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse answered_at %q: %w", s, err)
	}
	return t, nil
}

// StoredAnswer is the JSON shape of one answer in the local slot envelope.
// Fields are pointers so records with missing fields (partial writes, hand
// edits, older builds) can be detected and dropped before migration rather
// than silently zero-filled.
type StoredAnswer struct {
	QuizID     *int    `json:"quizId"`
	CategoryID *int    `json:"categoryId"`
	IsCorrect  *bool   `json:"isCorrect"`
	AnsweredAt *string `json:"answeredAt"`
}

// NewStoredAnswer converts an in-memory event to its stored form.
func NewStoredAnswer(e AnswerEvent) StoredAnswer {
	at := FormatWireTime(e.AnsweredAt)
	return StoredAnswer{
		QuizID:     &e.QuizID,
		CategoryID: &e.CategoryID,
		IsCorrect:  &e.IsCorrect,
		AnsweredAt: &at,
	}
}

// Valid reports whether every required field is present.
func (r StoredAnswer) Valid() bool {
	return r.QuizID != nil && r.CategoryID != nil && r.IsCorrect != nil && r.AnsweredAt != nil
}

// Event parses the stored record into an AnswerEvent. Records with missing
// fields or an unparseable timestamp return ok=false.
func (r StoredAnswer) Event() (AnswerEvent, bool) {
	if !r.Valid() {
		return AnswerEvent{}, false
	}
	at, err := ParseAnsweredAt(*r.AnsweredAt)
	if err != nil {
		return AnswerEvent{}, false
	}
	return AnswerEvent{
		QuizID:     *r.QuizID,
		CategoryID: *r.CategoryID,
		IsCorrect:  *r.IsCorrect,
		AnsweredAt: at,
	}, true
}

// StoredAnswers converts events to their stored form.
func StoredAnswers(events []AnswerEvent) []StoredAnswer {
	out := make([]StoredAnswer, 0, len(events))
	for _, e := range events {
		out = append(out, NewStoredAnswer(e))
	}
	return out
}
