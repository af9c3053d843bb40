package history

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/idw-coder/quizterm/internal/cache"
)

// Service is the history facade consumed by rendering code: record an
// answer, read projections, clear. It keeps an in-memory copy of the
// answer log so projections reflect a just-recorded answer immediately,
// without waiting on the authoritative store.
type Service struct {
	mu       sync.Mutex
	rec      *Reconciler
	answers  []AnswerEvent
	loaded   bool
	loadErr  error
	syncErr  error
	recCache *cache.Cache[[]AnswerEvent]
	now      func() time.Time
}

// NewService creates a history service over the reconciler.
func NewService(rec *Reconciler) *Service {
	return &Service{
		rec:      rec,
		recCache: cache.New[[]AnswerEvent](cache.DefaultTTL),
		now:      time.Now,
	}
}

// Refresh reads the authoritative store into the in-memory projection.
// Within the staleness window a repeat call is served from cache. While
// the auth state is pending the projection stays unloaded.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Source() == SourcePending {
		s.loaded = false
		return nil
	}

	if cached, ok := s.recCache.Get(cache.KeyHistory); ok {
		s.answers = cached
		s.loaded = true
		s.loadErr = nil
		return nil
	}

	events, err := s.rec.Read(ctx)
	if err != nil {
		// Surface empty-with-error: the projection is usable but the UI
		// can tell a failed fetch from genuinely empty history.
		s.answers = nil
		s.loaded = true
		s.loadErr = err
		return err
	}

	s.answers = events
	s.loaded = true
	s.loadErr = nil
	s.recCache.Put(cache.KeyHistory, events)
	return nil
}

// Loaded reports whether the authoritative source has completed its
// initial read, so UI can tell "no history yet" from "not loaded yet".
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LoadErr returns the error from the last refresh, if any.
func (s *Service) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// OnAuthChange switches the authoritative source and drops the projection
// and cache so the next refresh reads the new store. Sign-in runs the
// local-to-remote migration; its error is returned for telemetry but the
// switch already took effect.
func (s *Service) OnAuthChange(ctx context.Context, authenticated bool) error {
	err := s.rec.SetAuthenticated(ctx, authenticated)

	s.mu.Lock()
	s.answers = nil
	s.loaded = false
	s.loadErr = nil
	s.syncErr = err
	s.recCache.InvalidateAll()
	s.mu.Unlock()

	return err
}

// SyncError returns the error from the last source switch, usually a
// failed sign-in migration. The unsent answers stay on disk either way,
// so callers can report the failure without losing anything.
func (s *Service) SyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncErr
}

// AddAnswer records one answer with the current wall clock, truncated to
// the second like the wire format. The in-memory projection is updated
// optimistically; a failed remote append is logged by the write path and
// does not roll the projection back.
func (s *Service) AddAnswer(ctx context.Context, quizID, categoryID int, isCorrect bool) AnswerEvent {
	e := AnswerEvent{
		QuizID:     quizID,
		CategoryID: categoryID,
		IsCorrect:  isCorrect,
		AnsweredAt: s.now().UTC().Truncate(time.Second),
	}

	s.mu.Lock()
	s.answers = append(s.answers, e)
	s.recCache.Put(cache.KeyHistory, s.answers)
	s.mu.Unlock()

	if err := s.rec.Write(ctx, e); err != nil {
		log.Warn().Err(err).Int("quiz_id", quizID).Msg("answer write failed, optimistic state kept")
	}
	return e
}

// ClearHistory empties the authoritative store and resets the projection.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.rec.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("clear history")
		return err
	}

	s.mu.Lock()
	s.answers = nil
	s.recCache.Put(cache.KeyHistory, nil)
	s.mu.Unlock()
	return nil
}

// Answers returns a copy of the loaded answer log in storage order.
func (s *Service) Answers() []AnswerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AnswerEvent, len(s.answers))
	copy(out, s.answers)
	return out
}

// AnsweredCount returns the number of distinct quizzes with at least
// one recorded answer.
func (s *Service) AnsweredCount() int {
	return len(LatestByQuiz(s.Answers()))
}

// LatestAnswer returns the latest answer for the quiz, if any.
func (s *Service) LatestAnswer(quizID int) (AnswerEvent, bool) {
	return LatestAnswer(s.Answers(), quizID)
}

// AnswerHistory returns every answer for the quiz in storage order.
func (s *Service) AnswerHistory(quizID int) []AnswerEvent {
	return HistoryForQuiz(s.Answers(), quizID)
}

// CategoryAccuracy returns the category's accuracy from latest answers.
func (s *Service) CategoryAccuracy(categoryID int) CategoryAccuracy {
	return AccuracyForCategory(s.Answers(), categoryID)
}

// WrongQuizIDs returns the category's quizzes whose latest answer is wrong.
func (s *Service) WrongQuizIDs(categoryID int) []int {
	return WrongQuizIDs(s.Answers(), categoryID)
}
