package history

import (
	"context"
	"errors"
	"testing"
)

func newLocalService(local *fakeLocal, remote *fakeRemote) *Service {
	return NewService(NewReconciler(local, remote))
}

func TestService_NotLoadedWhilePending(t *testing.T) {
	s := newLocalService(&fakeLocal{}, &fakeRemote{})
	ctx := context.Background()

	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.Loaded() {
		t.Error("service reported loaded while auth state pending")
	}
}

func TestService_AddAnswerOptimistic(t *testing.T) {
	remote := &fakeRemote{appendErr: errors.New("down")}
	s := newLocalService(&fakeLocal{}, remote)
	ctx := context.Background()

	if err := s.OnAuthChange(ctx, true); err != nil {
		t.Fatalf("OnAuthChange: %v", err)
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	e := s.AddAnswer(ctx, 5, 2, true)
	if e.QuizID != 5 || e.CategoryID != 2 || !e.IsCorrect {
		t.Errorf("AddAnswer = %+v", e)
	}
	if e.AnsweredAt.Nanosecond() != 0 {
		t.Error("AnsweredAt not truncated to the second")
	}

	// The remote append failed, but the projection reflects the answer.
	latest, ok := s.LatestAnswer(5)
	if !ok || !latest.IsCorrect {
		t.Errorf("LatestAnswer after failed append = %+v, %v", latest, ok)
	}
}

func TestService_ClearResetsProjection(t *testing.T) {
	local := &fakeLocal{answers: []StoredAnswer{stored(1, 1, false, "2024-01-01 00:00:00")}}
	s := newLocalService(local, &fakeRemote{})
	ctx := context.Background()

	_ = s.OnAuthChange(ctx, false)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(s.Answers()) != 1 {
		t.Fatalf("loaded %d answers, want 1", len(s.Answers()))
	}

	if err := s.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if len(s.Answers()) != 0 {
		t.Error("projection not reset after clear")
	}
	if len(local.answers) != 0 {
		t.Error("local store not cleared")
	}
}

func TestService_RemoteFetchFailureIsEmptyWithError(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("503")}
	s := newLocalService(&fakeLocal{}, remote)
	ctx := context.Background()

	_ = s.OnAuthChange(ctx, true)
	if err := s.Refresh(ctx); err == nil {
		t.Fatal("Refresh swallowed the fetch error")
	}
	if !s.Loaded() {
		t.Error("service not marked loaded after failed fetch")
	}
	if s.LoadErr() == nil {
		t.Error("LoadErr empty after failed fetch")
	}
	if len(s.Answers()) != 0 {
		t.Error("answers not empty after failed fetch")
	}
}

// End to end: answer locally while signed out, sign in, and read the same
// accuracy from the remote store after migration.
func TestService_SignInMigrationScenario(t *testing.T) {
	local := &fakeLocal{}
	remote := &fakeRemote{}
	s := newLocalService(local, remote)
	ctx := context.Background()

	if err := s.OnAuthChange(ctx, false); err != nil {
		t.Fatalf("resolve anonymous: %v", err)
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	s.AddAnswer(ctx, 5, 2, false)
	s.AddAnswer(ctx, 6, 2, true)

	acc := s.CategoryAccuracy(2)
	if acc.CorrectCount != 1 || acc.TotalCount != 2 || acc.Percentage != 50 {
		t.Fatalf("local accuracy = %+v, want {1 2 50}", acc)
	}

	// Sign in: both answers migrate, local store ends empty.
	if err := s.OnAuthChange(ctx, true); err != nil {
		t.Fatalf("sign-in migration: %v", err)
	}
	if len(remote.bulkBatches) != 1 || len(remote.bulkBatches[0]) != 2 {
		t.Fatalf("bulk batches = %+v", remote.bulkBatches)
	}
	if len(local.answers) != 0 {
		t.Error("local store not emptied after migration")
	}

	// The projection was invalidated by the transition; a fresh refresh
	// reads from the remote store and yields the same accuracy.
	if s.Loaded() {
		t.Error("projection survived auth transition")
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh from remote: %v", err)
	}
	acc = s.CategoryAccuracy(2)
	if acc.CorrectCount != 1 || acc.TotalCount != 2 || acc.Percentage != 50 {
		t.Errorf("remote accuracy = %+v, want {1 2 50}", acc)
	}
}

func TestService_RefreshServedFromCacheWithinWindow(t *testing.T) {
	local := &fakeLocal{answers: []StoredAnswer{stored(1, 1, true, "2024-01-01 00:00:00")}}
	s := newLocalService(local, &fakeRemote{})
	ctx := context.Background()

	_ = s.OnAuthChange(ctx, false)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// A write that bypasses the service is not observed while the cached
	// read is fresh.
	local.answers = append(local.answers, stored(2, 1, true, "2024-01-01 00:00:01"))
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(s.Answers()) != 1 {
		t.Errorf("cached refresh saw %d answers, want 1", len(s.Answers()))
	}
}

func TestService_SyncErrorRecordsMigrationOutcome(t *testing.T) {
	local := &fakeLocal{answers: []StoredAnswer{stored(1, 1, true, "2024-01-01 00:00:00")}}
	remote := &fakeRemote{bulkErr: errors.New("503")}
	s := newLocalService(local, remote)
	ctx := context.Background()

	_ = s.OnAuthChange(ctx, false)
	if s.SyncError() != nil {
		t.Error("clean source switch should leave no sync error")
	}

	if err := s.OnAuthChange(ctx, true); err == nil {
		t.Fatal("migration failure swallowed")
	}
	if s.SyncError() == nil {
		t.Fatal("failed migration not recorded")
	}

	// A later clean switch clears the record.
	remote.bulkErr = nil
	_ = s.OnAuthChange(ctx, false)
	_ = s.OnAuthChange(ctx, true)
	if s.SyncError() != nil {
		t.Errorf("SyncError after clean sign-in = %v", s.SyncError())
	}
}

func TestService_WrongQuizIDsProjection(t *testing.T) {
	s := newLocalService(&fakeLocal{}, &fakeRemote{})
	ctx := context.Background()
	_ = s.OnAuthChange(ctx, false)
	_ = s.Refresh(ctx)

	s.AddAnswer(ctx, 1, 3, false)
	s.AddAnswer(ctx, 2, 3, true)

	got := s.WrongQuizIDs(3)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("WrongQuizIDs = %v, want [1]", got)
	}

	s.AddAnswer(ctx, 1, 3, true)
	if got := s.WrongQuizIDs(3); len(got) != 0 {
		t.Errorf("WrongQuizIDs after improvement = %v, want empty", got)
	}
}
