package history

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Source is the logical location of the authoritative answer log. Exactly
// one store is authoritative at any time.
type Source int

const (
	// SourcePending means the auth state has not resolved yet. Reads return
	// empty and writes are dropped so an answer cannot land in the wrong
	// store while the session probe is in flight.
	SourcePending Source = iota
	// SourceLocal is the on-device store, authoritative while signed out.
	SourceLocal
	// SourceRemote is the history service, authoritative while signed in.
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "pending"
	}
}

// LocalStore is the on-device answer log: a single slot holding the full
// history envelope. Save replaces the entire stored sequence.
type LocalStore interface {
	Load(ctx context.Context) []StoredAnswer
	Save(ctx context.Context, answers []StoredAnswer) error
	Clear(ctx context.Context) error
}

// RemoteClient is the history service surface the reconciler consumes.
type RemoteClient interface {
	FetchAll(ctx context.Context) ([]AnswerEvent, error)
	Append(ctx context.Context, e AnswerEvent) error
	BulkAppend(ctx context.Context, events []AnswerEvent) (int, error)
	Clear(ctx context.Context) error
}

// Reconciler selects the authoritative store from the auth state and
// migrates locally accumulated answers to the remote store when the user
// signs in.
//
// A single mutex covers every operation including migration, so a read that
// arrives while a migration is in flight waits for it instead of racing a
// half-migrated state with a fresh fetch.
type Reconciler struct {
	mu     sync.Mutex
	source Source
	local  LocalStore
	remote RemoteClient
}

// NewReconciler creates a reconciler with the source still pending.
func NewReconciler(local LocalStore, remote RemoteClient) *Reconciler {
	return &Reconciler{source: SourcePending, local: local, remote: remote}
}

// Source returns the currently authoritative source.
func (r *Reconciler) Source() Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

// SetAuthenticated resolves or switches the authoritative source.
// Transitioning from local to remote (an explicit sign-in) triggers the
// one-time migration of local history; resolving pending directly to
// remote (already signed in at startup) does not, matching the rule that
// migration fires exactly once per sign-in transition.
//
// The returned error is the migration outcome; the source switch itself
// always takes effect.
func (r *Reconciler) SetAuthenticated(ctx context.Context, authenticated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.source
	if authenticated {
		r.source = SourceRemote
	} else {
		r.source = SourceLocal
	}

	if prev == SourceLocal && r.source == SourceRemote {
		return r.migrateLocked(ctx)
	}
	return nil
}

// Read returns the answer log from the authoritative store. While pending
// it returns empty with no error. A remote fetch failure surfaces as empty
// with the error so callers can show a retry state instead of pretending
// empty-success.
func (r *Reconciler) Read(ctx context.Context) ([]AnswerEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.source {
	case SourceRemote:
		events, err := r.remote.FetchAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("fetch remote history")
			return nil, err
		}
		return events, nil
	case SourceLocal:
		return r.loadLocalLocked(ctx), nil
	default:
		return nil, nil
	}
}

// Write records one answer in the authoritative store. A remote append
// failure is logged and returned; the caller's optimistic in-memory update
// stands either way. While pending the write is dropped.
func (r *Reconciler) Write(ctx context.Context, e AnswerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.source {
	case SourceRemote:
		if err := r.remote.Append(ctx, e); err != nil {
			log.Error().Err(err).Int("quiz_id", e.QuizID).Msg("append remote answer")
			return err
		}
		return nil
	case SourceLocal:
		answers := r.local.Load(ctx)
		answers = append(answers, NewStoredAnswer(e))
		if err := r.local.Save(ctx, answers); err != nil {
			log.Error().Err(err).Int("quiz_id", e.QuizID).Msg("save local answer")
			return err
		}
		return nil
	default:
		log.Warn().Int("quiz_id", e.QuizID).Msg("answer dropped: auth state unresolved")
		return nil
	}
}

// Clear empties whichever store is currently authoritative. The other
// store is not touched.
func (r *Reconciler) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.source {
	case SourceRemote:
		return r.remote.Clear(ctx)
	case SourceLocal:
		return r.local.Clear(ctx)
	default:
		return nil
	}
}

// migrateLocked transfers local answers to the remote store. Records with
// missing fields or unparseable timestamps are dropped, not migrated. On
// success the local store is cleared so the batch cannot re-migrate on a
// later sign-in. On failure the local store is retained for retry: this is
// an at-least-once transfer, and duplicate remote events after a retried
// partial failure are an accepted tradeoff.
func (r *Reconciler) migrateLocked(ctx context.Context) error {
	stored := r.local.Load(ctx)

	var events []AnswerEvent
	dropped := 0
	for _, rec := range stored {
		e, ok := rec.Event()
		if !ok {
			dropped++
			continue
		}
		events = append(events, e)
	}
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("malformed local answers excluded from migration")
	}

	if len(events) == 0 {
		if err := r.local.Clear(ctx); err != nil {
			log.Error().Err(err).Msg("clear local history")
			return err
		}
		return nil
	}

	count, err := r.remote.BulkAppend(ctx, events)
	if err != nil {
		log.Error().Err(err).Int("events", len(events)).Msg("history migration failed, local copy retained")
		return err
	}

	if err := r.local.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("clear local history after migration")
		return err
	}
	log.Info().Int("migrated", count).Int("dropped", dropped).Msg("local history migrated")
	return nil
}

// loadLocalLocked reads the local slot, keeping only records that parse.
func (r *Reconciler) loadLocalLocked(ctx context.Context) []AnswerEvent {
	stored := r.local.Load(ctx)
	var events []AnswerEvent
	for _, rec := range stored {
		if e, ok := rec.Event(); ok {
			events = append(events, e)
		}
	}
	return events
}
