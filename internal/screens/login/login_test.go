package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/auth"
	"github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/router"
)

type memLocal struct {
	answers []history.StoredAnswer
}

func (m *memLocal) Load(context.Context) []history.StoredAnswer { return m.answers }
func (m *memLocal) Save(_ context.Context, a []history.StoredAnswer) error {
	m.answers = a
	return nil
}
func (m *memLocal) Clear(context.Context) error {
	m.answers = nil
	return nil
}

type memRemote struct {
	bulkErr error
	batches [][]history.AnswerEvent
	events  []history.AnswerEvent
}

func (m *memRemote) FetchAll(context.Context) ([]history.AnswerEvent, error) {
	return m.events, nil
}
func (m *memRemote) Append(_ context.Context, e history.AnswerEvent) error {
	m.events = append(m.events, e)
	return nil
}
func (m *memRemote) BulkAppend(_ context.Context, events []history.AnswerEvent) (int, error) {
	if m.bulkErr != nil {
		return 0, m.bulkErr
	}
	m.batches = append(m.batches, events)
	m.events = append(m.events, events...)
	return len(events), nil
}
func (m *memRemote) Clear(context.Context) error {
	m.events = nil
	return nil
}

type memTokens struct {
	token string
}

func (m *memTokens) Token(context.Context) string { return m.token }
func (m *memTokens) SaveToken(_ context.Context, t string) error {
	m.token = t
	return nil
}
func (m *memTokens) ClearToken(context.Context) error {
	m.token = ""
	return nil
}

func storedAnswer(quiz, category int, correct bool, answeredAt string) history.StoredAnswer {
	return history.StoredAnswer{
		QuizID: &quiz, CategoryID: &category, IsCorrect: &correct, AnsweredAt: &answeredAt,
	}
}

// newSignedOutStack wires an auth manager and history service the way the
// command bootstrap does: the service follows auth transitions through the
// subscription, and the session starts resolved as anonymous.
func newSignedOutStack(t *testing.T, local *memLocal, remote *memRemote) (*auth.Manager, *history.Service) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(api.AuthResponse{Token: "tok"})
		case "/user":
			json.NewEncoder(w).Encode(api.User{ID: 1, Name: "Mina", Email: "mina@example.com", Role: "user"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	tokens := &memTokens{}
	client := api.NewClient(srv.URL, func() string { return tokens.token })
	mgr := auth.NewManager(api.NewAuthClient(client), tokens)
	svc := history.NewService(history.NewReconciler(local, remote))
	mgr.Subscribe(func(_, next auth.State) {
		_ = svc.OnAuthChange(context.Background(), next == auth.StateAuthenticated)
	})
	if mgr.Resolve(context.Background()) != auth.StateAnonymous {
		t.Fatal("expected an anonymous session before sign-in")
	}
	return mgr, svc
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// signIn types credentials into the screen and submits, returning the
// command produced by the completed auth request.
func signIn(t *testing.T, l *LoginScreen) tea.Cmd {
	t.Helper()
	l.Init()
	for _, r := range "a@b.c" {
		l.Update(keyPress(r))
	}
	l.Update(specialKey(tea.KeyTab))
	for _, r := range "secret" {
		l.Update(keyPress(r))
	}
	_, cmd := l.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected an auth command from submit")
	}
	_, cmd = l.Update(cmd())
	return cmd
}

func TestSignInMigratesLocalHistory(t *testing.T) {
	local := &memLocal{answers: []history.StoredAnswer{
		storedAnswer(1, 7, true, "2024-01-01 00:00:00"),
	}}
	remote := &memRemote{}
	mgr, svc := newSignedOutStack(t, local, remote)

	l := New(mgr, svc)
	cmd := signIn(t, l)

	if len(remote.batches) != 1 || len(remote.batches[0]) != 1 {
		t.Fatalf("migrated batches = %+v, want one batch of one answer", remote.batches)
	}
	if remote.batches[0][0].QuizID != 1 {
		t.Errorf("migrated quiz = %d, want 1", remote.batches[0][0].QuizID)
	}
	if len(local.answers) != 0 {
		t.Error("local answers not cleared after migration")
	}

	if cmd == nil {
		t.Fatal("expected a pop command after a clean sign-in")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("sign-in should return to the previous screen")
	}
}

func TestSignInSyncFailureKeepsLocalAndReports(t *testing.T) {
	local := &memLocal{answers: []history.StoredAnswer{
		storedAnswer(1, 7, true, "2024-01-01 00:00:00"),
	}}
	remote := &memRemote{bulkErr: errors.New("500 from history service")}
	mgr, svc := newSignedOutStack(t, local, remote)

	l := New(mgr, svc)
	cmd := signIn(t, l)

	if cmd != nil {
		t.Fatal("sync failure should hold the screen, not pop")
	}
	if !strings.Contains(l.errMsg, "history sync failed") {
		t.Errorf("errMsg = %q", l.errMsg)
	}
	if len(local.answers) != 1 {
		t.Error("local answers must survive a failed migration")
	}
	if mgr.State() != auth.StateAuthenticated {
		t.Error("the session itself should be signed in")
	}

	// Any key acknowledges the failure and returns to the caller.
	_, cmd = l.Update(keyPress('x'))
	if cmd == nil {
		t.Fatal("expected a pop after acknowledging the sync failure")
	}
}
