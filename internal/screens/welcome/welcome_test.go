package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/idw-coder/quizterm/internal/router"
	"github.com/idw-coder/quizterm/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

func newTestWelcome() (*WelcomeScreen, *int) {
	callCount := 0
	factory := func() screen.Screen {
		callCount++
		return &stubScreen{}
	}
	return New(factory), &callCount
}

func sendTicks(w *WelcomeScreen, n int) {
	for i := 0; i < n; i++ {
		w.Update(tickMsg(time.Now()))
	}
}

func TestPhaseProgression(t *testing.T) {
	w, _ := newTestWelcome()

	view := w.View(80, 24)
	if strings.Contains(view, "press any key") {
		t.Error("continue hint should not be visible at start")
	}

	sendTicks(w, 6)
	view = w.View(80, 24)
	if !strings.Contains(view, "Quizzes in your terminal.") {
		t.Error("tagline should be visible after 600ms")
	}
	if strings.Contains(view, "press any key") {
		t.Error("continue hint should not be visible before 1s")
	}

	sendTicks(w, 4)
	view = w.View(80, 24)
	if !strings.Contains(view, "press any key") {
		t.Error("continue hint should be visible after 1s")
	}
}

func TestKeyIgnoredBeforeSkippable(t *testing.T) {
	w, calls := newTestWelcome()

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if cmd != nil {
		t.Error("key press before skippable point should not transition")
	}
	if *calls != 0 {
		t.Error("home factory should not have been called")
	}
}

func TestKeyTransitionsAfterSkippable(t *testing.T) {
	w, calls := newTestWelcome()
	sendTicks(w, 10)

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if cmd == nil {
		t.Fatal("key press after skippable point should transition")
	}
	msg := cmd()
	if _, ok := msg.(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if *calls != 1 {
		t.Errorf("home factory calls = %d, want 1", *calls)
	}
}

func TestTransitionOnlyOnce(t *testing.T) {
	w, calls := newTestWelcome()
	sendTicks(w, 10)

	w.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b', Text: "b"})
	if cmd != nil {
		t.Error("second key press should not transition again")
	}
	if *calls != 1 {
		t.Errorf("home factory calls = %d, want 1", *calls)
	}
}

func TestCompactBanner(t *testing.T) {
	if !strings.Contains(RenderBanner(40), bannerCompact) {
		t.Error("narrow terminals should get the compact banner")
	}
	if strings.Contains(RenderBanner(120), bannerCompact) {
		t.Error("wide terminals should get the full banner")
	}
}
