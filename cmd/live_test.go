package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valpere/tradutor/internal/coordinator"
	"github.com/valpere/tradutor/internal/translator"
)

const liveTestDelay = 30 * time.Millisecond

func newLiveSession(t *testing.T, handler http.HandlerFunc) (*coordinator.Coordinator, *stateFeed) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := translator.NewMyMemoryService(translator.ServiceConfig{Endpoint: srv.URL})
	feed := newStateFeed()
	session, err := coordinator.New(svc, coordinator.Config{Delay: liveTestDelay},
		coordinator.WithObserver(feed.publish))
	if err != nil {
		t.Fatalf("coordinator.New failed: %v", err)
	}
	t.Cleanup(session.Close)
	t.Cleanup(feed.close)
	return session, feed
}

func settleSession(t *testing.T, session *coordinator.Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := session.Settle(ctx); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
}

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m tea.Model, k tea.KeyType) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func TestLiveModel_KeystrokesAreDebounced(t *testing.T) {
	var requests atomic.Int32
	var lastQuery atomic.Value
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		lastQuery.Store(r.URL.Query().Get("q"))
		w.Write([]byte(`{"responseData":{"translatedText":"good morning"}}`))
	})

	var m tea.Model = newLiveModel(session, feed)
	m = typeText(m, "bom dia")

	if got := session.State().SourceText; got != "bom dia" {
		t.Fatalf("expected every keystroke to reach the session, got %q", got)
	}
	settleSession(t, session)

	if n := requests.Load(); n != 1 {
		t.Errorf("expected 1 request for a burst of keystrokes, got %d", n)
	}
	if q := lastQuery.Load(); q != "bom dia" {
		t.Errorf("expected final text to be translated, got %v", q)
	}

	m, _ = m.Update(stateMsg(session.State()))
	if view := m.View(); !strings.Contains(view, "good morning") {
		t.Errorf("expected translation on screen, got:\n%s", view)
	}
}

func TestLiveModel_LanguageKeys(t *testing.T) {
	var requests atomic.Int32
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	var m tea.Model = newLiveModel(session, feed)

	m, _ = press(m, tea.KeyF2)
	if got := session.State().SourceLang; got != "en" {
		t.Errorf("expected f2 to move pt -> en, got %q", got)
	}
	m, _ = press(m, tea.KeyF3)
	if got := session.State().TargetLang; got != "es" {
		t.Errorf("expected f3 to move en -> es, got %q", got)
	}

	view := m.View()
	for _, want := range []string{"Inglês (en)", "Espanhol (es)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q on screen, got:\n%s", want, view)
		}
	}

	settleSession(t, session)
	if n := requests.Load(); n != 0 {
		t.Errorf("expected no requests without text, got %d", n)
	}
}

func TestLiveModel_SwapAndClear(t *testing.T) {
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responseData":{"translatedText":"good morning"}}`))
	})

	var m tea.Model = newLiveModel(session, feed)
	m = typeText(m, "bom dia")
	settleSession(t, session)

	m, _ = press(m, tea.KeyCtrlS)
	s := session.State()
	if s.SourceLang != "en" || s.TargetLang != "pt" {
		t.Errorf("expected languages swapped, got %s -> %s", s.SourceLang, s.TargetLang)
	}
	if s.SourceText != "good morning" || s.TranslatedText != "bom dia" {
		t.Errorf("expected texts swapped, got %+v", s)
	}
	if got := m.(liveModel).editor.Value(); got != "good morning" {
		t.Errorf("expected editor to show the swapped text, got %q", got)
	}

	m, _ = press(m, tea.KeyCtrlL)
	if got := session.State().SourceText; got != "" {
		t.Errorf("expected text cleared, got %q", got)
	}
	if got := m.(liveModel).editor.Value(); got != "" {
		t.Errorf("expected editor cleared, got %q", got)
	}
}

func TestLiveModel_ShowsLoadingAndErrors(t *testing.T) {
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	var m tea.Model = newLiveModel(session, feed)

	m, _ = m.Update(stateMsg(coordinator.State{SourceLang: "pt", TargetLang: "en", SourceText: "bom dia", TranslatedText: "old", Loading: true}))
	view := m.View()
	if !strings.Contains(view, "Traduzindo...") || strings.Contains(view, "old") {
		t.Errorf("expected loading indicator instead of the old translation, got:\n%s", view)
	}

	m = typeText(m, "bom dia")
	settleSession(t, session)
	m, _ = m.Update(stateMsg(session.State()))

	want := "Erro ao tentar traduzir: HTTP ERROR: 503. Tente novamente."
	if !strings.Contains(m.View(), want) {
		t.Errorf("expected error banner %q, got:\n%s", want, m.View())
	}
}

func TestLiveModel_Quit(t *testing.T) {
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {})

	var m tea.Model = newLiveModel(session, feed)
	_, cmd := press(m, tea.KeyEsc)
	if cmd == nil {
		t.Fatal("expected a command from esc")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected esc to quit")
	}
}

func TestStateFeed(t *testing.T) {
	feed := newStateFeed()

	feed.publish(coordinator.State{SourceText: "a"})
	feed.publish(coordinator.State{SourceText: "ab"})

	msg := feed.wait()()
	got, ok := msg.(stateMsg)
	if !ok {
		t.Fatalf("expected stateMsg, got %T", msg)
	}
	if got.SourceText != "ab" {
		t.Errorf("expected latest snapshot, got %q", got.SourceText)
	}

	feed.close()
	feed.close()
	if msg := feed.wait()(); msg != nil {
		t.Errorf("expected nil after close, got %v", msg)
	}
}

func TestRunLive(t *testing.T) {
	var requests atomic.Int32
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"responseData":{"translatedText":"good morning"}}`))
	})

	in, keys := io.Pipe()
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runLive(ctx, session, feed, tea.WithInput(in), tea.WithOutput(&out))
	}()

	if _, err := keys.Write([]byte("bom dia")); err != nil {
		t.Fatalf("failed to type: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for session.State().TranslatedText != "good morning" {
		if time.Now().After(deadline) {
			t.Fatalf("translation never arrived: %+v", session.State())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// ctrl+c
	keys.Write([]byte{0x03})
	keys.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runLive failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runLive did not return")
	}

	if n := requests.Load(); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestRunLive_ContextCancelled(t *testing.T) {
	session, feed := newLiveSession(t, func(w http.ResponseWriter, r *http.Request) {})

	in, keys := io.Pipe()
	defer keys.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runLive(ctx, session, feed, tea.WithInput(in), tea.WithOutput(io.Discard))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean exit on cancellation, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runLive did not return")
	}
}
