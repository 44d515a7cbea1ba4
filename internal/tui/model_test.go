package tui

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/zaril/internal/api"
	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/transcript"
)

func newTestModel(t *testing.T, client *api.MockClient, opts ...ModelOption) Model {
	t.Helper()
	store := transcript.New("Zaril AI")
	ctrl := session.NewController(store, client, session.WithLogger(log.New(io.Discard, "", 0)))
	m := NewChatModel(ctrl, "llama-3.3-70b-versatile", opts...)
	t.Cleanup(m.feed.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewChatModel(t *testing.T) {
	store := transcript.New("Zaril AI")
	ctrl := session.NewController(store, &api.MockClient{})
	m := NewChatModel(ctrl, "model-x")
	defer m.feed.Close()

	if len(m.state.Messages) != 1 || m.state.Messages[0].Content != "Zaril AI" {
		t.Errorf("initial state = %+v", m.state)
	}
	if m.cache == nil {
		t.Error("expected a default render cache")
	}
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("View before the first resize should show the initializing text")
	}
	if m.Init() == nil {
		t.Error("Init should return commands")
	}
}

func TestViewShowsTranscript(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	view := m.View()
	for _, want := range []string{"Zaril AI", "llama-3.3-70b-versatile", "Enter", "You"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTypingUpdatesStoreInput(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	updated, _ := m.Update(keyRunes("h"))
	updated, _ = updated.(Model).Update(keyRunes("i"))

	if got := m.store.Snapshot().Input; got != "hi" {
		t.Errorf("store input = %q, want %q", got, "hi")
	}
	if got := updated.(Model).textarea.Value(); got != "hi" {
		t.Errorf("textarea = %q", got)
	}
}

func TestSubmitStreamsIntoStore(t *testing.T) {
	client := &api.MockClient{Stream: &api.MockStream{Fragments: []string{"Hi", " there"}}}
	m := newTestModel(t, client)
	m.textarea.SetValue("Hello")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if m.textarea.Value() != "" {
		t.Errorf("textarea not cleared: %q", m.textarea.Value())
	}

	msg := cmd()
	done, ok := msg.(submitDoneMsg)
	if !ok {
		t.Fatalf("expected submitDoneMsg, got %T", msg)
	}
	if done.err != nil {
		t.Fatalf("submit failed: %v", done.err)
	}

	st := m.store.Snapshot()
	if len(st.Messages) != 3 {
		t.Fatalf("transcript = %+v", st.Messages)
	}
	if last, _ := st.Last(); last.Content != "Hi there" {
		t.Errorf("reply = %q", last.Content)
	}

	updated, _ = m.Update(snapshotMsg(st))
	updated, _ = updated.(Model).Update(done)
	if view := updated.(Model).View(); !strings.Contains(view, "Hi there") {
		t.Error("view should show the reply")
	}
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	client := &api.MockClient{}
	m := newTestModel(t, client)

	m.store.TryBegin()
	updated, _ := m.Update(snapshotMsg(m.store.Snapshot()))
	m = updated.(Model)
	m.textarea.SetValue("second")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter while busy should not produce a command")
	}
	if client.Calls() != 0 {
		t.Errorf("made %d requests while busy", client.Calls())
	}
	if !strings.Contains(m.View(), "typing") {
		t.Error("loading indicator should replace the input while busy")
	}
}

func TestKeysIgnoredByTextareaWhileBusy(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	m.store.TryBegin()
	updated, _ := m.Update(snapshotMsg(m.store.Snapshot()))
	updated, _ = updated.(Model).Update(keyRunes("x"))

	if updated.(Model).textarea.Value() != "" {
		t.Error("textarea should not accept input while busy")
	}
}

func TestEscCancelsInFlight(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.store.TryBegin()
	updated, _ := m.Update(snapshotMsg(m.store.Snapshot()))

	updated, cmd := updated.(Model).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if ctx.Err() == nil {
		t.Error("esc should cancel the request")
	}
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Error("esc while busy should not quit")
		}
	}
	if updated.(Model).notice != "Cancelled" {
		t.Errorf("notice = %q", updated.(Model).notice)
	}
}

func TestExitCommands(t *testing.T) {
	for _, input := range []string{"exit", "quit", "/exit", "/quit"} {
		t.Run(input, func(t *testing.T) {
			m := newTestModel(t, &api.MockClient{})
			m.textarea.SetValue(input)

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestCopyLastAnswer(t *testing.T) {
	var copied string
	m := newTestModel(t, &api.MockClient{}, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))
	m.textarea.SetValue("/copy")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd()
	if _, ok := msg.(copiedMsg); !ok {
		t.Fatalf("expected copiedMsg, got %T", msg)
	}
	if copied != "Zaril AI" {
		t.Errorf("copied %q", copied)
	}

	updated, _ = updated.(Model).Update(msg)
	if !strings.Contains(updated.(Model).notice, "Copied") {
		t.Errorf("notice = %q", updated.(Model).notice)
	}
}

func TestCopyFailureShown(t *testing.T) {
	m := newTestModel(t, &api.MockClient{}, WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))

	cmd := m.copyLastAnswer()
	updated, _ := m.Update(cmd())
	if updated.(Model).err == nil {
		t.Error("clipboard failure should be shown")
	}
}

func TestSubmitErrorShownOutsideTranscript(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	err := apierrors.NewStatusError(401, "/chat/completions", "Invalid API Key", "")
	updated, _ := m.Update(submitDoneMsg{err: err})
	m = updated.(Model)

	if m.err == nil {
		t.Fatal("error should be kept for display")
	}
	if !strings.Contains(m.View(), "GROQ_API_KEY") {
		t.Error("auth failure should show the API key hint")
	}
	if len(m.store.Snapshot().Messages) != 1 {
		t.Error("errors must not be added to the transcript")
	}
}

func TestCancelledSubmitIsNotAnError(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	updated, _ := m.Update(submitDoneMsg{err: context.Canceled})
	if updated.(Model).err != nil {
		t.Error("cancellation should not be shown as an error")
	}
}

func TestSecondEnterBeforeBusySnapshotKeepsFirstCancellable(t *testing.T) {
	client := &api.MockClient{Stream: &api.MockStream{Fragments: []string{"part"}, Block: true}}
	m := newTestModel(t, client)
	m.textarea.SetValue("first")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}

	results := make(chan tea.Msg, 1)
	go func() { results <- cmd() }()

	// the busy snapshot has not reached the model yet
	m.textarea.SetValue("second")
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd != nil {
		t.Fatal("enter during a pending submit should not start another")
	}
	if m.textarea.Value() != "second" {
		t.Errorf("textarea = %q, want the unsent text kept", m.textarea.Value())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)

	select {
	case msg := <-results:
		done := msg.(submitDoneMsg)
		if !errors.Is(done.err, context.Canceled) {
			t.Fatalf("first submit = %v, want cancelled", done.err)
		}
		updated, _ = m.Update(done)
		m = updated.(Model)
	case <-time.After(2 * time.Second):
		t.Fatal("esc did not cancel the running request")
	}

	if m.cancel != nil {
		t.Error("cancel func should be cleared once its submit is done")
	}
	if m.store.Snapshot().Busy {
		t.Error("store still busy after cancellation")
	}
	if client.Calls() != 1 {
		t.Errorf("made %d requests, want 1", client.Calls())
	}
}

func TestBusyResultRestoresInput(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.cancel = cancel
	m.submitID = 2

	// a stale result must not release the running request
	updated, _ := m.Update(submitDoneMsg{id: 1, input: "lost text", err: session.ErrBusy})
	m = updated.(Model)

	if m.cancel == nil || ctx.Err() != nil {
		t.Error("stale result cancelled the running request")
	}
	if m.textarea.Value() != "lost text" {
		t.Errorf("textarea = %q, want the rejected input back", m.textarea.Value())
	}
	if m.store.Snapshot().Input != "lost text" {
		t.Errorf("store input = %q", m.store.Snapshot().Input)
	}
	if m.notice == "" {
		t.Error("busy rejection should be reported")
	}
}

func TestWaitForSnapshotReportsClosedFeed(t *testing.T) {
	m := newTestModel(t, &api.MockClient{})
	m.feed.Close()

	for i := 0; i < 2; i++ {
		msg := waitForSnapshot(m.feed)()
		if _, ok := msg.(feedClosedMsg); ok {
			return
		}
		if _, ok := msg.(snapshotMsg); !ok {
			t.Fatalf("unexpected message %T", msg)
		}
	}
	t.Fatal("closed feed never reported")
}
