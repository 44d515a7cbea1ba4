// Package transcript holds the observable state of one chat session: the
// ordered message transcript plus the ephemeral input and busy flags.
//
// Every mutation replaces the whole State with a new snapshot and publishes it
// to subscribers. Published snapshots are never modified afterwards, so an
// observer holding one always sees a consistent transcript.
package transcript

import (
	"errors"
	"strings"
	"sync"

	"github.com/diogo/zaril/internal/models"
)

// ErrNoPlaceholder is returned by AppendDelta when the last message is not an
// open assistant placeholder. It indicates a programming error in the caller.
var ErrNoPlaceholder = errors.New("transcript: last message is not an open assistant placeholder")

// State is an immutable snapshot of a session
type State struct {
	Messages []models.Message
	Input    string
	Busy     bool
	// Revision increases by one with every published snapshot.
	Revision uint64
}

// Last returns the most recent message, if any
func (s State) Last() (models.Message, bool) {
	if len(s.Messages) == 0 {
		return models.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastAssistant returns the content of the most recent assistant message
func (s State) LastAssistant() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == models.RoleAssistant {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// Listener receives every published snapshot
type Listener func(State)

// Store is the single owner of a session's State
type Store struct {
	mu    sync.Mutex
	state State
	// tailOpen is true while the last message is a placeholder accepting deltas.
	tailOpen bool

	listeners map[int]Listener
	nextID    int

	// pubMu keeps deliveries in revision order across goroutines.
	pubMu sync.Mutex
}

// New creates a Store whose transcript starts with one assistant greeting
func New(greeting string) *Store {
	return &Store{
		state: State{
			Messages: []models.Message{models.AssistantMessage(greeting)},
		},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l for every future snapshot and returns a function that
// removes it. Listeners run on the mutating goroutine and must not mutate the
// Store themselves; hand the snapshot off to another goroutine instead.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// AppendUser appends a user message. Empty or whitespace-only text is ignored
// and reported with false.
func (s *Store) AppendUser(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	s.update(func(st *State) bool {
		st.Messages = appendMessage(st.Messages, models.UserMessage(text))
		s.tailOpen = false
		return true
	})
	return true
}

// AppendAssistantPlaceholder appends an empty assistant message that receives
// the fragments of the forthcoming stream.
func (s *Store) AppendAssistantPlaceholder() {
	s.update(func(st *State) bool {
		st.Messages = appendMessage(st.Messages, models.AssistantMessage(""))
		s.tailOpen = true
		return true
	})
}

// AppendDelta concatenates fragment onto the open placeholder. The message is
// replaced, not edited, so earlier snapshots keep their content.
func (s *Store) AppendDelta(fragment string) error {
	var err error
	s.update(func(st *State) bool {
		if !s.tailOpen {
			err = ErrNoPlaceholder
			return false
		}
		if fragment == "" {
			return false
		}
		n := len(st.Messages)
		msgs := make([]models.Message, n)
		copy(msgs, st.Messages)
		msgs[n-1] = msgs[n-1].WithContent(msgs[n-1].Content + fragment)
		st.Messages = msgs
		return true
	})
	return err
}

// CloseTail marks the end of a stream. The placeholder becomes an ordinary
// immutable message and further AppendDelta calls fail.
func (s *Store) CloseTail() {
	s.mu.Lock()
	s.tailOpen = false
	s.mu.Unlock()
}

// TailOpen reports whether a placeholder is accepting deltas
func (s *Store) TailOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tailOpen
}

// SetInput records the unsent text of the input control
func (s *Store) SetInput(text string) {
	s.update(func(st *State) bool {
		if st.Input == text {
			return false
		}
		st.Input = text
		return true
	})
}

// SetBusy sets the busy flag
func (s *Store) SetBusy(busy bool) {
	s.update(func(st *State) bool {
		if st.Busy == busy {
			return false
		}
		st.Busy = busy
		return true
	})
}

// TryBegin sets busy if it was clear. It returns false, leaving the state
// untouched, when a request is already in flight.
func (s *Store) TryBegin() bool {
	began := false
	s.update(func(st *State) bool {
		if st.Busy {
			return false
		}
		st.Busy = true
		began = true
		return true
	})
	return began
}

// update applies fn under the lock and, when fn reports a change, publishes
// the new snapshot to every listener in revision order.
func (s *Store) update(fn func(st *State) bool) {
	s.mu.Lock()
	next := s.state
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	next.Revision = s.state.Revision + 1
	s.state = next

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

// appendMessage returns a new slice; the published one is never grown in place.
func appendMessage(msgs []models.Message, m models.Message) []models.Message {
	out := make([]models.Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, m)
}
