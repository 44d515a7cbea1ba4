package transcript

import "sync"

// Feed hands the latest snapshot of a Store to a single consumer. A snapshot
// that has not been received yet is replaced by a newer one, so a slow
// consumer never blocks the Store and always catches up to the newest state.
type Feed struct {
	ch          chan State
	unsubscribe func()
	once        sync.Once

	mu     sync.Mutex
	closed bool
}

// NewFeed subscribes to s. The current snapshot is available immediately.
func NewFeed(s *Store) *Feed {
	f := &Feed{ch: make(chan State, 1)}
	f.ch <- s.Snapshot()
	f.unsubscribe = s.Subscribe(f.offer)
	return f
}

// offer replaces any pending snapshot with st. Listeners are never called
// concurrently, so this is the only sender.
func (f *Feed) offer(st State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for {
		select {
		case f.ch <- st:
			return
		default:
		}
		select {
		case old := <-f.ch:
			if old.Revision > st.Revision {
				st = old
			}
		default:
		}
	}
}

// C returns the channel snapshots are delivered on
func (f *Feed) C() <-chan State {
	return f.ch
}

// Close stops the feed and closes C. A pending snapshot stays readable
// before the channel reports closed.
func (f *Feed) Close() {
	f.once.Do(func() {
		f.unsubscribe()

		f.mu.Lock()
		f.closed = true
		close(f.ch)
		f.mu.Unlock()
	})
}
