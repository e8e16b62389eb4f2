package roster

import (
	"context"
	"sync"
)

// ChangeSource says where an accepted change came from.
type ChangeSource string

const (
	SourceLocal  ChangeSource = "local"
	SourceRemote ChangeSource = "remote"
)

// Change is sent to watchers after the session accepts a change. Watchers
// read the new state with Snapshot.
type Change struct {
	Revision uint64
	Source   ChangeSource
	// Conflict is set when a remote change arrived but local edits were kept.
	Conflict bool
	Networks int
}

// watchBuffer is the per-watcher backlog. A watcher that falls further
// behind misses intermediate changes, never the latest revision number.
const watchBuffer = 16

// Subscription delivers changes to one watcher.
type Subscription struct {
	ch        chan Change
	hub       *hub
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Changes returns the change channel. It is closed when the subscription
// ends.
func (s *Subscription) Changes() <-chan Change {
	return s.ch
}

// Unsubscribe stops delivery and closes the channel.
func (s *Subscription) Unsubscribe() {
	s.cancel()
	s.hub.remove(s)
	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}

// hub fans changes out to subscriptions without blocking the session.
type hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[*Subscription]struct{})}
}

func (h *hub) subscribe(ctx context.Context) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{ch: make(chan Change, watchBuffer), hub: h, cancel: cancel}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		sub.close()
		return sub
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-subCtx.Done()
		h.remove(sub)
		sub.close()
	}()
	return sub
}

func (h *hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// publish sends without blocking. When a watcher's buffer is full the
// oldest pending change is dropped to make room.
func (h *hub) publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		for {
			select {
			case sub.ch <- c:
			default:
				select {
				case <-sub.ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *hub) close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.closed = true
	h.mu.Unlock()

	for sub := range subs {
		sub.cancel()
		sub.close()
	}
}
