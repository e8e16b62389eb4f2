package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/c3net/pkg/c3"
)

func nextChange(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.Changes():
		require.True(t, ok, "subscription closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestWatch_LocalAndRemote(t *testing.T) {
	s := NewSession(lance())
	defer s.Close()

	sub := s.Watch(context.Background())
	defer sub.Unsubscribe()

	require.True(t, s.Connect("S1", 0, "M", 0).Success)
	c := nextChange(t, sub)
	assert.Equal(t, Change{Revision: 1, Source: SourceLocal, Networks: 1}, c)

	require.ErrorIs(t, s.ReplaceRemote(lance(), KeepLocal), ErrConflict)
	c = nextChange(t, sub)
	assert.Equal(t, SourceRemote, c.Source)
	assert.True(t, c.Conflict)
	assert.Equal(t, uint64(2), c.Revision)

	require.NoError(t, s.ReplaceRemote(lance(), AcceptRemote))
	c = nextChange(t, sub)
	assert.False(t, c.Conflict)
	assert.Zero(t, c.Networks)
}

func TestWatch_FailedEditIsSilent(t *testing.T) {
	s := NewSession(lance())
	defer s.Close()
	sub := s.Watch(context.Background())
	defer sub.Unsubscribe()

	assert.False(t, s.Cancel("S1", 0, c3.RoleSlave).Success)

	select {
	case c := <-sub.Changes():
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatch_SlowWatcherSeesLatest(t *testing.T) {
	s := NewSession(lance())
	defer s.Close()
	sub := s.Watch(context.Background())
	defer sub.Unsubscribe()

	for range watchBuffer + 10 {
		s.Connect("S1", 0, "M", 0)
		s.Cancel("S1", 0, c3.RoleSlave)
	}

	var last Change
	for len(sub.Changes()) > 0 {
		last = <-sub.Changes()
	}
	assert.Equal(t, s.Revision(), last.Revision)
}

func TestWatch_ContextCancel(t *testing.T) {
	s := NewSession(lance())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := s.Watch(ctx)
	assert.Equal(t, 1, s.Watchers())

	cancel()
	select {
	case _, ok := <-sub.Changes():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	assert.Eventually(t, func() bool { return s.Watchers() == 0 }, time.Second, 10*time.Millisecond)

	// Unsubscribing twice is safe.
	sub.Unsubscribe()
	sub.Unsubscribe()
}

func TestWatch_Close(t *testing.T) {
	s := NewSession(lance())
	a := s.Watch(context.Background())
	b := s.Watch(context.Background())

	s.Close()
	for _, sub := range []*Subscription{a, b} {
		_, ok := <-sub.Changes()
		assert.False(t, ok)
	}
	assert.Zero(t, s.Watchers())

	late := s.Watch(context.Background())
	_, ok := <-late.Changes()
	assert.False(t, ok, "watching a closed session ends immediately")

	assert.True(t, s.Connect("S1", 0, "M", 0).Success, "session stays usable")
}
