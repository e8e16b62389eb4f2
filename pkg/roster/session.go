package roster

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/dd0wney/c3net/pkg/autoconfig"
	"github.com/dd0wney/c3net/pkg/c3"
	"github.com/dd0wney/c3net/pkg/logging"
	"github.com/dd0wney/c3net/pkg/metrics"
)

// ErrConflict is returned when a remote replacement arrives while local
// edits are unsaved and the caller chose to keep them.
var ErrConflict = errors.New("remote change conflicts with unsaved local edits")

// Policy decides what a remote replacement does to unsaved local edits.
type Policy int

const (
	// AcceptRemote discards unsaved local edits.
	AcceptRemote Policy = iota
	// KeepLocal keeps local networks, reconciled against the remote units.
	KeepLocal
)

func (p Policy) String() string {
	switch p {
	case AcceptRemote:
		return "accept_remote"
	case KeepLocal:
		return "keep_local"
	default:
		return "unknown"
	}
}

// Snapshot is a deep copy of a session's state at one revision.
type Snapshot struct {
	Revision uint64
	Dirty    bool
	Units    []c3.Unit
	Groups   map[string]string
	Networks []c3.Network
}

// File returns the snapshot as a roster file.
func (s Snapshot) File() *File {
	return &File{Units: s.Units, Groups: s.Groups, Networks: s.Networks}
}

// Session holds one roster's units and networks for concurrent readers and
// a single logical editor. Every mutation goes through the engine and ends
// with the network list cleaned against the current units.
type Session struct {
	mu       sync.RWMutex
	engine   *c3.Engine
	logger   logging.Logger
	metrics  *metrics.Registry
	units    []c3.Unit
	nodes    []*c3.Node
	live     map[string]*c3.Node
	groups   map[string]string
	networks []c3.Network
	revision uint64
	dirty    bool
	watchers *hub
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithEngine sets the engine used for every mutation.
func WithEngine(e *c3.Engine) SessionOption {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logging.OrNop(l)
	}
}

// WithMetrics sets the registry for conflict and live-network metrics.
func WithMetrics(r *metrics.Registry) SessionOption {
	return func(s *Session) {
		s.metrics = r
	}
}

// NewSession opens a session on the roster, cleaning its networks.
func NewSession(f *File, opts ...SessionOption) *Session {
	s := &Session{logger: logging.NewNopLogger(), watchers: newHub()}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = c3.NewEngine()
	}
	if s.metrics == nil {
		s.metrics = s.engine.Metrics()
	}
	s.logger = s.logger.With(logging.Component("session"))
	s.setRoster(f.Units, f.Groups)
	s.networks = s.engine.ValidateAndCleanNetworks(f.Networks, s.live)
	s.gauge()
	return s
}

// setRoster replaces units and groups. Callers hold the write lock.
func (s *Session) setRoster(units []c3.Unit, groups map[string]string) {
	s.units = slices.Clone(units)
	s.groups = maps.Clone(groups)
	s.nodes = c3.NewNodes(s.units)
	s.live = c3.NodeMap(s.nodes)
}

// gauge updates the live network gauge. Callers hold a lock.
func (s *Session) gauge() {
	byType := map[string]int{}
	for _, n := range s.networks {
		byType[string(n.Type)]++
	}
	s.metrics.SetLiveNetworks(byType)
}

// publish records an accepted change. Callers hold the write lock.
func (s *Session) publish(c Change) {
	s.gauge()
	c.Revision = s.revision
	c.Networks = len(s.networks)
	s.watchers.publish(c)
}

// Engine returns the session's engine.
func (s *Session) Engine() *c3.Engine {
	return s.engine
}

// Nodes returns the classified units. The slice must not be modified.
func (s *Session) Nodes() []*c3.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes
}

// Node returns the classified unit with the given ID, or nil.
func (s *Session) Node(id string) *c3.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live[id]
}

// Networks returns a copy of the current networks.
func (s *Session) Networks() []c3.Network {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c3.CloneNetworks(s.networks)
}

// Revision returns the number of accepted changes so far.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Dirty reports whether there are local edits not yet marked saved.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Revision: s.revision,
		Dirty:    s.dirty,
		Units:    slices.Clone(s.units),
		Groups:   maps.Clone(s.groups),
		Networks: c3.CloneNetworks(s.networks),
	}
}

// Changed reports whether the session moved on since the snapshot was taken.
func (s *Session) Changed(snap Snapshot) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision != snap.Revision || !c3.EqualNetworks(s.networks, snap.Networks)
}

// ApplyLocal runs a local edit against the current networks. A successful
// edit is cleaned, stored and marks the session dirty; a failed one leaves
// the session untouched.
func (s *Session) ApplyLocal(edit func(e *c3.Engine, nodes map[string]*c3.Node, networks []c3.Network) c3.Result) c3.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := edit(s.engine, s.live, c3.CloneNetworks(s.networks))
	if !res.Success {
		return res
	}
	s.networks = s.engine.ValidateAndCleanNetworks(res.Networks, s.live)
	s.revision++
	s.dirty = true
	s.publish(Change{Source: SourceLocal})
	res.Networks = c3.CloneNetworks(s.networks)
	return res
}

// Connect links two pins by unit ID.
func (s *Session) Connect(sourceID string, sourceComp int, targetID string, targetComp int) c3.Result {
	return s.ApplyLocal(func(e *c3.Engine, nodes map[string]*c3.Node, networks []c3.Network) c3.Result {
		return e.CreateConnection(networks, nodes[sourceID], sourceComp, nodes[targetID], targetComp)
	})
}

// Cancel removes the link held by one pin.
func (s *Session) Cancel(unitID string, comp int, role c3.Role) c3.Result {
	return s.ApplyLocal(func(e *c3.Engine, nodes map[string]*c3.Node, networks []c3.Network) c3.Result {
		return e.CancelConnectionForPin(networks, nodes[unitID], comp, role)
	})
}

// AutoConfigure runs the heuristic over the whole roster as one local edit.
func (s *Session) AutoConfigure(c *autoconfig.Configurator) autoconfig.Stats {
	var stats autoconfig.Stats
	s.ApplyLocal(func(_ *c3.Engine, _ map[string]*c3.Node, networks []c3.Network) c3.Result {
		var out []c3.Network
		out, stats = c.RunWithStats(networks, s.nodes, s.groups)
		return c3.Result{Success: stats.Links() > 0, Networks: out, Message: "auto-configured"}
	})
	return stats
}

// MarkSaved clears the dirty flag after the caller persisted the session.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// ReplaceRemote applies a replacement roster from another participant. With
// no unsaved local edits, or with AcceptRemote, the remote state is taken
// wholesale. With KeepLocal and unsaved edits, the remote units and groups
// are taken, the local networks are kept and cleaned against them, and
// ErrConflict is returned.
func (s *Session) ReplaceRemote(remote *File, policy Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setRoster(remote.Units, remote.Groups)
	s.revision++

	if s.dirty && policy == KeepLocal {
		s.networks = s.engine.ValidateAndCleanNetworks(s.networks, s.live)
		s.publish(Change{Source: SourceRemote, Conflict: true})
		s.metrics.RecordSessionConflict()
		s.logger.Warn("kept local edits over remote change",
			logging.Operation("replace_remote"),
			logging.String("policy", policy.String()),
			logging.Count(len(s.networks)),
		)
		return ErrConflict
	}

	if s.dirty {
		s.logger.Info("discarded local edits for remote change",
			logging.Operation("replace_remote"),
			logging.String("policy", policy.String()),
		)
	}
	s.networks = s.engine.ValidateAndCleanNetworks(remote.Networks, s.live)
	s.dirty = false
	s.publish(Change{Source: SourceRemote})
	return nil
}

// Watch subscribes to accepted changes until ctx is done or the
// subscription is cancelled.
func (s *Session) Watch(ctx context.Context) *Subscription {
	return s.watchers.subscribe(ctx)
}

// Watchers returns the number of live subscriptions.
func (s *Session) Watchers() int {
	return s.watchers.count()
}

// Close ends every subscription. The session stays usable.
func (s *Session) Close() {
	s.watchers.close()
}
