// Package autoconfig builds a legal C3 topology for a roster from scratch.
//
// The heuristic runs in phases over the output of the previous one: balanced
// peer meshes, slave attachment, hierarchy construction, an orphan sweep for
// isolated masters, and a final validation pass. Hierarchy and orphan sweeps
// repeat together until neither adds a link.
package autoconfig

import (
	"time"

	"github.com/dd0wney/c3net/pkg/c3"
	"github.com/dd0wney/c3net/pkg/logging"
	"github.com/dd0wney/c3net/pkg/metrics"
)

// Phase labels used in stats and metrics.
const (
	PhasePeers     = "peers"
	PhaseSlaves    = "slaves"
	PhaseHierarchy = "hierarchy"
	PhaseOrphans   = "orphans"
)

// Stats summarises one run.
type Stats struct {
	PeerLinks      int `json:"peerLinks"`
	SlaveLinks     int `json:"slaveLinks"`
	HierarchyLinks int `json:"hierarchyLinks"`
	OrphanLinks    int `json:"orphanLinks"`
	// Rounds is the number of hierarchy/orphan rounds, including the final
	// round that found nothing to do.
	Rounds   int           `json:"rounds"`
	Duration time.Duration `json:"durationNs"`
}

// Links returns the total number of links created.
func (s Stats) Links() int {
	return s.PeerLinks + s.SlaveLinks + s.HierarchyLinks + s.OrphanLinks
}

// ByPhase returns the link counts keyed by phase label.
func (s Stats) ByPhase() map[string]int {
	return map[string]int{
		PhasePeers:     s.PeerLinks,
		PhaseSlaves:    s.SlaveLinks,
		PhaseHierarchy: s.HierarchyLinks,
		PhaseOrphans:   s.OrphanLinks,
	}
}

// Configurator runs the auto-configure heuristic with a given engine.
type Configurator struct {
	engine  *c3.Engine
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a Configurator.
type Option func(*Configurator)

// WithEngine sets the engine used to validate and apply links.
func WithEngine(e *c3.Engine) Option {
	return func(c *Configurator) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithLogger sets the logger for run summaries.
func WithLogger(l logging.Logger) Option {
	return func(c *Configurator) {
		c.logger = logging.OrNop(l)
	}
}

// WithMetrics sets the registry run statistics are recorded in.
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Configurator) {
		c.metrics = r
	}
}

// New creates a Configurator. Without WithEngine it uses a default engine;
// without WithMetrics it records into the engine's registry.
func New(opts ...Option) *Configurator {
	c := &Configurator{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = c3.NewEngine()
	}
	if c.metrics == nil {
		c.metrics = c.engine.Metrics()
	}
	c.logger = c.logger.With(logging.Component("autoconfig"))
	return c
}

// Run connects as much of the roster as the rules allow, starting from the
// given networks. groups maps unit IDs to group IDs and may be nil.
func (c *Configurator) Run(networks []c3.Network, nodes []*c3.Node, groups map[string]string) []c3.Network {
	out, _ := c.RunWithStats(networks, nodes, groups)
	return out
}

// RunWithStats is Run that also reports what each phase did.
func (c *Configurator) RunWithStats(networks []c3.Network, nodes []*c3.Node, groups map[string]string) ([]c3.Network, Stats) {
	timer := logging.StartTimer(c.logger, "auto-configure finished",
		logging.Operation("auto_configure"),
		logging.Count(len(nodes)),
	)

	live := c3.NodeMap(nodes)
	s := &run{
		engine:   c.engine,
		limits:   c.engine.Limits(),
		nodes:    nodes,
		byID:     live,
		groups:   groups,
		networks: c.engine.ValidateAndCleanNetworks(networks, live),
	}

	var stats Stats
	stats.PeerLinks = s.peerMeshes()
	timer.Lap(PhasePeers, logging.Int("links", stats.PeerLinks))
	stats.SlaveLinks = s.attachSlaves()
	timer.Lap(PhaseSlaves, logging.Int("links", stats.SlaveLinks))
	stats.HierarchyLinks, stats.OrphanLinks, stats.Rounds = s.buildHierarchy()
	timer.Lap(PhaseHierarchy,
		logging.Int("links", stats.HierarchyLinks),
		logging.Int("orphan_links", stats.OrphanLinks),
		logging.Int("rounds", stats.Rounds),
	)
	out := c.engine.ValidateAndCleanNetworks(s.networks, live)
	timer.Lap("clean", logging.Int("networks", len(out)))

	stats.Duration = timer.End(
		logging.Int("links", stats.Links()),
		logging.Int("rounds", stats.Rounds),
		logging.Int("networks", len(out)),
	)
	c.metrics.RecordAutoConfigure(stats.ByPhase(), stats.Rounds, stats.Duration)
	return out, stats
}

// run is the mutable state of one heuristic run.
type run struct {
	engine   *c3.Engine
	limits   c3.Limits
	nodes    []*c3.Node
	byID     map[string]*c3.Node
	groups   map[string]string
	networks []c3.Network
}

// try applies a link and keeps the result if it was legal.
func (r *run) try(src pin, dst pin) bool {
	res := r.engine.CreateConnection(r.networks, src.node, src.comp, dst.node, dst.comp)
	if res.Success {
		r.networks = res.Networks
	}
	return res.Success
}
