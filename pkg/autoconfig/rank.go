package autoconfig

import (
	"cmp"
	"slices"

	"github.com/dd0wney/c3net/pkg/c3"
)

// pin is a component on a roster node.
type pin struct {
	node *c3.Node
	comp int
}

func (p pin) id() string {
	return p.node.ID()
}

func (p pin) key() c3.Pin {
	return c3.Pin{UnitID: p.node.ID(), Comp: p.comp}
}

func (r *run) group(unitID string) string {
	return r.groups[unitID]
}

func (r *run) sameGroup(a, b string) bool {
	g := r.group(a)
	return g != "" && g == r.group(b)
}

// preferTrue orders true before false.
func preferTrue(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// heavierSlower orders by tonnage descending, then movement ascending.
func heavierSlower(a, b *c3.Node) int {
	if c := cmp.Compare(b.Unit.Tonnage, a.Unit.Tonnage); c != 0 {
		return c
	}
	return cmp.Compare(a.Unit.Movement, b.Unit.Movement)
}

// sortByGroup orders grouped pins by group ID ahead of ungrouped ones,
// keeping roster order within a group.
func (r *run) sortByGroup(pins []pin) {
	slices.SortStableFunc(pins, func(a, b pin) int {
		ga, gb := r.group(a.id()), r.group(b.id())
		if c := preferTrue(ga != "", gb != ""); c != 0 {
			return c
		}
		return cmp.Compare(ga, gb)
	})
}

// masterPins lists the master pins of type t in roster order, skipping the
// excluded unit.
func (r *run) masterPins(t c3.NetworkType, exclude string) []pin {
	var out []pin
	for _, n := range r.nodes {
		if n.ID() == exclude {
			continue
		}
		for _, c := range n.MasterPins(t) {
			out = append(out, pin{n, c.Index})
		}
	}
	return out
}

// rankForSlave orders master pins for a slave: same group, fewer master pins
// on the unit, heavier, slower.
func (r *run) rankForSlave(slave *c3.Node, t c3.NetworkType, candidates []pin) {
	slices.SortStableFunc(candidates, func(a, b pin) int {
		if c := preferTrue(r.sameGroup(slave.ID(), a.id()), r.sameGroup(slave.ID(), b.id())); c != 0 {
			return c
		}
		if c := cmp.Compare(len(a.node.MasterPins(t)), len(b.node.MasterPins(t))); c != 0 {
			return c
		}
		return heavierSlower(a.node, b.node)
	})
}

// rankForMaster orders prospective parents for a master pin: pins that
// already command a network, same group, heavier, slower.
func (r *run) rankForMaster(child pin, candidates []pin) {
	hasNetwork := make(map[c3.Pin]bool, len(candidates))
	for _, p := range candidates {
		hasNetwork[p.key()] = c3.FindMasterNetwork(r.networks, p.id(), p.comp) != nil
	}
	slices.SortStableFunc(candidates, func(a, b pin) int {
		if c := preferTrue(hasNetwork[a.key()], hasNetwork[b.key()]); c != 0 {
			return c
		}
		if c := preferTrue(r.sameGroup(child.id(), a.id()), r.sameGroup(child.id(), b.id())); c != 0 {
			return c
		}
		return heavierSlower(a.node, b.node)
	})
}
