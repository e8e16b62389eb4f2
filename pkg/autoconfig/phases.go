package autoconfig

import (
	"slices"

	"github.com/dd0wney/c3net/pkg/c3"
)

// peerMeshes partitions the unconnected peer pins of each type into meshes
// whose sizes differ by at most one. A lone leftover joins an existing mesh
// with room.
func (r *run) peerMeshes() int {
	links := 0
	for _, t := range c3.PeerTypes {
		var free []pin
		for _, n := range r.nodes {
			c, ok := n.PeerComponent(t)
			if !ok || c3.FindPeerNetworkOfType(r.networks, n.ID(), t) != nil {
				continue
			}
			free = append(free, pin{n, c.Index})
		}
		r.sortByGroup(free)

		for _, mesh := range balance(free, r.limits.For(t).MaxPeers) {
			if len(mesh) == 1 {
				if r.joinMesh(mesh[0], t) {
					links++
				}
				continue
			}
			anchor := mesh[0]
			for _, p := range mesh[1:] {
				if r.try(anchor, p) {
					links++
				}
			}
		}
	}
	return links
}

// balance splits pins into ceil(n/size) consecutive chunks whose lengths
// differ by at most one.
func balance(pins []pin, size int) [][]pin {
	if len(pins) == 0 || size < 1 {
		return nil
	}
	count := (len(pins) + size - 1) / size
	base, extra := len(pins)/count, len(pins)%count

	chunks := make([][]pin, 0, count)
	start := 0
	for i := range count {
		n := base
		if i < extra {
			n++
		}
		chunks = append(chunks, pins[start:start+n])
		start += n
	}
	return chunks
}

// joinMesh adds p to the first mesh of type t with room, preferring meshes
// that hold a unit from p's group.
func (r *run) joinMesh(p pin, t c3.NetworkType) bool {
	var targets []pin
	var grouped []bool
	for _, n := range r.networks {
		if n.Type != t || len(n.PeerIDs) >= r.limits.For(t).MaxPeers {
			continue
		}
		anchor := r.byID[n.PeerIDs[0]]
		if anchor == nil {
			continue
		}
		c, ok := anchor.PeerComponent(t)
		if !ok {
			continue
		}
		targets = append(targets, pin{anchor, c.Index})
		grouped = append(grouped, slices.ContainsFunc(n.PeerIDs, func(id string) bool {
			return r.sameGroup(p.id(), id)
		}))
	}

	order := make([]int, len(targets))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return preferTrue(grouped[a], grouped[b])
	})
	for _, i := range order {
		if r.try(p, targets[i]) {
			return true
		}
	}
	return false
}

// attachSlaves links every unattached slave-only unit to its best-ranked
// master pin that accepts it.
func (r *run) attachSlaves() int {
	links := 0
	for _, n := range r.nodes {
		if slices.ContainsFunc(n.Components, func(c c3.Component) bool { return c.Role == c3.RoleMaster }) {
			continue
		}
		if c3.FindSlaveNetwork(r.networks, n.ID()) != nil {
			continue
		}
		for _, c := range n.Components {
			if c.Role != c3.RoleSlave {
				continue
			}
			candidates := r.masterPins(c.Type, n.ID())
			r.rankForSlave(n, c.Type, candidates)
			attached := false
			for _, m := range candidates {
				if r.try(pin{n, c.Index}, m) {
					links++
					attached = true
					break
				}
			}
			if attached {
				break
			}
		}
	}
	return links
}

// buildHierarchy alternates the hierarchy and orphan sweeps until a round
// adds nothing. Every productive round consumes at least one master pin as a
// member token, so the round count is bounded by the number of master pins.
func (r *run) buildHierarchy() (hierarchy, orphans, rounds int) {
	ceiling := r.countMasterPins() + 1
	for rounds < ceiling {
		rounds++
		h := r.sweep(r.pending, ceiling)
		o := r.sweep(r.orphan, ceiling)
		hierarchy += h
		orphans += o
		if h == 0 && o == 0 {
			break
		}
	}
	return hierarchy, orphans, rounds
}

// sweep repeats external passes over the master pins selected by keep. When
// a whole pass attaches nothing it allows a single internal attach and starts
// over; it stops when neither kind of attach succeeds.
func (r *run) sweep(keep func(pin) bool, ceiling int) int {
	links := 0
	for range ceiling {
		if n := r.externalPass(keep); n > 0 {
			links += n
			continue
		}
		if !r.internalAttach(r.selectMasters(keep)) {
			break
		}
		links++
	}
	return links
}

// externalPass tries to nest each selected pin under a master pin on another
// unit. Pins that stop matching keep during the pass are skipped.
func (r *run) externalPass(keep func(pin) bool) int {
	links := 0
	for _, p := range r.selectMasters(keep) {
		if !keep(p) {
			continue
		}
		c, _ := p.node.Component(p.comp)
		candidates := r.masterPins(c.Type, p.id())
		r.rankForMaster(p, candidates)
		for _, parent := range candidates {
			if r.try(p, parent) {
				links++
				break
			}
		}
	}
	return links
}

// internalAttach nests the first pin it can under another master pin on the
// same unit.
func (r *run) internalAttach(pending []pin) bool {
	for _, p := range pending {
		c, _ := p.node.Component(p.comp)
		for _, other := range p.node.MasterPins(c.Type) {
			if other.Index == p.comp {
				continue
			}
			if r.try(p, pin{p.node, other.Index}) {
				return true
			}
		}
	}
	return false
}

// pending matches master pins that command a network but have no parent.
func (r *run) pending(p pin) bool {
	n := c3.FindMasterNetwork(r.networks, p.id(), p.comp)
	return n != nil && len(n.Members) > 0 &&
		c3.FindParentNetwork(r.networks, p.id(), p.comp) == nil
}

// orphan matches master pins with neither a network nor a parent.
func (r *run) orphan(p pin) bool {
	return c3.FindMasterNetwork(r.networks, p.id(), p.comp) == nil &&
		c3.FindParentNetwork(r.networks, p.id(), p.comp) == nil
}

// selectMasters lists the master pins matching keep, lighter and faster
// units first so that heavier units are left to become parents.
func (r *run) selectMasters(keep func(pin) bool) []pin {
	var out []pin
	for _, n := range r.nodes {
		for _, c := range n.Components {
			if c.Role != c3.RoleMaster {
				continue
			}
			if p := (pin{n, c.Index}); keep(p) {
				out = append(out, p)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b pin) int {
		return heavierSlower(b.node, a.node)
	})
	return out
}

func (r *run) countMasterPins() int {
	n := 0
	for _, node := range r.nodes {
		for _, c := range node.Components {
			if c.Role == c3.RoleMaster {
				n++
			}
		}
	}
	return n
}
