package c3

import (
	"github.com/dd0wney/c3net/pkg/logging"
)

// Pruning kinds reported to metrics.
const (
	pruneMissingUnit   = "missing_unit"
	pruneIncompatible  = "incompatible_member"
	pruneInvalidMaster = "invalid_master"
	pruneDuplicate     = "duplicate_member"
	pruneDuplicateRoot = "duplicate_network"
	pruneSelfMember    = "self_member"
	pruneCapacity      = "over_capacity"
	pruneUnitCap       = "over_unit_cap"
	pruneCycle         = "cycle"
	pruneDepth         = "depth"
	pruneUndersized    = "undersized_network"
)

// ValidateAndCleanNetworks repairs a network list against the live units
// using the default limits. See Engine.ValidateAndCleanNetworks.
func ValidateAndCleanNetworks(networks []Network, live map[string]*Node) []Network {
	return NewEngine().ValidateAndCleanNetworks(networks, live)
}

// ValidateAndCleanNetworks drops every entry that cannot stand: networks and
// members referring to units or components not in live, duplicate members
// and roots, pins listed in two networks, self members, cycles, members past
// the fan-out, depth or unit caps, meshes under two units and empty master
// networks. Earlier entries win over later ones. The result is a fixed point:
// cleaning it again changes nothing.
func (e *Engine) ValidateAndCleanNetworks(networks []Network, live map[string]*Node) []Network {
	cur := CloneNetworks(networks)
	pruned := map[string]int{}

	// Every pass that changes anything removes at least one member or
	// network, which bounds the number of passes.
	bound := len(cur) + 1
	for _, n := range cur {
		bound += n.Size()
	}
	for range bound {
		next, changed := e.cleanPass(cur, live, pruned)
		cur = next
		if !changed {
			break
		}
	}

	e.metrics.RecordValidation(pruned)
	if total := sumCounts(pruned); total > 0 {
		e.logger.Info("pruned network entries",
			logging.Operation("validate"),
			logging.Count(total),
			logging.Any("pruned", pruned),
		)
	}
	return cur
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

func (e *Engine) cleanPass(networks []Network, live map[string]*Node, pruned map[string]int) ([]Network, bool) {
	changed := false
	drop := func(kind string) {
		pruned[kind]++
		changed = true
	}

	out := make([]Network, 0, len(networks))
	inMesh := map[NetworkType]map[string]bool{}
	roots := map[Pin]bool{}
	members := map[string]bool{}
	parent := map[Pin]Pin{}

	for _, n := range networks {
		n = n.Clone()
		lim := e.limits.For(n.Type)

		if n.IsPeer() {
			seen := inMesh[n.Type]
			if seen == nil {
				seen = map[string]bool{}
				inMesh[n.Type] = seen
			}
			var kept []string
			local := map[string]bool{}
			for _, id := range n.PeerIDs {
				node := live[id]
				switch {
				case node == nil:
					drop(pruneMissingUnit)
				case !hasPeer(node, n.Type):
					drop(pruneIncompatible)
				case seen[id] || local[id]:
					drop(pruneDuplicate)
				case len(kept) >= lim.MaxPeers:
					drop(pruneCapacity)
				default:
					local[id] = true
					kept = append(kept, id)
				}
			}
			if len(kept) < 2 {
				drop(pruneUndersized)
				continue
			}
			for _, id := range kept {
				seen[id] = true
			}
			n.PeerIDs = kept
			out = append(out, n)
			continue
		}

		mp := n.MasterPin()
		node := live[n.MasterID]
		if node == nil {
			drop(pruneMissingUnit)
			continue
		}
		if c, ok := node.Component(n.MasterCompIndex); !ok || c.Role != RoleMaster || c.Type != n.Type {
			drop(pruneInvalidMaster)
			continue
		}
		if roots[mp] {
			drop(pruneDuplicateRoot)
			continue
		}

		var kept []string
		local := map[string]bool{}
		for _, m := range n.Members {
			pin, composite := ParseToken(m)
			mnode := live[pin.UnitID]
			switch {
			case mnode == nil:
				drop(pruneMissingUnit)
			case composite && !isMaster(mnode, pin.Comp, n.Type):
				drop(pruneIncompatible)
			case !composite && !hasSlave(mnode, n.Type):
				drop(pruneIncompatible)
			case composite && pin == mp:
				drop(pruneSelfMember)
			case local[m] || members[m]:
				drop(pruneDuplicate)
			case len(kept) >= lim.MaxMembers:
				drop(pruneCapacity)
			case composite && reaches(parent, mp, pin):
				drop(pruneCycle)
			default:
				local[m] = true
				kept = append(kept, m)
				if composite {
					parent[pin] = mp
				}
			}
		}
		if len(kept) == 0 {
			drop(pruneUndersized)
			continue
		}
		for _, m := range kept {
			members[m] = true
		}
		roots[mp] = true
		n.Members = kept
		out = append(out, n)
	}

	// Structural limits need the complete parent map.
	for i := range out {
		n := &out[i]
		if n.IsPeer() {
			continue
		}
		lim := e.limits.For(n.Type)
		level := levelOf(parent, n.MasterPin()) + 1
		var kept []string
		for _, m := range n.Members {
			_, composite := ParseToken(m)
			if (composite && level > lim.MaxDepth-1) || level > lim.MaxDepth {
				drop(pruneDepth)
				continue
			}
			kept = append(kept, m)
		}
		n.Members = kept
	}

	for i := range out {
		n := &out[i]
		if n.IsPeer() || len(n.Members) == 0 {
			continue
		}
		if _, nested := parent[n.MasterPin()]; nested {
			continue
		}
		lim := e.limits.For(n.Type)
		if len(TreeUnits(out, n.MasterPin())) > lim.MaxUnits {
			n.Members = n.Members[:len(n.Members)-1]
			drop(pruneUnitCap)
		}
	}

	return out, changed
}

// reaches reports whether walking up from pin via parent reaches target.
func reaches(parent map[Pin]Pin, pin, target Pin) bool {
	seen := map[Pin]bool{}
	for !seen[pin] {
		if pin == target {
			return true
		}
		seen[pin] = true
		p, ok := parent[pin]
		if !ok {
			return false
		}
		pin = p
	}
	return false
}

func levelOf(parent map[Pin]Pin, pin Pin) int {
	level := 0
	seen := map[Pin]bool{pin: true}
	for {
		p, ok := parent[pin]
		if !ok || seen[p] {
			return level
		}
		seen[p] = true
		level++
		pin = p
	}
}

func hasPeer(n *Node, t NetworkType) bool {
	_, ok := n.PeerComponent(t)
	return ok
}

func hasSlave(n *Node, t NetworkType) bool {
	_, ok := n.SlaveComponent(t)
	return ok
}

func isMaster(n *Node, comp int, t NetworkType) bool {
	c, ok := n.Component(comp)
	return ok && c.Role == RoleMaster && c.Type == t
}
