package c3

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// unit builds a unit with one equipment entry per flag.
func unit(id string, flags ...string) Unit {
	u := Unit{ID: id, Name: id, Tonnage: 50, Movement: 5, BaseValue: 1000}
	for _, f := range flags {
		u.Equipment = append(u.Equipment, Equipment{Name: f, Flags: []string{f}})
	}
	return u
}

func node(id string, flags ...string) *Node {
	return NewNode(unit(id, flags...))
}

// sequentialIDs returns a deterministic network ID generator.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("net-%d", n)
	}
}

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}

// checkInvariants verifies capacity, depth, unit-cap and exclusivity rules.
func checkInvariants(networks []Network, live map[string]*Node, limits Limits) error {
	tokens := map[string]string{}
	meshUnits := map[NetworkType]map[string]bool{}
	roots := map[Pin]bool{}

	for _, n := range networks {
		lim := limits.For(n.Type)
		if n.IsPeer() {
			if len(n.PeerIDs) < 2 {
				return fmt.Errorf("network %s has %d peers", n.ID, len(n.PeerIDs))
			}
			if len(n.PeerIDs) > lim.MaxPeers {
				return fmt.Errorf("network %s has %d peers, cap %d", n.ID, len(n.PeerIDs), lim.MaxPeers)
			}
			if meshUnits[n.Type] == nil {
				meshUnits[n.Type] = map[string]bool{}
			}
			for _, id := range n.PeerIDs {
				if meshUnits[n.Type][id] {
					return fmt.Errorf("unit %s in two %s meshes", id, n.Type)
				}
				meshUnits[n.Type][id] = true
				if live != nil && live[id] == nil {
					return fmt.Errorf("network %s references missing unit %s", n.ID, id)
				}
			}
			continue
		}

		mp := n.MasterPin()
		if roots[mp] {
			return fmt.Errorf("two networks rooted at %s", mp)
		}
		roots[mp] = true
		if len(n.Members) == 0 {
			return fmt.Errorf("network %s is empty", n.ID)
		}
		if len(n.Members) > lim.MaxMembers {
			return fmt.Errorf("network %s has %d members, cap %d", n.ID, len(n.Members), lim.MaxMembers)
		}
		for _, m := range n.Members {
			if other, dup := tokens[m]; dup {
				return fmt.Errorf("member %s in %s and %s", m, other, n.ID)
			}
			tokens[m] = n.ID
			if live != nil && live[tokenUnit(m)] == nil {
				return fmt.Errorf("network %s references missing unit %s", n.ID, m)
			}
		}
		root := RootOf(networks, mp)
		if IsDescendant(networks, root, mp) {
			return fmt.Errorf("cycle through %s", mp)
		}
		if u := len(TreeUnits(networks, root)); u > lim.MaxUnits {
			return fmt.Errorf("tree at %s has %d units, cap %d", root, u, lim.MaxUnits)
		}
	}
	return checkChains(networks, limits)
}

// checkChains walks raw member tokens down from every top-level master
// network. Sub-master tokens may only sit above the last level and slaves
// no deeper than it.
func checkChains(networks []Network, limits Limits) error {
	owned := map[string]Network{}
	nested := map[string]bool{}
	for _, n := range networks {
		if n.IsPeer() {
			continue
		}
		owned[fmt.Sprintf("%s:%d", n.MasterID, n.MasterCompIndex)] = n
		for _, m := range n.Members {
			if strings.Contains(m, ":") {
				nested[m] = true
			}
		}
	}

	var walk func(token string, level, maxDepth int) error
	walk = func(token string, level, maxDepth int) error {
		n, ok := owned[token]
		if !ok {
			return nil
		}
		for _, m := range n.Members {
			if !strings.Contains(m, ":") {
				if level+1 > maxDepth {
					return fmt.Errorf("slave %s at level %d under %s", m, level+1, token)
				}
				continue
			}
			if level+1 >= maxDepth {
				return fmt.Errorf("sub-master %s at level %d under %s", m, level+1, token)
			}
			if err := walk(m, level+1, maxDepth); err != nil {
				return err
			}
		}
		return nil
	}

	for token, n := range owned {
		if nested[token] {
			continue
		}
		if err := walk(token, 0, limits.For(n.Type).MaxDepth); err != nil {
			return err
		}
	}
	return nil
}

// testRoster is a mixed force: four single-pin masters, a two-pin company
// commander, a boosted master, ten slaves, five improved and four nova peers.
func testRoster() []*Node {
	var nodes []*Node
	for i := range 4 {
		nodes = append(nodes, node(fmt.Sprintf("M%d", i), "C3M"))
	}
	nodes = append(nodes, node("CMD", "C3M", "C3M"))
	nodes = append(nodes, node("BM", "C3MB"))
	for i := range 10 {
		nodes = append(nodes, node(fmt.Sprintf("S%d", i), "C3S"))
	}
	for i := range 5 {
		nodes = append(nodes, node(fmt.Sprintf("I%d", i), "C3I"))
	}
	for i := range 4 {
		nodes = append(nodes, node(fmt.Sprintf("N%d", i), "NOVA"))
	}
	return nodes
}

type pinRef struct {
	node *Node
	comp int
}

func allPins(nodes []*Node) []pinRef {
	var pins []pinRef
	for _, n := range nodes {
		for _, c := range n.Components {
			pins = append(pins, pinRef{n, c.Index})
		}
	}
	return pins
}

// randomNetworks builds an arbitrary, possibly corrupt, network list.
func randomNetworks(rng *rand.Rand, nodes []*Node) []Network {
	ids := []string{"GHOST"}
	var tokens []string
	for _, n := range nodes {
		ids = append(ids, n.ID())
		tokens = append(tokens, n.ID())
		for _, c := range n.Components {
			tokens = append(tokens, c.Pin().Token())
		}
	}
	tokens = append(tokens, "GHOST", "GHOST:0")

	types := []NetworkType{TypeStandard, TypeStandard, TypeImproved, TypeNova}
	count := rng.IntN(8)
	networks := make([]Network, 0, count)
	for i := range count {
		n := Network{ID: fmt.Sprintf("r%d", i), Type: types[rng.IntN(len(types))], Color: "#000000"}
		size := rng.IntN(6)
		if n.IsPeer() {
			for range size {
				n.PeerIDs = append(n.PeerIDs, ids[rng.IntN(len(ids))])
			}
		} else {
			n.MasterID = ids[rng.IntN(len(ids))]
			n.MasterCompIndex = rng.IntN(2)
			for range size {
				n.Members = append(n.Members, tokens[rng.IntN(len(tokens))])
			}
		}
		networks = append(networks, n)
	}
	return networks
}
