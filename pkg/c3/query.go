package c3

import "slices"

// Index-returning lookups are used internally on working copies; the exported
// pointer-returning wrappers below are for callers.

func indexPeer(networks []Network, unitID string, t NetworkType) int {
	for i := range networks {
		n := &networks[i]
		if n.Type == t && n.IsPeer() && slices.Contains(n.PeerIDs, unitID) {
			return i
		}
	}
	return -1
}

func indexAnyPeer(networks []Network, unitID string) int {
	for i := range networks {
		n := &networks[i]
		if n.IsPeer() && slices.Contains(n.PeerIDs, unitID) {
			return i
		}
	}
	return -1
}

func indexMaster(networks []Network, pin Pin) int {
	for i := range networks {
		n := &networks[i]
		if !n.IsPeer() && n.MasterID == pin.UnitID && n.MasterCompIndex == pin.Comp {
			return i
		}
	}
	return -1
}

// indexMember finds the master network listing token as a member.
func indexMember(networks []Network, token string) int {
	for i := range networks {
		n := &networks[i]
		if !n.IsPeer() && slices.Contains(n.Members, token) {
			return i
		}
	}
	return -1
}

func indexByID(networks []Network, id string) int {
	for i := range networks {
		if networks[i].ID == id {
			return i
		}
	}
	return -1
}

func at(networks []Network, i int) *Network {
	if i < 0 {
		return nil
	}
	return &networks[i]
}

// FindPeerNetwork returns the peer mesh containing the unit, if any.
func FindPeerNetwork(networks []Network, unitID string) *Network {
	return at(networks, indexAnyPeer(networks, unitID))
}

// FindPeerNetworkOfType returns the mesh of the given type containing the unit.
func FindPeerNetworkOfType(networks []Network, unitID string, t NetworkType) *Network {
	return at(networks, indexPeer(networks, unitID, t))
}

// FindMasterNetwork returns the network rooted at the given master pin.
func FindMasterNetwork(networks []Network, unitID string, comp int) *Network {
	return at(networks, indexMaster(networks, Pin{UnitID: unitID, Comp: comp}))
}

// FindParentNetwork returns the network in which the master pin is a member.
func FindParentNetwork(networks []Network, unitID string, comp int) *Network {
	return at(networks, indexMember(networks, Pin{UnitID: unitID, Comp: comp}.Token()))
}

// FindSlaveNetwork returns the master network listing the unit as a slave.
func FindSlaveNetwork(networks []Network, unitID string) *Network {
	return at(networks, indexMember(networks, unitID))
}

// FindNetworkByID returns the network with the given ID.
func FindNetworkByID(networks []Network, id string) *Network {
	return at(networks, indexByID(networks, id))
}

// SubNetworks returns the networks rooted at the sub-master members of n.
func SubNetworks(networks []Network, n Network) []*Network {
	if n.IsPeer() {
		return nil
	}
	var subs []*Network
	for _, m := range n.Members {
		pin, composite := ParseToken(m)
		if !composite {
			continue
		}
		if i := indexMaster(networks, pin); i >= 0 {
			subs = append(subs, &networks[i])
		}
	}
	return subs
}

// IsUnitConnected reports whether the unit takes part in any network.
func IsUnitConnected(networks []Network, unitID string) bool {
	for _, n := range networks {
		if n.IsPeer() {
			if slices.Contains(n.PeerIDs, unitID) {
				return true
			}
			continue
		}
		if n.MasterID == unitID {
			return true
		}
		for _, m := range n.Members {
			if tokenUnit(m) == unitID {
				return true
			}
		}
	}
	return false
}

// HasSlaveConnection reports whether the unit is linked as a slave.
func HasSlaveConnection(networks []Network, unitID string) bool {
	return indexMember(networks, unitID) >= 0
}

// HasMasterConnection reports whether any master pin of the unit is linked,
// either as the root of a network or as a sub-master member.
func HasMasterConnection(networks []Network, unitID string) bool {
	for _, n := range networks {
		if n.IsPeer() {
			continue
		}
		if n.MasterID == unitID {
			return true
		}
		for _, m := range n.Members {
			if pin, composite := ParseToken(m); composite && pin.UnitID == unitID {
				return true
			}
		}
	}
	return false
}

// ParentOf returns the master pin whose network lists pin as a member.
func ParentOf(networks []Network, pin Pin) (Pin, bool) {
	i := indexMember(networks, pin.Token())
	if i < 0 {
		return Pin{}, false
	}
	return networks[i].MasterPin(), true
}

// RootOf follows parent links up to the top of the hierarchy.
func RootOf(networks []Network, pin Pin) Pin {
	seen := map[Pin]bool{pin: true}
	for {
		parent, ok := ParentOf(networks, pin)
		if !ok || seen[parent] {
			return pin
		}
		seen[parent] = true
		pin = parent
	}
}

// Level is the number of masters above pin.
func Level(networks []Network, pin Pin) int {
	level := 0
	seen := map[Pin]bool{pin: true}
	for {
		parent, ok := ParentOf(networks, pin)
		if !ok || seen[parent] {
			return level
		}
		seen[parent] = true
		level++
		pin = parent
	}
}

// Height is the number of levels below pin: 0 without members, 1 with only
// slaves, 2 with any sub-master, and so on. A sub-master counts as a full
// level of its own even before it has members.
func Height(networks []Network, pin Pin) int {
	return height(networks, pin, map[Pin]bool{})
}

func height(networks []Network, pin Pin, seen map[Pin]bool) int {
	if seen[pin] {
		return 0
	}
	seen[pin] = true
	i := indexMaster(networks, pin)
	if i < 0 || len(networks[i].Members) == 0 {
		return 0
	}
	h := 1
	for _, m := range networks[i].Members {
		if sub, composite := ParseToken(m); composite {
			h = max(h, 1+max(1, height(networks, sub, seen)))
		}
	}
	return h
}

// IsDescendant reports whether pin sits anywhere below ancestor.
func IsDescendant(networks []Network, pin, ancestor Pin) bool {
	seen := map[Pin]bool{pin: true}
	for {
		parent, ok := ParentOf(networks, pin)
		if !ok || seen[parent] {
			return false
		}
		if parent == ancestor {
			return true
		}
		seen[parent] = true
		pin = parent
	}
}

// TreeUnits returns the distinct units in the hierarchy rooted at root, in
// discovery order. A unit listed under its own master pin is counted once.
func TreeUnits(networks []Network, root Pin) []string {
	var units []string
	seenUnit := map[string]bool{}
	add := func(id string) {
		if !seenUnit[id] {
			seenUnit[id] = true
			units = append(units, id)
		}
	}
	seenPin := map[Pin]bool{}
	var walk func(p Pin)
	walk = func(p Pin) {
		if seenPin[p] {
			return
		}
		seenPin[p] = true
		add(p.UnitID)
		i := indexMaster(networks, p)
		if i < 0 {
			return
		}
		for _, m := range networks[i].Members {
			if sub, composite := ParseToken(m); composite {
				walk(sub)
			} else {
				add(m)
			}
		}
	}
	walk(root)
	return units
}

// NetworkUnits returns the distinct units reachable from n: the mesh for a
// peer network, or the whole hierarchy n belongs to for a master network.
func NetworkUnits(networks []Network, n Network) []string {
	if n.IsPeer() {
		return slices.Clone(n.PeerIDs)
	}
	return TreeUnits(networks, RootOf(networks, n.MasterPin()))
}
