package c3

import (
	"github.com/dd0wney/c3net/pkg/logging"
)

// CanConnect decides whether the source pin may link to the target pin given
// the current networks. For master-to-master links the source becomes a
// sub-master member of the target's network.
func (e *Engine) CanConnect(source *Node, sourceComp int, target *Node, targetComp int, networks []Network) Verdict {
	v := e.canConnect(source, sourceComp, target, targetComp, networks)
	if !v.Valid {
		e.logger.Debug("connection rejected",
			logging.Reason(v.Reason),
			logging.Any("source", pinLabel(source, sourceComp)),
			logging.Any("target", pinLabel(target, targetComp)),
		)
	}
	return v
}

func pinLabel(n *Node, comp int) string {
	if n == nil {
		return "<nil>"
	}
	return Pin{UnitID: n.ID(), Comp: comp}.Token()
}

func (e *Engine) canConnect(source *Node, sourceComp int, target *Node, targetComp int, networks []Network) Verdict {
	src, ok := source.Component(sourceComp)
	if !ok {
		return reject(ErrUnknownComponent, "source %s has no C3 component", pinLabel(source, sourceComp))
	}
	dst, ok := target.Component(targetComp)
	if !ok {
		return reject(ErrUnknownComponent, "target %s has no C3 component", pinLabel(target, targetComp))
	}

	// 1. type compatibility
	if src.Type != dst.Type {
		return reject(ErrIncompatibleType, "%s component cannot link with %s component", src.Type, dst.Type)
	}

	// 2. self pin
	if src.Pin() == dst.Pin() {
		return reject(ErrSelfConnection, "%s cannot connect to itself", src.Pin())
	}

	// 3. role pairs, 4. size caps
	lim := e.limits.For(src.Type)
	switch {
	case src.Role == RolePeer && dst.Role == RolePeer:
		return checkPeers(networks, src, dst, lim)
	case src.Role == RoleMaster && dst.Role == RoleMaster:
		return checkHierarchy(networks, src.Pin(), dst.Pin(), lim)
	case src.Role == RoleMaster && dst.Role == RoleSlave:
		return checkSlave(networks, src, dst, lim)
	case src.Role == RoleSlave && dst.Role == RoleMaster:
		return checkSlave(networks, dst, src, lim)
	default:
		return reject(ErrRoleMismatch, "%s cannot link with %s", src.Role, dst.Role)
	}
}

func checkPeers(networks []Network, a, b Component, lim TypeLimits) Verdict {
	if a.UnitID == b.UnitID {
		return reject(ErrSelfConnection, "unit %s cannot join its own mesh twice", a.UnitID)
	}
	ia := indexPeer(networks, a.UnitID, a.Type)
	ib := indexPeer(networks, b.UnitID, b.Type)
	if ia >= 0 && ia == ib {
		return reject(ErrAlreadyConnected, "%s and %s already share a %s network", a.UnitID, b.UnitID, a.Type)
	}

	size := 2
	switch {
	case ia >= 0 && ib >= 0:
		size = len(networks[ia].PeerIDs) + len(networks[ib].PeerIDs)
	case ia >= 0:
		size = len(networks[ia].PeerIDs) + 1
	case ib >= 0:
		size = len(networks[ib].PeerIDs) + 1
	}
	if size > lim.MaxPeers {
		return reject(ErrCapacityExceeded, "%s network would have %d units, maximum is %d", a.Type, size, lim.MaxPeers)
	}
	return allow()
}

func checkSlave(networks []Network, master, slave Component, lim TypeLimits) Verdict {
	mp := master.Pin()
	if i := indexMember(networks, slave.UnitID); i >= 0 {
		if networks[i].MasterPin() == mp {
			return reject(ErrAlreadyConnected, "%s is already a slave of %s", slave.UnitID, mp)
		}
		return reject(ErrAlreadyMember, "%s is already a slave of %s", slave.UnitID, networks[i].MasterPin())
	}
	if HasMasterConnection(networks, slave.UnitID) {
		return reject(ErrRoleConflict, "%s already holds a master connection", slave.UnitID)
	}
	if HasSlaveConnection(networks, master.UnitID) {
		return reject(ErrRoleConflict, "%s already holds a slave connection", master.UnitID)
	}

	if Level(networks, mp)+1 > lim.MaxDepth {
		return reject(ErrDepthExceeded, "%s is nested too deep to accept slaves", mp)
	}

	members := 0
	if i := indexMaster(networks, mp); i >= 0 {
		members = len(networks[i].Members)
	}
	if members >= lim.MaxMembers {
		return reject(ErrCapacityExceeded, "%s already has %d members, maximum is %d", mp, members, lim.MaxMembers)
	}

	units := unitSet(TreeUnits(networks, RootOf(networks, mp)))
	units[slave.UnitID] = true
	if len(units) > lim.MaxUnits {
		return reject(ErrNetworkTooLarge, "network would have %d units, maximum is %d", len(units), lim.MaxUnits)
	}
	return allow()
}

// checkHierarchy validates making child a sub-master of parent.
func checkHierarchy(networks []Network, child, parent Pin, lim TypeLimits) Verdict {
	token := child.Token()
	if i := indexMember(networks, token); i >= 0 {
		if networks[i].MasterPin() == parent {
			return reject(ErrAlreadyConnected, "%s is already under %s", child, parent)
		}
		return reject(ErrAlreadyMember, "%s is already under %s", child, networks[i].MasterPin())
	}
	if IsDescendant(networks, parent, child) {
		return reject(ErrHierarchyCycle, "%s is below %s", parent, child)
	}
	if HasSlaveConnection(networks, child.UnitID) {
		return reject(ErrRoleConflict, "%s already holds a slave connection", child.UnitID)
	}
	if HasSlaveConnection(networks, parent.UnitID) {
		return reject(ErrRoleConflict, "%s already holds a slave connection", parent.UnitID)
	}

	// A sub-master sits one level below its parent and its own members one
	// further; only the last level may hold slaves.
	level := Level(networks, parent) + 1
	if level > lim.MaxDepth-1 {
		return reject(ErrDepthExceeded, "%s is already nested and cannot take sub-masters", parent)
	}
	if level+Height(networks, child) > lim.MaxDepth {
		return reject(ErrDepthExceeded, "%s already commands sub-masters", child)
	}

	members := 0
	if i := indexMaster(networks, parent); i >= 0 {
		members = len(networks[i].Members)
	}
	if members >= lim.MaxMembers {
		return reject(ErrCapacityExceeded, "%s already has %d members, maximum is %d", parent, members, lim.MaxMembers)
	}

	units := unitSet(TreeUnits(networks, RootOf(networks, parent)))
	for _, u := range TreeUnits(networks, child) {
		units[u] = true
	}
	if len(units) > lim.MaxUnits {
		return reject(ErrNetworkTooLarge, "network would have %d units, maximum is %d", len(units), lim.MaxUnits)
	}
	return allow()
}

func unitSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}
