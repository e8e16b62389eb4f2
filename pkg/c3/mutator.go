package c3

import (
	"fmt"
	"slices"

	"github.com/dd0wney/c3net/pkg/logging"
)

func failure(networks []Network, format string, args ...any) Result {
	return Result{
		Success:  false,
		Networks: CloneNetworks(networks),
		Message:  fmt.Sprintf(format, args...),
	}
}

// CreateConnection links two pins after revalidating the link. On success the
// returned list holds a new, joined, merged or extended network; on failure
// it is an unchanged copy and Message carries the reason.
func (e *Engine) CreateConnection(networks []Network, source *Node, sourceComp int, target *Node, targetComp int) Result {
	v := e.CanConnect(source, sourceComp, target, targetComp, networks)
	if !v.Valid {
		src, _ := source.Component(sourceComp)
		e.metrics.RecordConnection(string(src.Type), "rejected")
		return failure(networks, "%s", v.Reason)
	}

	src, _ := source.Component(sourceComp)
	dst, _ := target.Component(targetComp)
	work := CloneNetworks(networks)

	var msg string
	switch {
	case src.Role == RolePeer:
		work, msg = e.connectPeers(work, src, dst)
	case src.Role == RoleMaster && dst.Role == RoleMaster:
		work, msg = e.attach(work, dst.Pin(), src.Pin().Token(), src.Type)
	case src.Role == RoleMaster:
		work, msg = e.attach(work, src.Pin(), dst.UnitID, src.Type)
	default:
		work, msg = e.attach(work, dst.Pin(), src.UnitID, src.Type)
	}

	e.metrics.RecordConnection(string(src.Type), "created")
	e.logger.Debug(msg,
		logging.Operation("create_connection"),
		logging.Pin(src.Pin().Token()),
		logging.String("target", dst.Pin().Token()),
		logging.NetworkType(string(src.Type)),
	)
	return Result{Success: true, Networks: work, Message: msg}
}

func (e *Engine) connectPeers(work []Network, a, b Component) ([]Network, string) {
	ia := indexPeer(work, a.UnitID, a.Type)
	ib := indexPeer(work, b.UnitID, b.Type)

	switch {
	case ia < 0 && ib < 0:
		work = append(work, Network{
			ID:      e.newID(),
			Type:    a.Type,
			Color:   nextColor(e.palette, work),
			PeerIDs: []string{a.UnitID, b.UnitID},
		})
		return work, "created peer network"
	case ib < 0:
		work[ia].PeerIDs = append(work[ia].PeerIDs, b.UnitID)
		return work, "joined peer network"
	case ia < 0:
		work[ib].PeerIDs = append(work[ib].PeerIDs, a.UnitID)
		return work, "joined peer network"
	}

	// Both meshes exist: the one listed first keeps its identity.
	keep, drop := min(ia, ib), max(ia, ib)
	for _, id := range work[drop].PeerIDs {
		if !slices.Contains(work[keep].PeerIDs, id) {
			work[keep].PeerIDs = append(work[keep].PeerIDs, id)
		}
	}
	work = slices.Delete(work, drop, drop+1)
	return work, "merged peer networks"
}

func (e *Engine) attach(work []Network, master Pin, token string, t NetworkType) ([]Network, string) {
	if i := indexMaster(work, master); i >= 0 {
		work[i].Members = append(work[i].Members, token)
		return work, "added member to network"
	}
	work = append(work, Network{
		ID:              e.newID(),
		Type:            t,
		Color:           nextColor(e.palette, work),
		MasterID:        master.UnitID,
		MasterCompIndex: master.Comp,
		Members:         []string{token},
	})
	return work, "created master network"
}

// CancelConnectionForPin removes the link held by one pin of unit. A peer
// leaves the mesh of its pin's type, a slave leaves its master, and a master
// tears down its own network, leaving its members unparented. A master
// without its own network is detached from its parent instead.
func (e *Engine) CancelConnectionForPin(networks []Network, unit *Node, compIndex int, role Role) Result {
	if unit == nil {
		return failure(networks, "%v: no unit", ErrUnknownComponent)
	}
	unitID := unit.ID()
	work := CloneNetworks(networks)
	pin := Pin{UnitID: unitID, Comp: compIndex}

	var msg string
	switch role {
	case RolePeer:
		c, ok := unit.Component(compIndex)
		if !ok || c.Role != RolePeer {
			return failure(networks, "%v: %s is not a peer pin", ErrUnknownComponent, pin)
		}
		i := indexPeer(work, unitID, c.Type)
		if i < 0 {
			return failure(networks, "%v: %s in %s", ErrNotConnected, unitID, c.Type)
		}
		work[i].PeerIDs = removeToken(work[i].PeerIDs, unitID)
		msg = "left peer network"
	case RoleSlave:
		i := indexMember(work, unitID)
		if i < 0 {
			return failure(networks, "%v: %s", ErrNotConnected, unitID)
		}
		work[i].Members = removeToken(work[i].Members, unitID)
		msg = "left master network"
	case RoleMaster:
		if i := indexMaster(work, pin); i >= 0 {
			work = slices.Delete(work, i, i+1)
			msg = "dissolved master network"
		} else if i := indexMember(work, pin.Token()); i >= 0 {
			work[i].Members = removeToken(work[i].Members, pin.Token())
			msg = "detached sub-master"
		} else {
			return failure(networks, "%v: %s", ErrNotConnected, pin)
		}
	default:
		return failure(networks, "unknown role %q", role)
	}

	work = dropUndersized(work)
	e.metrics.RecordDisconnection("cancel_pin")
	e.logger.Debug(msg, logging.Operation("cancel_connection"), logging.Pin(pin.Token()), logging.String("role", string(role)))
	return Result{Success: true, Networks: work, Message: msg}
}

// RemoveMemberFromNetwork removes one member token (or peer ID) from the
// network with the given ID, dropping the network if it falls below its
// minimum size.
func (e *Engine) RemoveMemberFromNetwork(networks []Network, networkID, token string) Result {
	work := CloneNetworks(networks)
	i := indexByID(work, networkID)
	if i < 0 {
		return failure(networks, "%v: %s", ErrNetworkNotFound, networkID)
	}

	n := &work[i]
	if n.IsPeer() {
		if !slices.Contains(n.PeerIDs, token) {
			return failure(networks, "%v: %s in %s", ErrMemberNotFound, token, networkID)
		}
		n.PeerIDs = removeToken(n.PeerIDs, token)
	} else {
		if !slices.Contains(n.Members, token) {
			return failure(networks, "%v: %s in %s", ErrMemberNotFound, token, networkID)
		}
		n.Members = removeToken(n.Members, token)
	}

	work = dropUndersized(work)
	e.metrics.RecordDisconnection("remove_member")
	e.logger.Debug("removed member", logging.Operation("remove_member"), logging.NetworkID(networkID), logging.String("member", token))
	return Result{Success: true, Networks: work, Message: "removed member"}
}

// RemoveUnitFromPeerNetwork removes the unit from whichever peer mesh holds
// it, dropping the mesh if fewer than two units remain.
func (e *Engine) RemoveUnitFromPeerNetwork(networks []Network, unitID string) Result {
	work := CloneNetworks(networks)
	i := indexAnyPeer(work, unitID)
	if i < 0 {
		return failure(networks, "%v: %s", ErrNotConnected, unitID)
	}
	work[i].PeerIDs = removeToken(work[i].PeerIDs, unitID)
	work = dropUndersized(work)
	e.metrics.RecordDisconnection("remove_peer")
	e.logger.Debug("removed unit from peer network", logging.Operation("remove_peer"), logging.UnitID(unitID))
	return Result{Success: true, Networks: work, Message: "left peer network"}
}

func removeToken(list []string, token string) []string {
	return slices.DeleteFunc(list, func(s string) bool { return s == token })
}

// dropUndersized garbage-collects meshes under two units and empty master
// networks.
func dropUndersized(networks []Network) []Network {
	return slices.DeleteFunc(networks, func(n Network) bool {
		if n.IsPeer() {
			return len(n.PeerIDs) < 2
		}
		return len(n.Members) == 0
	})
}
