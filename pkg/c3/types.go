package c3

import (
	"slices"
	"strconv"
	"strings"
)

// NetworkType identifies the family of C3 equipment a component belongs to.
// Components only ever link with components of the same type.
type NetworkType string

const (
	TypeStandard NetworkType = "c3"
	TypeImproved NetworkType = "c3i"
	TypeNaval    NetworkType = "naval-c3"
	TypeNova     NetworkType = "nova"
)

// NetworkTypes lists every known network type.
var NetworkTypes = []NetworkType{TypeStandard, TypeImproved, TypeNaval, TypeNova}

// PeerTypes lists the mesh-forming network types in a stable order.
var PeerTypes = []NetworkType{TypeImproved, TypeNaval, TypeNova}

// Valid reports whether t is a known network type.
func (t NetworkType) Valid() bool {
	return slices.Contains(NetworkTypes, t)
}

// IsPeer reports whether networks of this type are flat peer meshes.
func (t NetworkType) IsPeer() bool {
	switch t {
	case TypeImproved, TypeNaval, TypeNova:
		return true
	default:
		return false
	}
}

func (t NetworkType) String() string {
	return string(t)
}

// Role is the part a component plays in its network.
type Role string

const (
	RoleMaster Role = "master"
	RoleSlave  Role = "slave"
	RolePeer   Role = "peer"
)

func (r Role) String() string {
	return string(r)
}

// Component is one C3-capable slot on a unit.
type Component struct {
	UnitID  string      `json:"unitId" yaml:"unitId"`
	Index   int         `json:"index" yaml:"index"`
	Type    NetworkType `json:"type" yaml:"type"`
	Role    Role        `json:"role" yaml:"role"`
	Boosted bool        `json:"boosted,omitempty" yaml:"boosted,omitempty"`
	Kind    Flag        `json:"kind" yaml:"kind"`
}

// Pin returns the unit/component address of the component.
func (c Component) Pin() Pin {
	return Pin{UnitID: c.UnitID, Comp: c.Index}
}

// Pin addresses a single component: the owning unit plus the component index.
type Pin struct {
	UnitID string
	Comp   int
}

// Token renders the pin as the composite member token "unitId:compIndex".
func (p Pin) Token() string {
	return p.UnitID + ":" + strconv.Itoa(p.Comp)
}

func (p Pin) String() string {
	return p.Token()
}

// ParseToken splits a member token. Bare unit IDs (slaves) return
// composite=false; "unitId:compIndex" tokens (sub-masters) return the pin.
func ParseToken(token string) (pin Pin, composite bool) {
	i := strings.LastIndexByte(token, ':')
	if i <= 0 || i == len(token)-1 {
		return Pin{UnitID: token}, false
	}
	comp, err := strconv.Atoi(token[i+1:])
	if err != nil || comp < 0 {
		return Pin{UnitID: token}, false
	}
	return Pin{UnitID: token[:i], Comp: comp}, true
}

// tokenUnit returns the unit ID referenced by a member token.
func tokenUnit(token string) string {
	pin, _ := ParseToken(token)
	return pin.UnitID
}

// Equipment is one entry in a unit's equipment list. Only the capability
// flags matter to the classifier.
type Equipment struct {
	Name  string   `json:"name" yaml:"name" validate:"required"`
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Unit is the read-only roster view of a combat unit.
type Unit struct {
	ID        string      `json:"id" yaml:"id" validate:"required,excludesall=:"`
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	Equipment []Equipment `json:"equipment,omitempty" yaml:"equipment,omitempty" validate:"omitempty,dive"`
	Tonnage   float64     `json:"tonnage,omitempty" yaml:"tonnage,omitempty" validate:"gte=0"`
	Movement  int         `json:"movement,omitempty" yaml:"movement,omitempty" validate:"gte=0"`
	BaseValue float64     `json:"baseValue,omitempty" yaml:"baseValue,omitempty" validate:"gte=0"`
}

// Node pairs a unit with its derived component list.
type Node struct {
	Unit       Unit
	Components []Component
}

// NewNode classifies the unit's equipment and wraps it in a node.
func NewNode(unit Unit) *Node {
	return &Node{
		Unit:       unit,
		Components: Classify(unit),
	}
}

// NewNodes builds a node per unit, preserving roster order.
func NewNodes(units []Unit) []*Node {
	nodes := make([]*Node, 0, len(units))
	for _, u := range units {
		nodes = append(nodes, NewNode(u))
	}
	return nodes
}

// NodeMap indexes nodes by unit ID.
func NodeMap(nodes []*Node) map[string]*Node {
	m := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if n != nil {
			m[n.Unit.ID] = n
		}
	}
	return m
}

// ID returns the unit ID.
func (n *Node) ID() string {
	return n.Unit.ID
}

// Component returns the component at the given index.
func (n *Node) Component(index int) (Component, bool) {
	if n == nil || index < 0 || index >= len(n.Components) {
		return Component{}, false
	}
	return n.Components[index], true
}

// HasC3 reports whether the unit carries any C3-capable component.
func (n *Node) HasC3() bool {
	return n != nil && len(n.Components) > 0
}

// MasterPins returns the unit's master components of the given type.
func (n *Node) MasterPins(t NetworkType) []Component {
	var out []Component
	for _, c := range n.Components {
		if c.Role == RoleMaster && c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// SlaveComponent returns the unit's first slave component of the given type.
func (n *Node) SlaveComponent(t NetworkType) (Component, bool) {
	for _, c := range n.Components {
		if c.Role == RoleSlave && c.Type == t {
			return c, true
		}
	}
	return Component{}, false
}

// PeerComponent returns the unit's first peer component of the given type.
func (n *Node) PeerComponent(t NetworkType) (Component, bool) {
	for _, c := range n.Components {
		if c.Role == RolePeer && c.Type == t {
			return c, true
		}
	}
	return Component{}, false
}

// Network is the serialisable description of one C3 network. Peer networks
// use PeerIDs; master networks use MasterID, MasterCompIndex and Members,
// where a member is a bare unit ID (slave) or "unitId:compIndex" (sub-master).
type Network struct {
	ID              string      `json:"id" yaml:"id" validate:"required"`
	Type            NetworkType `json:"type" yaml:"type" validate:"c3type"`
	Color           string      `json:"color" yaml:"color" validate:"omitempty,hexcolor"`
	PeerIDs         []string    `json:"peerIds,omitempty" yaml:"peerIds,omitempty" validate:"omitempty,dive,required"`
	MasterID        string      `json:"masterId,omitempty" yaml:"masterId,omitempty"`
	MasterCompIndex int         `json:"masterCompIndex" yaml:"masterCompIndex" validate:"gte=0"`
	Members         []string    `json:"members,omitempty" yaml:"members,omitempty" validate:"omitempty,dive,required"`
}

// IsPeer reports whether the network is a peer mesh.
func (n Network) IsPeer() bool {
	return n.Type.IsPeer()
}

// MasterPin returns the root pin of a master network.
func (n Network) MasterPin() Pin {
	return Pin{UnitID: n.MasterID, Comp: n.MasterCompIndex}
}

// Size is the number of peers or members listed in the network.
func (n Network) Size() int {
	if n.IsPeer() {
		return len(n.PeerIDs)
	}
	return len(n.Members)
}

// Clone returns a deep copy.
func (n Network) Clone() Network {
	c := n
	c.PeerIDs = slices.Clone(n.PeerIDs)
	c.Members = slices.Clone(n.Members)
	return c
}

// Equal compares two networks field by field, including ID and colour.
func (n Network) Equal(o Network) bool {
	return n.ID == o.ID && n.Color == o.Color && n.SameShape(o)
}

// SameShape compares two networks ignoring ID and colour.
func (n Network) SameShape(o Network) bool {
	return n.Type == o.Type &&
		n.MasterID == o.MasterID &&
		n.MasterCompIndex == o.MasterCompIndex &&
		slices.Equal(n.PeerIDs, o.PeerIDs) &&
		slices.Equal(n.Members, o.Members)
}

// CloneNetworks deep-copies a network list. A nil input yields an empty list.
func CloneNetworks(networks []Network) []Network {
	out := make([]Network, 0, len(networks))
	for _, n := range networks {
		out = append(out, n.Clone())
	}
	return out
}

// EqualNetworks reports whether two lists hold equal networks in equal order.
func EqualNetworks(a, b []Network) bool {
	return slices.EqualFunc(a, b, Network.Equal)
}

// Result is returned by every mutating operation.
type Result struct {
	Success  bool      `json:"success"`
	Networks []Network `json:"networks"`
	Message  string    `json:"message,omitempty"`
}
