package c3

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connect is CreateConnection that fails the test on rejection.
func connect(t *testing.T, e *Engine, networks []Network, src *Node, sc int, dst *Node, dc int) []Network {
	t.Helper()
	res := e.CreateConnection(networks, src, sc, dst, dc)
	require.Truef(t, res.Success, "connect %s:%d -> %s:%d: %s", src.ID(), sc, dst.ID(), dc, res.Message)
	return res.Networks
}

func TestMasterFanOut(t *testing.T) {
	e := newTestEngine()
	a := node("A", "C3M")
	slaves := []*Node{node("B", "C3S"), node("C", "C3S"), node("D", "C3S"), node("E", "C3S")}

	var networks []Network
	for _, s := range slaves[:3] {
		networks = connect(t, e, networks, a, 0, s, 0)
	}

	res := e.CreateConnection(networks, a, 0, slaves[3], 0)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	assert.True(t, EqualNetworks(networks, res.Networks), "failed connection must not change networks")

	v := e.CanConnect(a, 0, slaves[3], 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrCapacityExceeded)

	require.Len(t, res.Networks, 1)
	assert.Equal(t, []string{"B", "C", "D"}, res.Networks[0].Members)
	assert.Equal(t, "A", res.Networks[0].MasterID)
}

func TestPeerMeshGrows(t *testing.T) {
	e := newTestEngine()
	x, y, z := node("X", "C3I"), node("Y", "C3I"), node("Z", "C3I")

	networks := connect(t, e, nil, x, 0, y, 0)
	require.Len(t, networks, 1)
	assert.ElementsMatch(t, []string{"X", "Y"}, networks[0].PeerIDs)

	networks = connect(t, e, networks, z, 0, x, 0)
	require.Len(t, networks, 1, "Z must join the existing mesh")
	assert.ElementsMatch(t, []string{"X", "Y", "Z"}, networks[0].PeerIDs)
	assert.Equal(t, TypeImproved, networks[0].Type)
}

func TestMasterBecomesSubMaster(t *testing.T) {
	e := newTestEngine()
	m1, m2 := node("M1", "C3M"), node("M2", "C3M")
	s1, s2 := node("S1", "C3S"), node("S2", "C3S")

	networks := connect(t, e, nil, m1, 0, s1, 0)
	networks = connect(t, e, networks, s2, 0, m1, 0)
	networks = connect(t, e, networks, m1, 0, m2, 0)

	top := FindMasterNetwork(networks, "M2", 0)
	require.NotNil(t, top)
	assert.Equal(t, []string{"M1:0"}, top.Members)

	sub := FindMasterNetwork(networks, "M1", 0)
	require.NotNil(t, sub)
	assert.Equal(t, []string{"S1", "S2"}, sub.Members)

	subs := SubNetworks(networks, *top)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)

	parent := FindParentNetwork(networks, "M1", 0)
	require.NotNil(t, parent)
	assert.Equal(t, top.ID, parent.ID)

	assert.Equal(t, []string{"M2", "M1", "S1", "S2"}, TreeUnits(networks, Pin{UnitID: "M2"}))

	// Reversing the link would make M2 a descendant of its own descendant.
	v := e.CanConnect(m2, 0, m1, 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrHierarchyCycle)

	res := e.CreateConnection(networks, m2, 0, m1, 0)
	assert.False(t, res.Success)
	assert.True(t, EqualNetworks(networks, res.Networks))
}

func TestCanConnect_Rejections(t *testing.T) {
	e := newTestEngine()
	m1, m2, m3 := node("M1", "C3M"), node("M2", "C3M"), node("M3", "C3M")
	s1, s2, s3 := node("S1", "C3S"), node("S2", "C3S"), node("S3", "C3S")
	cmd := node("CMD", "C3M", "C3M")
	i1 := node("I1", "C3I")
	n1 := node("N1", "NOVA")

	// M1{S1} under M2, M3{S2} standalone.
	networks := connect(t, e, nil, m1, 0, s1, 0)
	networks = connect(t, e, networks, m1, 0, m2, 0)
	networks = connect(t, e, networks, m3, 0, s2, 0)

	tests := []struct {
		name    string
		src     *Node
		sc      int
		dst     *Node
		dc      int
		wantErr error
	}{
		{"type mismatch", i1, 0, n1, 0, ErrIncompatibleType},
		{"standard with peer", m3, 0, i1, 0, ErrIncompatibleType},
		{"self pin", cmd, 0, cmd, 0, ErrSelfConnection},
		{"missing component", s3, 4, m3, 0, ErrUnknownComponent},
		{"nil node", nil, 0, m3, 0, ErrUnknownComponent},
		{"slave to slave", s3, 0, s2, 0, ErrRoleMismatch},
		{"slave already attached elsewhere", m3, 0, s1, 0, ErrAlreadyMember},
		{"slave already attached here", s2, 0, m3, 0, ErrAlreadyConnected},
		{"sub-master already nested", m1, 0, m3, 0, ErrAlreadyMember},
		{"target nested", m3, 0, m1, 0, ErrDepthExceeded},
		{"source commands sub-masters", m2, 0, m3, 0, ErrDepthExceeded},
		{"slave cannot change master", s1, 0, cmd, 0, ErrAlreadyMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.CanConnect(tt.src, tt.sc, tt.dst, tt.dc, networks)
			if v.Valid {
				t.Fatal("expected rejection")
			}
			if !errors.Is(v.Err(), tt.wantErr) {
				t.Errorf("Err() = %v, want %v", v.Err(), tt.wantErr)
			}
			if v.Reason == "" {
				t.Error("rejection should carry a reason")
			}
		})
	}
}

func TestCanConnect_SubMasterCountsAsLevel(t *testing.T) {
	e := newTestEngine()
	a, b, c := node("A", "C3M"), node("B", "C3M"), node("C", "C3M")
	s := node("S", "C3S")

	// A commands B, which has no members of its own yet.
	networks := connect(t, e, nil, b, 0, a, 0)
	assert.Equal(t, 2, Height(networks, Pin{UnitID: "A"}))

	v := e.CanConnect(a, 0, c, 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrDepthExceeded)

	res := e.CreateConnection(networks, a, 0, c, 0)
	assert.False(t, res.Success)
	assert.True(t, EqualNetworks(networks, res.Networks))

	v = e.CanConnect(c, 0, b, 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrDepthExceeded, "B is already a sub-master")

	// B may still take slaves, and every accepted link survives cleaning.
	networks = connect(t, e, networks, b, 0, s, 0)
	assert.True(t, EqualNetworks(networks, e.ValidateAndCleanNetworks(networks, NodeMap([]*Node{a, b, c, s}))))
}

func TestCanConnect_InternalAttach(t *testing.T) {
	e := newTestEngine()
	cmd := node("CMD", "C3M", "C3M")
	s1 := node("S1", "C3S")

	networks := connect(t, e, nil, cmd, 1, s1, 0)
	networks = connect(t, e, networks, cmd, 1, cmd, 0)

	top := FindMasterNetwork(networks, "CMD", 0)
	require.NotNil(t, top)
	assert.Equal(t, []string{"CMD:1"}, top.Members)
	assert.Equal(t, []string{"CMD", "S1"}, TreeUnits(networks, Pin{UnitID: "CMD"}))
}

func TestCanConnect_RoleConflict(t *testing.T) {
	e := newTestEngine()
	hybrid := node("H", "C3S", "C3M")
	m := node("M", "C3M")
	s := node("S", "C3S")

	networks := connect(t, e, nil, hybrid, 0, m, 0)

	v := e.CanConnect(hybrid, 1, s, 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrRoleConflict)
}

func TestCanConnect_PeerCapacity(t *testing.T) {
	e := newTestEngine()
	nodes := []*Node{node("N1", "NOVA"), node("N2", "NOVA"), node("N3", "NOVA"), node("N4", "NOVA"), node("N5", "NOVA")}

	networks := connect(t, e, nil, nodes[0], 0, nodes[1], 0)
	networks = connect(t, e, networks, nodes[2], 0, nodes[0], 0)

	v := e.CanConnect(nodes[3], 0, nodes[1], 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrCapacityExceeded)

	v = e.CanConnect(nodes[0], 0, nodes[2], 0, networks)
	assert.ErrorIs(t, v.Err(), ErrAlreadyConnected)

	// Two 2-unit improved meshes merge up to the cap of six.
	imp := []*Node{node("I1", "C3I"), node("I2", "C3I"), node("I3", "C3I"), node("I4", "C3I")}
	networks = connect(t, e, networks, imp[0], 0, imp[1], 0)
	networks = connect(t, e, networks, imp[2], 0, imp[3], 0)
	assert.True(t, e.CanConnect(imp[1], 0, imp[3], 0, networks).Valid)
}

func TestCanConnect_UnitCap(t *testing.T) {
	e := newTestEngine(WithLimits(Limits{TypeStandard: {MaxMembers: 3, MaxUnits: 4, MaxDepth: 2}}))
	m1, m2 := node("M1", "C3M"), node("M2", "C3M")
	s1, s2, s3 := node("S1", "C3S"), node("S2", "C3S"), node("S3", "C3S")

	networks := connect(t, e, nil, m1, 0, s1, 0)
	networks = connect(t, e, networks, m1, 0, s2, 0)
	networks = connect(t, e, networks, m2, 0, s3, 0)

	v := e.CanConnect(m2, 0, m1, 0, networks)
	require.False(t, v.Valid)
	assert.ErrorIs(t, v.Err(), ErrNetworkTooLarge)
}

func TestVerdict_Err(t *testing.T) {
	if err := allow().Err(); err != nil {
		t.Errorf("valid verdict returned error %v", err)
	}
	v := reject(ErrDepthExceeded, "too deep")
	if !errors.Is(v.Err(), ErrDepthExceeded) {
		t.Errorf("Err() = %v, should wrap ErrDepthExceeded", v.Err())
	}
	if v.Reason != "too deep" {
		t.Errorf("Reason = %q", v.Reason)
	}
}
