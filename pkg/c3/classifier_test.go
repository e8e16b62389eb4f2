package c3

import "testing"

func TestClassify(t *testing.T) {
	u := Unit{
		ID: "atlas",
		Equipment: []Equipment{
			{Name: "Medium Laser"},
			{Name: "C3 Master", Flags: []string{"c3m"}},
			{Name: "Targeting Computer", Flags: []string{"TC"}},
			{Name: "Boosted C3 Master", Flags: []string{"C3MB"}},
			{Name: "Improved C3", Flags: []string{" C3I "}},
		},
	}

	comps := Classify(u)
	if len(comps) != 3 {
		t.Fatalf("Classify() returned %d components, want 3", len(comps))
	}

	want := []Component{
		{UnitID: "atlas", Index: 0, Type: TypeStandard, Role: RoleMaster, Kind: FlagMaster},
		{UnitID: "atlas", Index: 1, Type: TypeStandard, Role: RoleMaster, Boosted: true, Kind: FlagBoostedMaster},
		{UnitID: "atlas", Index: 2, Type: TypeImproved, Role: RolePeer, Kind: FlagImproved},
	}
	for i, c := range comps {
		if c != want[i] {
			t.Errorf("component %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestClassify_FlagTable(t *testing.T) {
	tests := []struct {
		flag    string
		typ     NetworkType
		role    Role
		boosted bool
	}{
		{"C3M", TypeStandard, RoleMaster, false},
		{"C3MB", TypeStandard, RoleMaster, true},
		{"C3EM", TypeStandard, RoleMaster, false},
		{"C3S", TypeStandard, RoleSlave, false},
		{"C3SB", TypeStandard, RoleSlave, true},
		{"C3I", TypeImproved, RolePeer, false},
		{"NC3", TypeNaval, RolePeer, false},
		{"NOVA", TypeNova, RolePeer, false},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			comps := Classify(unit("u", tt.flag))
			if len(comps) != 1 {
				t.Fatalf("got %d components, want 1", len(comps))
			}
			c := comps[0]
			if c.Type != tt.typ || c.Role != tt.role || c.Boosted != tt.boosted {
				t.Errorf("got %s/%s/boosted=%v, want %s/%s/boosted=%v",
					c.Type, c.Role, c.Boosted, tt.typ, tt.role, tt.boosted)
			}
		})
	}
}

func TestClassify_NoC3(t *testing.T) {
	n := NewNode(Unit{ID: "locust", Equipment: []Equipment{{Name: "Machine Gun"}}})
	if n.HasC3() {
		t.Error("unit without C3 equipment should have no components")
	}
	if _, ok := n.Component(0); ok {
		t.Error("Component(0) should not exist")
	}
}

func TestNewNode_Recomputes(t *testing.T) {
	u := unit("hunchback", "C3S")
	first := NewNode(u)

	u.Equipment = append(u.Equipment, Equipment{Name: "C3 Master", Flags: []string{"C3M"}})
	second := NewNode(u)

	if len(first.Components) != 1 || len(second.Components) != 2 {
		t.Errorf("components = %d then %d, want 1 then 2", len(first.Components), len(second.Components))
	}
	if len(second.MasterPins(TypeStandard)) != 1 {
		t.Error("expected one master pin after refit")
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		token     string
		pin       Pin
		composite bool
	}{
		{"atlas", Pin{UnitID: "atlas"}, false},
		{"atlas:1", Pin{UnitID: "atlas", Comp: 1}, true},
		{"a:b:2", Pin{UnitID: "a:b", Comp: 2}, true},
		{"atlas:", Pin{UnitID: "atlas:"}, false},
		{":3", Pin{UnitID: ":3"}, false},
		{"atlas:x", Pin{UnitID: "atlas:x"}, false},
	}
	for _, tt := range tests {
		pin, composite := ParseToken(tt.token)
		if pin != tt.pin || composite != tt.composite {
			t.Errorf("ParseToken(%q) = %v,%v want %v,%v", tt.token, pin, composite, tt.pin, tt.composite)
		}
	}

	p := Pin{UnitID: "atlas", Comp: 3}
	if got, _ := ParseToken(p.Token()); got != p {
		t.Errorf("round trip of %v gave %v", p, got)
	}
}
