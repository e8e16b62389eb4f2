package c3

// TypeLimits holds the size constraints for one network type.
type TypeLimits struct {
	MaxPeers   int `json:"maxPeers,omitempty" yaml:"max_peers,omitempty"`     // peer mesh cap (peer types)
	MaxMembers int `json:"maxMembers,omitempty" yaml:"max_members,omitempty"` // members per master (standard)
	MaxUnits   int `json:"maxUnits,omitempty" yaml:"max_units,omitempty"`     // distinct units in one tree
	MaxDepth   int `json:"maxDepth,omitempty" yaml:"max_depth,omitempty"`     // master -> sub-master -> leaf
}

// Limits maps each network type to its constraints.
type Limits map[NetworkType]TypeLimits

// DefaultLimits returns the tabletop rules' constants.
func DefaultLimits() Limits {
	return Limits{
		TypeStandard: {MaxMembers: 3, MaxUnits: 12, MaxDepth: 2},
		TypeImproved: {MaxPeers: 6, MaxUnits: 6, MaxDepth: 1},
		TypeNaval:    {MaxPeers: 6, MaxUnits: 6, MaxDepth: 1},
		TypeNova:     {MaxPeers: 3, MaxUnits: 3, MaxDepth: 1},
	}
}

// For returns the limits for a type, filling unset fields from the defaults.
func (l Limits) For(t NetworkType) TypeLimits {
	def := DefaultLimits()[t]
	got, ok := l[t]
	if !ok {
		return def
	}
	if got.MaxPeers <= 0 {
		got.MaxPeers = def.MaxPeers
	}
	if got.MaxMembers <= 0 {
		got.MaxMembers = def.MaxMembers
	}
	if got.MaxUnits <= 0 {
		got.MaxUnits = def.MaxUnits
	}
	if got.MaxDepth <= 0 {
		got.MaxDepth = def.MaxDepth
	}
	return got
}

// Merge returns a copy of l with every type in override replacing its entry.
func (l Limits) Merge(override Limits) Limits {
	out := make(Limits, len(l)+len(override))
	for t, v := range l {
		out[t] = v
	}
	for t, v := range override {
		out[t] = v
	}
	return out
}
