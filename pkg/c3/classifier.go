package c3

import "strings"

// Flag is an equipment capability flag recognised by the classifier.
type Flag string

const (
	FlagMaster          Flag = "C3M"
	FlagBoostedMaster   Flag = "C3MB"
	FlagEmergencyMaster Flag = "C3EM"
	FlagSlave           Flag = "C3S"
	FlagBoostedSlave    Flag = "C3SB"
	FlagImproved        Flag = "C3I"
	FlagNaval           Flag = "NC3"
	FlagNova            Flag = "NOVA"
)

type flagInfo struct {
	typ     NetworkType
	role    Role
	boosted bool
}

var flagTable = map[Flag]flagInfo{
	FlagMaster:          {TypeStandard, RoleMaster, false},
	FlagBoostedMaster:   {TypeStandard, RoleMaster, true},
	FlagEmergencyMaster: {TypeStandard, RoleMaster, false},
	FlagSlave:           {TypeStandard, RoleSlave, false},
	FlagBoostedSlave:    {TypeStandard, RoleSlave, true},
	FlagImproved:        {TypeImproved, RolePeer, false},
	FlagNaval:           {TypeNaval, RolePeer, false},
	FlagNova:            {TypeNova, RolePeer, false},
}

// ParseFlag normalises a raw flag string. Unknown flags return false.
func ParseFlag(s string) (Flag, bool) {
	f := Flag(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := flagTable[f]
	return f, ok
}

// Classify derives the unit's C3 components from its equipment list, one per
// recognised flag, indexed in encounter order.
func Classify(unit Unit) []Component {
	var comps []Component
	for _, eq := range unit.Equipment {
		for _, raw := range eq.Flags {
			flag, ok := ParseFlag(raw)
			if !ok {
				continue
			}
			info := flagTable[flag]
			comps = append(comps, Component{
				UnitID:  unit.ID,
				Index:   len(comps),
				Type:    info.typ,
				Role:    info.role,
				Boosted: info.boosted,
				Kind:    flag,
			})
		}
	}
	return comps
}
