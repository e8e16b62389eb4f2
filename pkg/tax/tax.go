// Package tax computes the value surcharge units pay for C3 membership.
//
// Every unit in a network pays a share of the summed base value of all the
// units in that network. Standard and boosted membership use flat rates;
// nova meshes use a per-unit rate that saturates at a cap. A unit in more
// than one network pays only its largest surcharge.
package tax

import (
	"math"
	"slices"

	"github.com/dd0wney/c3net/pkg/c3"
)

// Rates are the surcharge fractions applied to a network's value.
type Rates struct {
	Standard    float64 `yaml:"standard" json:"standard"`
	Boosted     float64 `yaml:"boosted" json:"boosted"`
	NovaPerUnit float64 `yaml:"nova_per_unit" json:"novaPerUnit"`
	NovaMax     float64 `yaml:"nova_max" json:"novaMax"`
}

// DefaultRates returns the tabletop rates.
func DefaultRates() Rates {
	return Rates{
		Standard:    0.05,
		Boosted:     0.07,
		NovaPerUnit: 0.10,
		NovaMax:     0.35,
	}
}

// Breakdown explains one unit's surcharge. A unit outside every network has
// an empty NetworkID and zero Tax.
type Breakdown struct {
	UnitID       string         `json:"unitId"`
	NetworkID    string         `json:"networkId,omitempty"`
	NetworkType  c3.NetworkType `json:"networkType,omitempty"`
	Units        int            `json:"units"`
	NetworkValue float64        `json:"networkValue"`
	Rate         float64        `json:"rate"`
	Boosted      bool           `json:"boosted,omitempty"`
	Tax          float64        `json:"tax"`
}

// Calculator prices C3 membership for a roster.
type Calculator struct {
	rates Rates
	nodes []*c3.Node
	byID  map[string]*c3.Node
}

// NewCalculator creates a calculator over the roster.
func NewCalculator(nodes []*c3.Node, rates Rates) *Calculator {
	return &Calculator{
		rates: rates,
		nodes: nodes,
		byID:  c3.NodeMap(nodes),
	}
}

// Rates returns the rates in use.
func (c *Calculator) Rates() Rates {
	return c.rates
}

// UnitTax returns the largest surcharge the unit owes across the networks
// it takes part in. Hierarchies are valued as a whole from their root, and a
// unit listed under more than one of its own pins is counted once.
func (c *Calculator) UnitTax(unitID string, networks []c3.Network) Breakdown {
	best := Breakdown{UnitID: unitID}
	node := c.byID[unitID]
	if node == nil {
		return best
	}

	for _, n := range networks {
		comps := participating(node, n)
		if len(comps) == 0 {
			continue
		}
		boosted := slices.ContainsFunc(comps, func(comp c3.Component) bool { return comp.Boosted })
		units := c3.NetworkUnits(networks, n)
		value := c.value(units)
		rate := c.rate(n.Type, len(units), boosted)

		b := Breakdown{
			UnitID:       unitID,
			NetworkID:    n.ID,
			NetworkType:  n.Type,
			Units:        len(units),
			NetworkValue: value,
			Rate:         rate,
			Boosted:      boosted,
			Tax:          math.Round(value * rate),
		}
		if b.Tax > best.Tax || best.NetworkID == "" {
			best = b
		}
	}
	return best
}

// ForceTax returns the total surcharge of the roster and the breakdown of
// every connected unit, in roster order.
func (c *Calculator) ForceTax(networks []c3.Network) (float64, []Breakdown) {
	var total float64
	var out []Breakdown
	for _, n := range c.nodes {
		b := c.UnitTax(n.ID(), networks)
		if b.NetworkID == "" {
			continue
		}
		total += b.Tax
		out = append(out, b)
	}
	return total, out
}

func (c *Calculator) value(units []string) float64 {
	var sum float64
	for _, id := range units {
		if n := c.byID[id]; n != nil {
			sum += n.Unit.BaseValue
		}
	}
	return sum
}

func (c *Calculator) rate(t c3.NetworkType, size int, boosted bool) float64 {
	switch {
	case t == c3.TypeNova:
		return min(c.rates.NovaPerUnit*float64(size), c.rates.NovaMax)
	case boosted:
		return c.rates.Boosted
	default:
		return c.rates.Standard
	}
}

// participating returns the node's components that hold a place in n.
func participating(node *c3.Node, n c3.Network) []c3.Component {
	var comps []c3.Component
	if n.IsPeer() {
		if slices.Contains(n.PeerIDs, node.ID()) {
			if comp, ok := node.PeerComponent(n.Type); ok {
				comps = append(comps, comp)
			}
		}
		return comps
	}

	if n.MasterID == node.ID() {
		if comp, ok := node.Component(n.MasterCompIndex); ok {
			comps = append(comps, comp)
		}
	}
	for _, m := range n.Members {
		pin, composite := c3.ParseToken(m)
		if pin.UnitID != node.ID() {
			continue
		}
		if composite {
			if comp, ok := node.Component(pin.Comp); ok {
				comps = append(comps, comp)
			}
		} else if comp, ok := node.SlaveComponent(n.Type); ok {
			comps = append(comps, comp)
		}
	}
	return comps
}
