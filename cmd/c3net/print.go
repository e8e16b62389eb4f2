package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/c3net/pkg/autoconfig"
	"github.com/dd0wney/c3net/pkg/c3"
	"github.com/dd0wney/c3net/pkg/tax"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))
)

type printer struct {
	w    io.Writer
	byID map[string]*c3.Node
}

func newPrinter(w io.Writer, nodes []*c3.Node) *printer {
	return &printer{w: w, byID: c3.NodeMap(nodes)}
}

func (p *printer) label(id string) string {
	if n := p.byID[id]; n != nil && n.Unit.Name != "" && n.Unit.Name != id {
		return fmt.Sprintf("%s (%s)", id, n.Unit.Name)
	}
	return id
}

func networkStyle(n c3.Network) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(n.Color))
}

// networks prints peer meshes as lists and master networks as trees rooted
// at their top-level master.
func (p *printer) networks(networks []c3.Network) {
	fmt.Fprintln(p.w, titleStyle.Render(fmt.Sprintf("Networks (%d)", len(networks))))
	if len(networks) == 0 {
		fmt.Fprintln(p.w, mutedStyle.Render("  none"))
		return
	}

	for _, n := range networks {
		if !n.IsPeer() && c3.FindParentNetwork(networks, n.MasterID, n.MasterCompIndex) != nil {
			continue // printed under its parent
		}
		fmt.Fprintf(p.w, "%s %s\n", networkStyle(n).Render("● "+n.Type.String()), mutedStyle.Render(n.ID))

		if n.IsPeer() {
			for _, id := range n.PeerIDs {
				fmt.Fprintf(p.w, "  - %s\n", p.label(id))
			}
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "  %s\n", p.masterLabel(n.MasterPin()))
		p.members(&b, networks, n, "  ")
		fmt.Fprint(p.w, b.String())
	}
}

func (p *printer) masterLabel(pin c3.Pin) string {
	return fmt.Sprintf("%s [master %d]", p.label(pin.UnitID), pin.Comp)
}

func (p *printer) members(b *strings.Builder, networks []c3.Network, n c3.Network, indent string) {
	for i, m := range n.Members {
		branch, next := "├─ ", "│  "
		if i == len(n.Members)-1 {
			branch, next = "└─ ", "   "
		}

		pin, composite := c3.ParseToken(m)
		if !composite {
			fmt.Fprintf(b, "%s%s%s\n", indent, branch, p.label(m))
			continue
		}

		sub := c3.FindMasterNetwork(networks, pin.UnitID, pin.Comp)
		if sub == nil {
			fmt.Fprintf(b, "%s%s%s\n", indent, branch, p.masterLabel(pin))
			continue
		}
		fmt.Fprintf(b, "%s%s%s\n", indent, branch, networkStyle(*sub).Render(p.masterLabel(pin)))
		p.members(b, networks, *sub, indent+next)
	}
}

func (p *printer) tax(rows []tax.Breakdown, total float64) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, titleStyle.Render("C3 tax"))
	if len(rows) == 0 {
		fmt.Fprintln(p.w, mutedStyle.Render("  no connected units"))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("UNIT", "NETWORK", "TYPE", "UNITS", "VALUE", "RATE", "TAX")

	for _, r := range rows {
		t.Row(
			p.label(r.UnitID),
			r.NetworkID,
			r.NetworkType.String(),
			strconv.Itoa(r.Units),
			fmt.Sprintf("%.0f", r.NetworkValue),
			fmt.Sprintf("%.0f%%", r.Rate*100),
			fmt.Sprintf("%.0f", r.Tax),
		)
	}
	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintln(p.w, totalStyle.Render(fmt.Sprintf("Total: %.0f", total)))
}

func (p *printer) stats(s autoconfig.Stats) {
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%s %d links (peers %d, slaves %d, hierarchy %d, orphans %d) in %d rounds\n",
		titleStyle.Render("Auto-configure:"),
		s.Links(), s.PeerLinks, s.SlaveLinks, s.HierarchyLinks, s.OrphanLinks, s.Rounds)
}
