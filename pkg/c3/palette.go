package c3

// DefaultPalette is the ordered set of network colours. New networks take
// the first colour not already in use.
var DefaultPalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#42d4f4", "#f032e6", "#bfef45",
	"#fabed4", "#469990", "#dcbeff", "#9a6324",
	"#800000", "#aaffc3", "#808000", "#000075",
}

func nextColor(palette []string, networks []Network) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	used := make(map[string]bool, len(networks))
	for _, n := range networks {
		used[n.Color] = true
	}
	for _, c := range palette {
		if !used[c] {
			return c
		}
	}
	return palette[len(networks)%len(palette)]
}
