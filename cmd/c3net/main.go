package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/c3net/pkg/autoconfig"
	"github.com/dd0wney/c3net/pkg/c3"
	"github.com/dd0wney/c3net/pkg/config"
	"github.com/dd0wney/c3net/pkg/logging"
	"github.com/dd0wney/c3net/pkg/metrics"
	"github.com/dd0wney/c3net/pkg/roster"
	"github.com/dd0wney/c3net/pkg/tax"
)

// options holds the parsed command line.
type options struct {
	RosterPath string
	ConfigPath string
	Auto       bool
	JSON       bool
	LogLevel   string
}

// report is the -json output.
type report struct {
	Units    []c3.Unit         `json:"units"`
	Groups   map[string]string `json:"groups,omitempty"`
	Networks []c3.Network      `json:"networks"`
	Tax      []tax.Breakdown   `json:"tax"`
	TotalTax float64           `json:"totalTax"`
	Auto     *autoconfig.Stats `json:"autoConfigure,omitempty"`
}

func main() {
	var opts options
	flag.StringVar(&opts.RosterPath, "roster", "", "Roster file (YAML or JSON)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Config file (YAML); built-in defaults when empty")
	flag.BoolVar(&opts.Auto, "auto", false, "Auto-configure networks before printing")
	flag.BoolVar(&opts.JSON, "json", false, "Print networks and tax as JSON")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.Parse()

	if opts.RosterPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: c3net -roster <file> [-config <file>] [-auto] [-json] [-log-level <level>]")
		os.Exit(2)
	}

	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "c3net: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdout, stderr io.Writer) error {
	cfg := config.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	level := cfg.Level()
	if opts.LogLevel != "" {
		level = logging.ParseLevel(opts.LogLevel)
	}

	logger := logging.NewJSONLogger(stderr, level).With(logging.Component("c3net"))
	reg := metrics.DefaultRegistry()
	engine := c3.NewEngine(cfg.EngineOptions(logger, reg)...)

	f, err := roster.Load(opts.RosterPath)
	if err != nil {
		return err
	}
	session := roster.NewSession(f, roster.WithEngine(engine), roster.WithLogger(logger))
	logger.Info("roster loaded",
		logging.String("path", opts.RosterPath),
		logging.Int("units", len(f.Units)),
		logging.Int("networks", len(session.Networks())),
	)

	var stats *autoconfig.Stats
	if opts.Auto {
		configurator := autoconfig.New(autoconfig.WithEngine(engine), autoconfig.WithLogger(logger))
		s := session.AutoConfigure(configurator)
		stats = &s
	}

	snap := session.Snapshot()
	calc := tax.NewCalculator(session.Nodes(), cfg.Tax)
	total, breakdown := calc.ForceTax(snap.Networks)

	if opts.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			Units:    snap.Units,
			Groups:   snap.Groups,
			Networks: snap.Networks,
			Tax:      breakdown,
			TotalTax: total,
			Auto:     stats,
		})
	}

	p := newPrinter(stdout, session.Nodes())
	p.networks(snap.Networks)
	p.tax(breakdown, total)
	if stats != nil {
		p.stats(*stats)
	}
	return nil
}
