package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mibwalk/internal/config"
	"mibwalk/internal/discovery"
)

var (
	discoverFiltered bool
	discoverAdd      bool
)

func init() {
	cmd := newDiscoverCmd()
	cmd.Flags().BoolVar(&discoverFiltered, "filtered", false, "Include open|filtered ports")
	cmd.Flags().BoolVar(&discoverAdd, "add", false, "Add new agents to the config file as targets")
	rootCmd.AddCommand(cmd)
}

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover [network...]",
		Short: "Find SNMP agents with an nmap UDP sweep",
		Long: `The discover command sweeps networks, from the arguments or the
discovery section of the config, for hosts answering on the SNMP ports.
nmap must be installed and UDP scans need root.

Example:
  sudo mibwalk discover 192.0.2.0/24
  sudo mibwalk discover --add`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func runDiscover(ctx context.Context, w io.Writer, args []string) error {
	dc := cfg.Discovery
	if len(args) > 0 {
		dc.Networks = args
	}
	if len(dc.Networks) == 0 {
		return fmt.Errorf("no networks: pass some or set discovery.networks")
	}

	scanner := discovery.FromConfig(dc, discovery.WithFiltered(discoverFiltered))
	agents, err := scanner.Discover(ctx)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(w, agents); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "%-40s %-6s %-14s %-18s %s\n", "ADDRESS", "PORT", "STATE", "MAC", "NAME")
		for _, a := range agents {
			fmt.Fprintf(w, "%-40s %-6d %-14s %-18s %s\n", a.Address, a.Port, a.State, a.MAC, a.Name())
		}
	}

	if discoverAdd {
		return addDiscovered(agents)
	}
	return nil
}

// addDiscovered appends unseen agents to the config file on disk. The file
// is reloaded so flag overrides are not written back.
func addDiscovered(agents []discovery.Agent) error {
	path := cfgPath
	fileCfg := config.DefaultConfig()
	if path == "" {
		path = config.DefaultConfigPath()
	} else {
		var err error
		if fileCfg, _, err = config.LoadFromPath(path); err != nil {
			return err
		}
	}

	known := make(map[string]bool, len(fileCfg.Targets))
	for _, t := range fileCfg.Targets {
		known[t.Address] = true
		known[t.Key()] = true
	}

	added := 0
	for _, a := range agents {
		t := a.Target()
		if known[t.Address] {
			continue
		}
		if known[t.Key()] {
			t.Name = t.Address
		}
		fileCfg.Targets = append(fileCfg.Targets, t)
		known[t.Address] = true
		known[t.Key()] = true
		added++
	}
	if added == 0 {
		log.Info().Msg("discover: no new agents")
		return nil
	}

	if err := fileCfg.Validate(); err != nil {
		return err
	}
	if err := fileCfg.Save(path); err != nil {
		return err
	}
	log.Info().Int("added", added).Str("config", path).Msg("discover: targets saved")
	return nil
}
