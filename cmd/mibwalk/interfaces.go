package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mibwalk/internal/mib"
	"mibwalk/internal/poller"
	"mibwalk/internal/walk"
)

var interfacesExt bool

func init() {
	cmd := newInterfacesCmd()
	cmd.Flags().BoolVar(&interfacesExt, "ext", true, "Merge ifXTable names, aliases and 64-bit counters")
	rootCmd.AddCommand(cmd, newPortsCmd())
}

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces <target>",
		Short: "Show the interface table of an agent",
		Long: `The interfaces command walks ifTable and checks every row up to ifNumber
is present. With --ext (the default) ifXTable is merged in.

Example:
  mibwalk interfaces 192.0.2.10
  mibwalk interfaces core-switch --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterfaces(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runInterfaces(ctx context.Context, w io.Writer, target string) error {
	dev, closeDev, err := openDevice(ctx, target)
	if err != nil {
		return err
	}
	defer closeDev()

	table, err := mib.InterfacesFrom(ctx, dev)
	if errors.Is(err, walk.ErrTableIndexGap) {
		log.Warn().Err(err).Str("target", target).Msg("ifTable is sparse, showing the rows reported")
	} else if err != nil {
		return err
	}
	states := poller.InterfaceStates(table)

	if interfacesExt {
		xs, err := mib.InterfaceExtensionsFrom(ctx, dev)
		if err != nil {
			return err
		}
		poller.MergeExtensions(states, xs)
	}

	if jsonOut {
		return printJSON(w, states)
	}
	printInterfaces(w, states)
	return nil
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports <target>",
		Short: "Show the Cisco small-business switch port table",
		Long: `The ports command walks swIfTable. The cisco-sb module is loaded
automatically.

Example:
  mibwalk ports 192.0.2.20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPorts(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

type portView struct {
	Index       uint32 `json:"index"`
	Duplex      string `json:"duplex,omitempty"`
	AdminStatus string `json:"admin_status,omitempty"`
	DefaultTag  int32  `json:"default_vlan,omitempty"`
	Suspended   bool   `json:"suspended"`
	LockedMACs  int32  `json:"locked_macs,omitempty"`
}

func runPorts(ctx context.Context, w io.Writer, target string) error {
	dev, closeDev, err := openDevice(ctx, target, "cisco-sb")
	if err != nil {
		return err
	}
	defer closeDev()

	ports, err := mib.SwitchPortsFrom(ctx, dev)
	if err != nil {
		return err
	}

	var views []portView
	for idx, p := range ports.All() {
		v := portView{
			Index:      idx,
			DefaultTag: p.DefaultTag,
			Suspended:  p.OperSuspended == 1,
			LockedMACs: p.LockMACCount,
		}
		if p.DuplexOperMode != 0 {
			v.Duplex = p.DuplexOperMode.String()
		}
		if p.AdminStatus != 0 {
			v.AdminStatus = p.AdminStatus.String()
		}
		views = append(views, v)
	}

	if jsonOut {
		return printJSON(w, views)
	}

	fmt.Fprintf(w, "%-6s %-8s %-8s %-6s %-9s\n", "INDEX", "DUPLEX", "ADMIN", "VLAN", "SUSPENDED")
	for _, v := range views {
		fmt.Fprintf(w, "%-6d %-8s %-8s %-6d %-9t\n", v.Index, v.Duplex, v.AdminStatus, v.DefaultTag, v.Suspended)
	}
	return nil
}
