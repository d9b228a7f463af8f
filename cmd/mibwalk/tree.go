package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mibwalk/internal/mib"
	"mibwalk/internal/oid"
)

func init() {
	rootCmd.AddCommand(newResolveCmd(), newDescribeCmd(), newMIBsCmd())
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Translate dotted names to numeric OIDs",
		Long: `The resolve command looks names up in the loaded MIB modules.

Example:
  mibwalk resolve internet.mgmt.mib-2.system.sysDescr
  mibwalk resolve --mib cisco-sb internet.private.enterprises.cisco`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.OutOrStdout(), args)
		},
	}
}

func runResolve(w io.Writer, args []string) error {
	tree, err := loadTree(cfg.MIBs)
	if err != nil {
		return err
	}

	out := make(map[string]string, len(args))
	for _, name := range args {
		o, err := tree.Resolve(name)
		if err != nil {
			return err
		}
		out[name] = o.String()
		if !jsonOut {
			fmt.Fprintf(w, "%s = %s\n", name, o)
		}
	}
	if jsonOut {
		return printJSON(w, out)
	}
	return nil
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <oid>...",
		Short: "Translate numeric OIDs to dotted names",
		Long: `The describe command finds the deepest known node for each OID.
Trailing arcs with no node, such as a row index, are kept as numbers.

Example:
  mibwalk describe 1.3.6.1.2.1.2.2.1.2.3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd.OutOrStdout(), args)
		},
	}
}

func runDescribe(w io.Writer, args []string) error {
	tree, err := loadTree(cfg.MIBs)
	if err != nil {
		return err
	}

	out := make(map[string]string, len(args))
	for _, arg := range args {
		o, err := oid.Parse(arg)
		if err != nil {
			return err
		}
		name, err := tree.Describe(o)
		if err != nil {
			return err
		}
		out[o.String()] = name.String()
		if !jsonOut {
			fmt.Fprintf(w, "%s = %s\n", o, name)
		}
	}
	if jsonOut {
		return printJSON(w, out)
	}
	return nil
}

func newMIBsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mibs",
		Short: "List the built-in MIB modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			modules := mib.Modules()
			if jsonOut {
				type entry struct {
					Name        string `json:"name"`
					Description string `json:"description"`
				}
				out := make([]entry, len(modules))
				for i, m := range modules {
					out[i] = entry{m.Name, m.Description}
				}
				return printJSON(w, out)
			}
			for _, m := range modules {
				fmt.Fprintf(w, "%-10s %s\n", m.Name, m.Description)
			}
			return nil
		},
	}
}
