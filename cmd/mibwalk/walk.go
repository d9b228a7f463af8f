package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"mibwalk/internal/oid"
)

func init() {
	rootCmd.AddCommand(newWalkCmd(), newGetCmd())
}

func newWalkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "walk <target> [name|oid]",
		Short: "Walk a subtree and print every binding by name",
		Long: `The walk command fetches a subtree, sorts it and names each OID from the
loaded MIB modules. The default root is mib-2.

Example:
  mibwalk walk 192.0.2.10
  mibwalk walk 192.0.2.10 internet.mgmt.mib-2.interfaces.ifTable
  mibwalk walk 192.0.2.10 1.3.6.1.4.1.9 --mib cisco-sb`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "internet.mgmt.mib-2"
			if len(args) == 2 {
				root = args[1]
			}
			return runWalk(cmd.Context(), cmd.OutOrStdout(), args[0], root)
		},
	}
}

type bindingView struct {
	OID   string `json:"oid"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

func runWalk(ctx context.Context, w io.Writer, target, rootArg string) error {
	dev, closeDev, err := openDevice(ctx, target)
	if err != nil {
		return err
	}
	defer closeDev()

	root, err := parseTarget(dev.Tree(), rootArg)
	if err != nil {
		return err
	}
	vals, err := dev.Walk(ctx, root)
	if err != nil {
		return err
	}

	views := make([]bindingView, 0, vals.Len())
	for _, p := range vals.Pairs() {
		views = append(views, bindingView{
			OID:   p.OID.String(),
			Name:  describe(dev.Tree(), p.OID),
			Type:  p.Value.Kind().String(),
			Value: p.Value.String(),
		})
	}

	if jsonOut {
		return printJSON(w, views)
	}
	for _, v := range views {
		fmt.Fprintf(w, "%s = %s: %s\n", v.Name, v.Type, v.Value)
	}
	return nil
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <target> <name> [instance...]",
		Short: "Read a single object",
		Long: `The get command reads one object by dotted name. Instance arcs follow
as separate arguments; scalars take instance 0.

Example:
  mibwalk get 192.0.2.10 internet.mgmt.mib-2.system.sysName 0
  mibwalk get 192.0.2.10 internet.mgmt.mib-2.interfaces.ifTable.ifEntry.ifDescr 3`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], args[2:])
		},
	}
}

func runGet(ctx context.Context, w io.Writer, target, name string, instanceArgs []string) error {
	instance, err := parseArcs(instanceArgs)
	if err != nil {
		return err
	}

	dev, closeDev, err := openDevice(ctx, target)
	if err != nil {
		return err
	}
	defer closeDev()

	v, err := dev.Get(ctx, name, instance...)
	if err != nil {
		return err
	}

	base, err := dev.Tree().Resolve(name)
	if err != nil {
		return err
	}
	o := base.Append(oid.New(instance...))
	view := bindingView{OID: o.String(), Name: describe(dev.Tree(), o), Type: v.Kind().String(), Value: v.String()}
	if jsonOut {
		return printJSON(w, view)
	}
	fmt.Fprintf(w, "%s = %s: %s\n", view.Name, view.Type, view.Value)
	return nil
}

func parseArcs(args []string) ([]uint32, error) {
	arcs := make([]uint32, len(args))
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid instance arc %q", a)
		}
		arcs[i] = uint32(n)
	}
	return arcs, nil
}
