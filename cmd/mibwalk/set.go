package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mibwalk/internal/mib"
)

var setWait time.Duration

// setPollInterval is how often --wait reads ifOperStatus
const setPollInterval = 250 * time.Millisecond

func init() {
	cmd := newSetAdminCmd()
	cmd.Flags().DurationVar(&setWait, "wait", 0, "Wait up to this long for ifOperStatus to follow")
	rootCmd.AddCommand(cmd)
}

func newSetAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-admin <target> <ifIndex> <up|down|testing>",
		Short: "Set ifAdminStatus of one interface",
		Long: `The set-admin command reads ifAdminStatus first and does nothing when
the interface is already in the requested state. Otherwise it writes
ifAdminStatus and prints the status the agent reports back. With --wait it
then polls ifOperStatus until the interface follows. The community needs
write access.

Example:
  mibwalk set-admin 192.0.2.10 5 down --community private
  mibwalk set-admin 192.0.2.10 5 up --wait 30s`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetAdmin(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func runSetAdmin(ctx context.Context, w io.Writer, args []string) error {
	index, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid ifIndex %q", args[1])
	}
	status, err := mib.ParseAdminStatus(args[2])
	if err != nil {
		return err
	}

	dev, closeDev, err := openDevice(ctx, args[0])
	if err != nil {
		return err
	}
	defer closeDev()

	current, err := mib.AdminStatusOf(ctx, dev, uint32(index))
	if err != nil {
		return err
	}
	if current == status {
		if jsonOut {
			return printJSON(w, map[string]any{"if_index": index, "admin_status": current.String(), "changed": false})
		}
		fmt.Fprintf(w, "ifAdminStatus.%d already %s\n", index, current)
		return nil
	}

	got, err := mib.SetAdminStatus(ctx, dev, dev.Tree(), uint32(index), status)
	if err != nil {
		return err
	}
	result := map[string]any{"if_index": index, "admin_status": got.String(), "changed": true}
	if !jsonOut {
		fmt.Fprintf(w, "ifAdminStatus.%d = %s (was %s)\n", index, got, current)
	}

	if setWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, setWait)
		defer cancel()
		oper, err := mib.WaitOperStatus(waitCtx, dev, uint32(index), status.Oper(), setPollInterval)
		if err != nil {
			return err
		}
		result["oper_status"] = oper.String()
		if !jsonOut {
			fmt.Fprintf(w, "ifOperStatus.%d = %s\n", index, oper)
		}
	}

	if jsonOut {
		return printJSON(w, result)
	}
	return nil
}
