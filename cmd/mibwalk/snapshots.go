package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mibwalk/internal/repository/sqlite"
)

var (
	snapshotsLimit  int
	snapshotsLatest bool
)

func init() {
	cmd := newSnapshotsCmd()
	cmd.Flags().IntVarP(&snapshotsLimit, "limit", "n", 20, "Maximum snapshots to list (0 for all)")
	cmd.Flags().BoolVar(&snapshotsLatest, "latest", false, "Show the newest snapshot in full")
	rootCmd.AddCommand(cmd)
}

func newSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots [target]",
		Short: "Browse stored poll snapshots",
		Long: `The snapshots command reads the database written by "poll". Without a
target it lists the targets that have snapshots.

Example:
  mibwalk snapshots
  mibwalk snapshots core-switch -n 5
  mibwalk snapshots core-switch --latest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshots(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func runSnapshots(ctx context.Context, w io.Writer, args []string) error {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	if len(args) == 0 {
		targets, err := repo.Targets(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(w, targets)
		}
		for _, t := range targets {
			fmt.Fprintln(w, t)
		}
		return nil
	}

	target := endpointFor(args[0]).Name
	if snapshotsLatest {
		snap, err := repo.LatestSnapshot(ctx, target)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(w, snap)
		}
		printSnapshot(w, snap)
		return nil
	}

	snaps, err := repo.ListSnapshots(ctx, target, snapshotsLimit)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(w, snaps)
	}
	for _, s := range snaps {
		fmt.Fprintf(w, "%s  %-20s %-11s %8s  %d errors\n",
			s.ID.String()[:8], humanize.Time(s.TakenAt), s.Status,
			s.Elapsed.Round(time.Millisecond), len(s.Errors))
	}
	return nil
}
