package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mibwalk/internal/codec"
	"mibwalk/internal/domain"
	"mibwalk/internal/repository/sqlite"
)

var (
	exportFormat  string
	exportOutput  string
	exportHistory bool
	importFormat  string
)

func init() {
	exp := newExportCmd()
	exp.Flags().StringVarP(&exportFormat, "format", "f", "yaml", "Output format: json, yaml, ansible-inventory")
	exp.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
	exp.Flags().BoolVar(&exportHistory, "history", false, "Export every stored snapshot without interface tables, not just the newest per target")

	imp := newImportCmd()
	imp.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: json or yaml (default from the file extension)")

	rootCmd.AddCommand(exp, imp)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [target...]",
		Short: "Export stored snapshots",
		Long: `The export command writes the newest snapshot of each target, or of the
named ones, from the database. The ansible-inventory format groups hosts
by poll status and carries the system group as host variables.

Example:
  mibwalk export -f ansible-inventory -o inventory.yaml
  mibwalk export core-switch --history -f json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

func runExport(ctx context.Context, w io.Writer, args []string) error {
	exp, err := codec.ExporterFor(exportFormat)
	if err != nil {
		return err
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	targets := make([]string, len(args))
	for i, arg := range args {
		targets[i] = endpointFor(arg).Name
	}
	if len(targets) == 0 {
		if targets, err = repo.Targets(ctx); err != nil {
			return err
		}
	}

	var snaps []*domain.Snapshot
	for _, target := range targets {
		if exportHistory {
			list, err := repo.ListSnapshots(ctx, target, 0)
			if err != nil {
				return err
			}
			snaps = append(snaps, list...)
			continue
		}
		snap, err := repo.LatestSnapshot(ctx, target)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
		snaps = append(snaps, snap)
	}

	if exportOutput == "" {
		return exp.Export(snaps, w)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return err
	}
	if err := exp.Export(snaps, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Int("snapshots", len(snaps)).Str("path", exportOutput).Msg("exported")
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load snapshots exported as json or yaml into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runImport(ctx context.Context, w io.Writer, path string) error {
	format := importFormat
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		default:
			format = "yaml"
		}
	}
	imp, err := codec.ImporterFor(format)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snaps, err := imp.Parse(f)
	if err != nil {
		return err
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	for _, s := range snaps {
		if err := repo.SaveSnapshot(ctx, s); err != nil {
			return fmt.Errorf("snapshot %s: %w", s.ID, err)
		}
	}
	fmt.Fprintf(w, "imported %d snapshots\n", len(snaps))
	return nil
}
