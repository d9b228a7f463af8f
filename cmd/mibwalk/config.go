package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `The config command prints where the config was loaded from and the
settings after defaults, posture and flags are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(w, cfg)
			}
			path := cfgPath
			if path == "" {
				path = "(none, using defaults)"
			}
			fmt.Fprintf(w, "Config:    %s\n", path)
			fmt.Fprintf(w, "Database:  %s\n", cfg.Database.Path)
			fmt.Fprintln(w, cfg.Summary())
			return nil
		},
	})
}
