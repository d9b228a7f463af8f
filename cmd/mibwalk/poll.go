package main

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mibwalk/internal/config"
	"mibwalk/internal/domain"
	"mibwalk/internal/poller"
	"mibwalk/internal/repository/sqlite"
	"mibwalk/internal/watcher"
)

var (
	pollOnce  bool
	pollWatch bool
)

func init() {
	cmd := newPollCmd()
	cmd.Flags().BoolVar(&pollOnce, "once", false, "Poll every target once and exit")
	cmd.Flags().BoolVar(&pollWatch, "watch", true, "Reload targets when the config file changes")
	rootCmd.AddCommand(cmd)
}

func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll [target...]",
		Short: "Poll targets on a schedule and store snapshots",
		Long: `The poll command runs every configured target, or only the ones named,
and stores a snapshot per poll in the database. Without --once it keeps
running until interrupted. While it runs, edits to the config file add,
change or drop targets without a restart, unless targets were named or
--watch=false is given.

Example:
  mibwalk poll
  mibwalk poll --once core-switch 192.0.2.30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
}

// pollEndpoints returns the endpoints named in args, or all configured ones
func pollEndpoints(args []string) []config.Endpoint {
	if len(args) == 0 {
		return cfg.Endpoints()
	}
	out := make([]config.Endpoint, len(args))
	for i, arg := range args {
		out[i] = endpointFor(arg)
	}
	return out
}

func runPoll(ctx context.Context, w io.Writer, args []string) error {
	endpoints := pollEndpoints(args)
	if len(endpoints) == 0 {
		return errors.New("no targets: add some to the config or name them")
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()

	connect, err := connector()
	if err != nil {
		return err
	}

	behavior := cfg.EffectiveBehavior()
	opts := []poller.Option{
		poller.WithConcurrency(behavior.MaxConcurrentPolls),
		poller.WithRetention(cfg.Database.Retention.Duration()),
	}
	if !pollOnce {
		opts = append(opts,
			poller.WithJitter(behavior.JitterPercent),
			poller.WithSnapshotHandler(func(s *domain.Snapshot) {
				if !jsonOut {
					printSnapshotLine(w, s)
				}
			}),
		)
	}

	p := poller.New(repo, connect, opts...)
	for _, ep := range endpoints {
		if err := p.Add(ep); err != nil {
			return err
		}
	}

	if pollOnce {
		snaps, err := p.PollAll(ctx)
		if jsonOut {
			if jerr := printJSON(w, snaps); jerr != nil {
				return jerr
			}
		} else {
			for _, s := range snaps {
				printSnapshotLine(w, s)
			}
		}
		return err
	}

	if err := p.Start(ctx); err != nil {
		return err
	}
	if pollWatch && len(args) == 0 && cfgPath != "" {
		w := watcher.New(cfgPath, func() { reloadTargets(p, cfgPath) })
		go func() {
			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("config watch stopped")
			}
		}()
	}

	log.Info().Str("database", cfg.Database.Path).Msg("polling; interrupt to stop")
	<-ctx.Done()
	return p.Stop()
}

// reloadTargets rereads the config at path and syncs the poller's targets
// with it. A config that fails to load leaves the targets alone.
func reloadTargets(p *poller.Poller, path string) {
	next, _, err := config.LoadFromPath(path)
	if err == nil {
		applyFlags(next)
		err = next.Validate()
	}
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping current targets")
		return
	}

	added, removed, err := p.Sync(next.Endpoints())
	if err != nil {
		log.Warn().Err(err).Msg("some targets could not be added")
	}
	log.Info().Int("added", added).Int("removed", removed).Int("targets", len(p.Targets())).Msg("targets reloaded")
}
