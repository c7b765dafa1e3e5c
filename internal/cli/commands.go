package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/usecase"
	"github.com/spf13/cobra"
)

func parseMatchID(raw string) (match.ID, error) {
	id, err := match.ParseID(raw)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid match id", err)
	}
	return id, nil
}

func NewLiveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "live [match-id]",
		Short: "List live matches, or show the live record of one match",
		Long: `Without an argument, lists every match currently being played. A feed
failure is logged and yields an empty list.

With a match id, shows that match's live record and fails when the match
is not live or the feed is unavailable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := opts.oneShotContext(cmd)
			defer cancel()
			out := opts.printer(cmd)
			defer out.Close()

			if len(args) == 0 {
				return out.LiveMatches(svc.Live.ListLive(ctx))
			}

			id, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			item, ok, err := svc.Live.GetLive(ctx, id)
			switch {
			case errors.Is(err, usecase.ErrNotFound):
				return NewExitError(ExitFailure, fmt.Sprintf("match %d is not live", id))
			case err != nil:
				return WrapExitError(ExitFailure, "read live match", err)
			case !ok:
				return NewExitError(ExitFailure, fmt.Sprintf("match %d is not live", id))
			}
			return out.LiveMatches([]match.LiveMatch{item})
		},
	}
}

func NewSchedulesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedules",
		Short: "List the match schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := opts.oneShotContext(cmd)
			defer cancel()

			items, err := svc.Schedules.ListSchedules(ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "read schedules", err)
			}
			out := opts.printer(cmd)
			defer out.Close()
			return out.Schedules(items)
		},
	}
}

func NewMatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "match <match-id>",
		Short: "Resolve one match to its live or scheduled record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMatchID(args[0])
			if err != nil {
				return err
			}

			svc, err := opts.services(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := opts.oneShotContext(cmd)
			defer cancel()

			res := svc.Matches.Resolve(ctx, id)
			out := opts.printer(cmd)
			defer out.Close()
			if err := out.Resolution(res, false); err != nil {
				return err
			}
			if !res.View.Found() {
				return NewExitError(ExitFailure, fmt.Sprintf("match %d not found", id))
			}
			return nil
		},
	}
}

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Count int
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <match-id>",
		Short: "Stream the resolved view of a match as it changes",
		Long: `Polls the live feed for one match and prints the resolved view every
time it changes, until interrupted or --count updates were printed.

The first update is a "resolving" placeholder when nothing is known yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			return runWatch(cmd, opts, id)
		},
	}
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "stop after this many updates (0 streams until interrupted)")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions, id match.ID) error {
	if opts.Count < 0 {
		return NewExitError(ExitCommandError, "--count cannot be negative")
	}

	svc, err := opts.services(cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	out := opts.printer(cmd)
	defer out.Close()

	printed := 0
	for res := range svc.Matches.Watch(ctx, id) {
		if err := out.Resolution(res, true); err != nil {
			return err
		}
		printed++
		if opts.Count > 0 && printed >= opts.Count {
			return nil
		}
	}
	return nil
}
