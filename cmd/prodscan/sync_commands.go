package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"prodscan/internal/catalog"
	"prodscan/internal/scan"
	"prodscan/internal/store"
	"prodscan/internal/synclock"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Retry failed items, then fetch and resolve new releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedScanner(cmd, func(s *scanner) error {
				result, err := s.orch.Sync(cmd.Context(), s.session)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), s.settings, result)
				return nil
			})
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var kind string

	cmd := &cobra.Command{
		Use:   "retry [id]",
		Short: "Retry one failed item, or the whole failure queue with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("specify either an item id or --all")
			}
			itemKind, err := parseKindFlag(kind)
			if err != nil {
				return err
			}
			return ctx.withLockedScanner(cmd, func(s *scanner) error {
				out := cmd.OutOrStdout()
				if all {
					result, err := s.orch.RetryFailed(cmd.Context(), s.session)
					if err != nil {
						return err
					}
					printResult(out, s.settings, result)
					return nil
				}

				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				item, err := s.orch.RetryItem(cmd.Context(), s.session, id, itemKind)
				if err != nil {
					return fmt.Errorf("retry %d: %w", id, err)
				}
				fmt.Fprintf(out, "Resolved %s %d: %s (%s)\n", item.Kind, item.ID, item.Title, item.Credits)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Retry every queued failure")
	cmd.Flags().StringVar(&kind, "type", "", "Item type when an id is queued as both master and release (master|release)")
	return cmd
}

func newFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "failed",
		Short: "List items waiting in the failure queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.activeArtist(cmd.Context(), repo)
				if err != nil {
					return err
				}
				queue, err := repo.FailedQueue(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(queue) == 0 {
					fmt.Fprintln(out, "No failed items")
					return nil
				}
				rows := make([][]string, 0, len(queue))
				for _, f := range queue {
					rows = append(rows, []string{
						strconv.FormatInt(f.ID, 10),
						string(f.Kind),
						f.Stub.Title,
						f.Error,
						humanize.Time(f.Timestamp),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "ID", right: true},
					{header: "Type"},
					{header: "Title", maxWidth: 40},
					{header: "Error", maxWidth: 60},
					{header: "When"},
				}, rows))
				return nil
			})
		},
	}
}

func (c *commandContext) withLockedScanner(cmd *cobra.Command, fn func(*scanner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := synclock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	return c.withRepository(cmd.Context(), func(repo *store.Repository) error {
		s, err := c.newScanner(cmd, repo)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

func parseKindFlag(value string) (catalog.Kind, error) {
	switch value {
	case "":
		return "", nil
	case string(catalog.KindMaster), string(catalog.KindRelease):
		return catalog.Kind(value), nil
	default:
		return "", fmt.Errorf("invalid --type %q (want master or release)", value)
	}
}

func printResult(out io.Writer, settings store.Settings, result scan.Result) {
	state := "complete"
	if result.Stopped {
		state = "stopped"
	}
	fmt.Fprintf(out, "Sync %s for %s\n", state, settings.ArtistName)
	if result.Retried > 0 {
		fmt.Fprintf(out, "  Retried: %d (%d recovered)\n", result.Retried, result.Recovered)
	}
	fmt.Fprintf(out, "  New items: %d discovered, %d added, %d failed\n", result.Discovered, result.Added, result.Failed)
	fmt.Fprintf(out, "  Collection: %s items\n", humanize.Comma(int64(result.Collection)))
	fmt.Fprintf(out, "  Failure queue: %d\n", result.QueueLength)
	fmt.Fprintf(out, "  Took: %s\n", result.Duration.Round(time.Second))
	if result.Stopped {
		fmt.Fprintln(out, "Unprocessed items were queued; run `prodscan sync` or `prodscan retry --all` to continue.")
	}
}
