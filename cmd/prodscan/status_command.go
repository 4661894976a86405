package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"prodscan/internal/preflight"
	"prodscan/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runChecks bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the target artist and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				line := func(label string, kind statusKind, msg string) {
					fmt.Fprintln(out, renderStatusLine(label, kind, msg, colorize))
				}

				settings, ok, err := repo.Settings(cmd.Context())
				if err != nil {
					return err
				}
				token := cfg.Discogs.Token
				if token == "" && ok {
					token = settings.Token
				}
				tokenSet := token != ""

				if runChecks {
					for _, result := range preflight.RunAll(cmd.Context(), cfg, repo.KV(), token) {
						kind := statusOK
						if !result.Passed {
							kind = statusError
						}
						line(result.Name, kind, result.Detail)
					}
				}
				line("Backend", statusInfo, cfg.Storage.Backend)
				if tokenSet {
					line("Token", statusOK, "yes ("+cfg.RequestDelay(true).String()+" between requests)")
				} else {
					line("Token", statusWarn, "no ("+cfg.RequestDelay(false).String()+" between requests)")
				}
				if !ok {
					line("Artist", statusWarn, "none selected")
					return nil
				}
				line("Artist", statusInfo, fmt.Sprintf("%s (%s)", settings.ArtistName, settings.ArtistID))

				items, err := repo.Collection(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}
				queue, err := repo.FailedQueue(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}
				last, synced, err := repo.LastUpdated(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}

				line("Collection", statusInfo, humanize.Comma(int64(len(items)))+" items")
				if len(queue) > 0 {
					line("Failed", statusWarn, strconv.Itoa(len(queue))+" queued")
				} else {
					line("Failed", statusOK, "0")
				}
				if synced {
					line("Last synced", statusInfo, humanize.Time(last))
				} else {
					line("Last synced", statusWarn, "never")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&runChecks, "check", false, "Also check data directory, store and Discogs connectivity")
	return cmd
}
