package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prodscan/internal/credits"
	"prodscan/internal/store"
)

func newArtistCommand(ctx *commandContext) *cobra.Command {
	artistCmd := &cobra.Command{
		Use:   "artist",
		Short: "Select the target artist",
	}
	artistCmd.AddCommand(newArtistSetCommand(ctx))
	artistCmd.AddCommand(newArtistShowCommand(ctx))
	return artistCmd
}

func newArtistSetCommand(ctx *commandContext) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "set <artist-id>",
		Short: "Set the target artist by id or [a12345] reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.saveArtist(cmd.Context(), repo, args[0], token)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Target artist set to %s (%s)\n", settings.ArtistName, settings.ArtistID)
				fmt.Fprintf(out, "Name variants: %q\n", credits.NameVariants(settings.ArtistName))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Discogs personal access token to save with the artist")
	return cmd
}

func newArtistShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved target artist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, ok, err := repo.Settings(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !ok {
					fmt.Fprintln(out, "No artist selected")
					return nil
				}
				fmt.Fprintf(out, "Artist: %s\n", settings.ArtistName)
				fmt.Fprintf(out, "ID: %s\n", settings.ArtistID)
				fmt.Fprintf(out, "Saved token: %s\n", yesNo(settings.Token != ""))
				return nil
			})
		},
	}
}
