package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prodscan/internal/catalog"
	"prodscan/internal/config"
	"prodscan/internal/credits"
	"prodscan/internal/csvio"
	"prodscan/internal/store"
	"prodscan/internal/textutil"
)

type sortFlags struct {
	column string
	desc   bool
	asc    bool
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.column, "sort", "", "Sort column (artist|title|label|year|credits)")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&f.asc, "asc", false, "Sort ascending")
}

func (f *sortFlags) apply(cfg *config.Config, items []catalog.Item) ([]catalog.Item, error) {
	name := f.column
	if name == "" {
		name = cfg.Export.SortColumn
	}
	col, err := catalog.ParseSortColumn(name)
	if err != nil {
		return nil, err
	}
	descending := cfg.Export.SortDirection == "desc"
	switch {
	case f.desc:
		descending = true
	case f.asc:
		descending = false
	}
	return catalog.Sort(items, col, descending), nil
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var sorting sortFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the artist's collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.activeArtist(cmd.Context(), repo)
				if err != nil {
					return err
				}
				items, err := repo.Collection(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Collection is empty; run `prodscan sync`")
					return nil
				}
				items, err = sorting.apply(cfg, items)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{
						strconv.FormatInt(it.ID, 10),
						string(it.Kind),
						it.Artist,
						it.Title,
						it.Label,
						it.Year,
						it.Credits,
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "ID", right: true},
					{header: "Type"},
					{header: "Artist", maxWidth: 30},
					{header: "Title", maxWidth: 40},
					{header: "Label", maxWidth: 30},
					{header: "Year"},
					{header: "Credits", maxWidth: 50},
				}, rows))
				return nil
			})
		},
	}
	sorting.register(cmd)
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var category string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item with its detailed credit breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			itemKind, err := parseKindFlag(kind)
			if err != nil {
				return err
			}
			only, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.activeArtist(cmd.Context(), repo)
				if err != nil {
					return err
				}
				items, err := repo.Collection(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}
				matches := catalog.FindByID(items, id)
				if itemKind != "" {
					matches = filterKind(matches, itemKind)
				}
				if len(matches) == 0 {
					return fmt.Errorf("item %d not found in collection", id)
				}
				printItem(cmd, matches[0], only)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "Item type (master|release)")
	cmd.Flags().StringVar(&category, "category", "", "Only show roles in this credit category (e.g. mixing)")
	return cmd
}

func parseCategoryFlag(value string) (credits.Category, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return credits.None, nil
	}
	c, ok := credits.ParseCategory(value)
	if !ok || c == credits.None {
		keys := make([]string, 0, len(credits.Categories()))
		for _, info := range credits.Categories() {
			keys = append(keys, string(info.Key))
		}
		return credits.None, fmt.Errorf("invalid --category %q (want one of %s)", value, strings.Join(keys, ", "))
	}
	return c, nil
}

func filterKind(items []catalog.Item, kind catalog.Kind) []catalog.Item {
	var out []catalog.Item
	for _, it := range items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func printItem(cmd *cobra.Command, it catalog.Item, only credits.Category) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d\n", it.Kind, it.ID)
	fmt.Fprintf(out, "  Title:   %s\n", it.Title)
	fmt.Fprintf(out, "  Artist:  %s\n", it.Artist)
	fmt.Fprintf(out, "  Year:    %s\n", it.Year)
	fmt.Fprintf(out, "  Label:   %s\n", it.Label)
	fmt.Fprintf(out, "  Credits: %s\n", it.Credits)
	if it.RepresentativeID != 0 {
		fmt.Fprintf(out, "  Key release: %d\n", it.RepresentativeID)
	}
	fmt.Fprintf(out, "  Discogs: %s\n", it.SourceURL)
	if it.ArtworkURL != "" {
		fmt.Fprintf(out, "  Artwork: %s\n", it.ArtworkURL)
	}
	if it.Roles.Empty() {
		return
	}
	rows := make([][]string, 0, len(it.Roles))
	for _, info := range credits.Categories() {
		if only != credits.None && info.Key != only {
			continue
		}
		roles := it.Roles[info.Key]
		if len(roles) == 0 {
			continue
		}
		rows = append(rows, []string{info.Display, strings.Join(roles, ", ")})
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "  No %s credits\n", only.Display())
		return
	}
	fmt.Fprintln(out, renderTable([]column{{header: "Category"}, {header: "Roles", maxWidth: 70}}, rows))
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var sorting sortFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.activeArtist(cmd.Context(), repo)
				if err != nil {
					return err
				}
				items, err := repo.Collection(cmd.Context(), settings.ArtistID)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					return errors.New("collection is empty; nothing to export")
				}
				items, err = sorting.apply(cfg, items)
				if err != nil {
					return err
				}

				target := output
				if target == "" {
					target = textutil.ExportFileName(settings.ArtistName, settings.ArtistID)
				}
				if target == "-" {
					return csvio.Write(cmd.OutOrStdout(), items)
				}
				if err := writeCSVFile(target, items); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(items), target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (\"-\" for stdout)")
	sorting.register(cmd)
	return cmd
}

func writeCSVFile(path string, items []catalog.Item) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return csvio.Write(f, items)
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the collection with the rows of an exported CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("import replaces the current collection; rerun with --yes to confirm")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			result, err := csvio.Read(f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.activeArtist(cmd.Context(), repo)
				if err != nil {
					return err
				}
				if err := repo.SaveCollection(cmd.Context(), settings.ArtistID, result.Items); err != nil {
					return err
				}
				if err := repo.SaveFailedQueue(cmd.Context(), settings.ArtistID, nil); err != nil {
					return err
				}
				if err := repo.SetLastUpdated(cmd.Context(), settings.ArtistID, time.Now()); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, skipped := range result.Skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped %v\n", skipped)
				}
				fmt.Fprintf(out, "Imported %d items for %s (%d rows skipped)\n", len(result.Items), settings.ArtistName, len(result.Skipped))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm replacing the collection")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the artist's cached collection, failure queue and sync time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("clear deletes the cached collection; rerun with --yes to confirm")
			}
			return ctx.withRepository(cmd.Context(), func(repo *store.Repository) error {
				settings, err := ctx.activeArtist(cmd.Context(), repo)
				if err != nil {
					return err
				}
				if err := repo.ClearArtist(cmd.Context(), settings.ArtistID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached data for %s\n", settings.ArtistName)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deleting cached data")
	return cmd
}
