package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/mwantia/tomodb/pkg/debounce"
	"github.com/mwantia/tomodb/pkg/draft"
	"github.com/mwantia/tomodb/pkg/form"
	"github.com/mwantia/tomodb/pkg/snapshot"
	"github.com/spf13/cobra"
)

func NewDatasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dataset",
		Aliases: []string{"ds"},
		Short:   "Manage catalog datasets",
		Long:    "List, inspect, add, export and import the datasets of the local catalog.",
	}

	cmd.AddCommand(NewDatasetListCommand())
	cmd.AddCommand(NewDatasetShowCommand())
	cmd.AddCommand(NewDatasetNextIDCommand())
	cmd.AddCommand(NewDatasetAddCommand())
	cmd.AddCommand(NewDatasetSearchCommand())
	cmd.AddCommand(NewDatasetDraftCommand())
	cmd.AddCommand(NewDatasetExportCommand())
	cmd.AddCommand(NewDatasetImportCommand())

	return cmd
}

func NewDatasetListCommand() *cobra.Command {
	var flags filterFlags
	var saved string
	var output string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List datasets",
		Long:  "List datasets, most recent first. Filter flags combine with each other and with --saved.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := flags.spec(cmd.ErrOrStderr())

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if saved != "" {
				sf, err := s.catalog.SavedFilter(cmd.Context(), saved)
				if err != nil {
					return err
				}
				spec = merge(sf.Spec, spec)
			}

			records, err := s.catalog.List(cmd.Context(), spec)
			if err != nil {
				return err
			}
			return writeDatasets(cmd.OutOrStdout(), output, records)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&saved, "saved", "", "start from a saved filter")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, yaml, json)")

	return cmd
}

// merge overlays the set dimensions of override onto base.
func merge(base, override filter.Spec) filter.Spec {
	out := base
	if override.Text != "" {
		out = out.WithText(override.Text)
	}
	for field, value := range override.Categories {
		out = out.WithCategory(field, value)
	}
	if override.DateRange.Start != "" || override.DateRange.End != "" {
		start, end := out.DateRange.Start, out.DateRange.End
		if override.DateRange.Start != "" {
			start = override.DateRange.Start
		}
		if override.DateRange.End != "" {
			end = override.DateRange.End
		}
		out = out.WithDateRange(start, end)
	}
	if len(override.Tags) > 0 {
		out = out.WithTags(override.Tags...)
	}
	return out
}

func NewDatasetShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			record, err := s.catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), output, record)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format (yaml, json)")

	return cmd
}

func NewDatasetNextIDCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next-id",
		Short: "Print the identifier the next dataset would receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintln(cmd.OutOrStdout(), s.catalog.NextID(cmd.Context()))
			return nil
		},
	}

	return cmd
}

func NewDatasetAddCommand() *cobra.Command {
	var sets []string
	var toggles []string
	var discard bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dataset",
		Long: `Add a dataset through the add-dataset form.

Fields are set with --set field=value (e.g. --set title="Flagellar motor").
If the form does not validate, the entered values are kept as a draft and
the next "dataset add" continues from it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			repo := draft.NewStoreRepository(s.store)
			if discard {
				if err := repo.Clear(ctx, s.cfg.Catalog.DraftKey); err != nil {
					return err
				}
			}

			controller := form.NewController(repo, s.catalog,
				form.WithKey(s.cfg.Catalog.DraftKey),
				form.WithLogger(s.log.Named("form")))

			recovered, err := controller.Open(ctx)
			if err != nil {
				return err
			}
			if recovered {
				fmt.Fprintln(out, "Continuing from saved draft.")
			}

			for _, set := range sets {
				field, value, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("--set %q: expected field=value", set)
				}
				if err := controller.Set(strings.TrimSpace(field), value); err != nil {
					return err
				}
			}
			for _, fileType := range toggles {
				controller.ToggleTag(fileType)
			}

			record, err := controller.Submit(ctx)
			var verrs form.ValidationErrors
			if errors.As(err, &verrs) {
				if err := controller.SaveDraft(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Form is incomplete, draft saved:")
				for field, msg := range verrs {
					fmt.Fprintf(out, "  %s: %s\n", field, msg)
				}
				return fmt.Errorf("dataset not added")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Added %s\n", record.ID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "set a form field (field=value), repeatable")
	cmd.Flags().StringArrayVar(&toggles, "toggle-file-type", nil, "check or uncheck a file type, repeatable")
	cmd.Flags().BoolVar(&discard, "discard-draft", false, "ignore a previously saved draft")

	return cmd
}

func NewDatasetSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search interactively",
		Long: `Read search text from stdin, one query per line. Results are printed
once input has been quiet for the configured search.debounce interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			delay, err := time.ParseDuration(s.cfg.Search.Debounce)
			if err != nil {
				return fmt.Errorf("invalid search.debounce: %w", err)
			}

			results := make(chan string, 8)
			d := debounce.New(delay, debounce.RealScheduler)
			defer d.Cancel()

			run := func(text string) func() {
				return func() {
					select {
					case results <- text:
					case <-ctx.Done():
					}
				}
			}

			lines := readLines(ctx, cmd.InOrStdin())
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case line, ok := <-lines:
					if !ok {
						d.Flush()
						d.Wait()
						return drainSearch(cmd, s, results)
					}
					d.Trigger(run(line))
				case text := <-results:
					if err := printSearch(cmd, s, text); err != nil {
						return err
					}
					fmt.Fprintln(out)
				}
			}
		},
	}

	return cmd
}

// readLines streams r line by line until EOF or until ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// drainSearch prints the results that are still queued once input ended.
func drainSearch(cmd *cobra.Command, s *session, results <-chan string) error {
	for {
		select {
		case text := <-results:
			if err := printSearch(cmd, s, text); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func printSearch(cmd *cobra.Command, s *session, text string) error {
	records, err := s.catalog.List(cmd.Context(), filter.Spec{}.WithText(text))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d result(s) for %q\n", len(records), text)
	return writeDatasets(cmd.OutOrStdout(), outputTable, records)
}

func NewDatasetDraftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or discard the saved add-dataset draft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			value, ok, err := draft.NewStoreRepository(s.store).Load(cmd.Context(), s.cfg.Catalog.DraftKey)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No draft saved.")
				return nil
			}

			var state form.State
			if err := json.Unmarshal(value, &state); err != nil {
				return fmt.Errorf("saved draft is unreadable: %w", err)
			}
			return writeValue(cmd.OutOrStdout(), outputYAML, state)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Discard the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return draft.NewStoreRepository(s.store).Clear(cmd.Context(), s.cfg.Catalog.DraftKey)
		},
	})

	return cmd
}

func NewDatasetExportCommand() *cobra.Command {
	var path string
	var compression string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all datasets as JSON Lines",
		Long:  "Export all datasets as JSON Lines to --file or stdout. Compression defaults to the file extension (.gz, .zst).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := pickCompressor(path, compression)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}

			n, err := snapshot.Export(cmd.Context(), s.catalog, w, c)
			if err != nil {
				return err
			}
			if path != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d dataset(s) to %s\n", n, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "output file (default stdout)")
	cmd.Flags().StringVar(&compression, "compression", "", "noop, gzip or zstd")

	return cmd
}

func NewDatasetImportCommand() *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import datasets from a JSON Lines export",
		Long:  "Import datasets under their exported identifiers. Lines with invalid or already used identifiers are skipped and reported.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := pickCompressor(args[0], compression)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := snapshot.Import(cmd.Context(), s.catalog, f, c)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d dataset(s)\n", result.Imported)
			for _, skipped := range result.Skipped {
				fmt.Fprintf(out, "  skipped line %d (%s): %s\n", skipped.Line, skipped.ID, skipped.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "", "noop, gzip or zstd (default from file extension)")

	return cmd
}

func pickCompressor(path, name string) (snapshot.Compressor, error) {
	if name != "" {
		return snapshot.CompressorByName(name)
	}
	return snapshot.CompressorForPath(path), nil
}
