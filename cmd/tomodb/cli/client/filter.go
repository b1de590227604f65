package client

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func NewFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage saved filters",
		Long:  "Save, list, show and remove named filters for use with \"dataset ls --saved\".",
	}

	cmd.AddCommand(NewFilterSaveCommand())
	cmd.AddCommand(NewFilterListCommand())
	cmd.AddCommand(NewFilterShowCommand())
	cmd.AddCommand(NewFilterRemoveCommand())

	return cmd
}

func NewFilterSaveCommand() *cobra.Command {
	var flags filterFlags
	var description string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the given filter flags under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := flags.spec(cmd.ErrOrStderr())
			if !spec.Active() {
				return fmt.Errorf("refusing to save a filter without any criteria")
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			saved, err := s.catalog.SaveFilter(cmd.Context(), args[0], description, spec)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved filter %q (%s)\n", saved.Name, saved.Query)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&description, "description", "", "free text description")

	return cmd
}

func NewFilterListCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			filters, err := s.catalog.SavedFilters(cmd.Context())
			if err != nil {
				return err
			}
			if output != outputTable {
				return writeValue(cmd.OutOrStdout(), output, filters)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tQUERY\tDESCRIPTION")
			for _, f := range filters {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Query, f.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, yaml, json)")

	return cmd
}

func NewFilterShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			saved, err := s.catalog.SavedFilter(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), outputYAML, saved)
		},
	}

	return cmd
}

func NewFilterRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			return s.catalog.DeleteSavedFilter(cmd.Context(), args[0])
		},
	}

	return cmd
}
