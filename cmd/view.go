package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"parqcel/assistant"
	"parqcel/stats"
)

var viewPage int

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Print one page of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if viewPage > 1 && !m.JumpToPage(viewPage-1) {
			return fmt.Errorf("page %d out of range (1-%d)", viewPage, m.MaxPages())
		}
		return printPage(cmd.OutOrStdout(), m)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the shape and column types of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		t := m.Current()
		fmt.Fprintf(out, "%s: %d rows, %d columns, %d pages of %d\n", args[0], m.TotalRows(), m.ColumnCount(), m.MaxPages(), m.PageSize())
		for _, f := range t.Fields() {
			fmt.Fprintf(out, "- %s\n", assistant.ExplainColumn(t, f.Name))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <file> <column>",
	Short: "Show statistics of one column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		r, err := m.Statistics(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Statistics for %s (%s):\n%s", r.Column, r.Type, r)
		if !stats.Supported(r.Type) {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().IntVar(&viewPage, "page", 1, "page to show (1-based)")
	rootCmd.AddCommand(viewCmd, infoCmd, statsCmd)
}
