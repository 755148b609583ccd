package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	suggestFile  string
	suggestApply bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <prompt>",
	Short: "Ask the assistant for a transformation",
	Example: `  parqcel suggest "top 5 by revenue"
  parqcel suggest "where city == 'Oslo'" --file people.csv --apply -o oslo.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if suggestApply && suggestFile == "" {
			return fmt.Errorf("--apply needs --file")
		}
		prompt := strings.Join(args, " ")

		ctx, cancel := session.TimeoutContext(cmd.Context())
		defer cancel()
		s, err := session.Assistant.Suggest(ctx, prompt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if s.Text != "" {
			fmt.Fprintln(out, s.Text)
		}
		fmt.Fprintf(out, "\n%s\n", s.Code)
		if !suggestApply {
			return nil
		}

		m, err := openModel(cmd.Context(), suggestFile)
		if err != nil {
			return err
		}
		if err := m.ApplyTransformation(cmd.Context(), s.Code); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return finish(out, m, outputPath)
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestFile, "file", "", "table to apply the suggestion to")
	suggestCmd.Flags().BoolVar(&suggestApply, "apply", false, "run the suggested code against --file")
	suggestCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the result to this file")
	rootCmd.AddCommand(suggestCmd)
}
