package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"parqcel/datatable"
	"parqcel/frame"
)

var (
	outputPath string

	filterColumn string
	filterOp     string
	filterValues []string
	filterQuery  string

	sortKeys []string

	convertColumn string
	convertTo     string

	applyCode     string
	applyCodeFile string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Keep the rows matching a condition or query",
	Example: `  parqcel filter people.csv --column age --op between --value 30 --value 40
  parqcel filter people.csv --query "age >= 30 AND city = Oslo" -o adults.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (filterQuery == "") == (filterColumn == "") {
			return fmt.Errorf("specify exactly one of --query or --column")
		}
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if filterQuery != "" {
			err = m.Query(filterQuery)
		} else {
			values := make([]interface{}, len(filterValues))
			for i, v := range filterValues {
				values[i] = v
			}
			err = m.Filter(filterColumn, filterOp, values...)
		}
		if err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), m, outputPath)
	},
}

var sortCmd = &cobra.Command{
	Use:     "sort <file>",
	Short:   "Sort by one or more columns",
	Example: `  parqcel sort sales.parquet --by region --by revenue:desc`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(sortKeys) == 0 {
			return fmt.Errorf("--by is required")
		}
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		keys := make([]frame.SortKey, len(sortKeys))
		for i, k := range sortKeys {
			keys[i] = frame.ParseSortKey(k)
		}
		if err := m.Sort(keys...); err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), m, outputPath)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Change the type of a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := datatable.ParseColumnType(convertTo)
		if err != nil {
			return err
		}
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := m.ConvertType(convertColumn, target); err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), m, outputPath)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Run a sandboxed transformation program",
	Long: `Runs a short Go program against the table, which is bound to the name dataset.
Only methods of dataset and the tbl package are available, for example:

  dataset.Filter(tbl.Col("age").Gt(30)).Sort("name", false)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := applyCode
		if applyCodeFile != "" {
			b, err := os.ReadFile(applyCodeFile)
			if err != nil {
				return err
			}
			code = string(b)
		}
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("--code or --code-file is required")
		}
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := m.ApplyTransformation(cmd.Context(), code); err != nil {
			return err
		}
		return finish(cmd.OutOrStdout(), m, outputPath)
	},
}

func init() {
	for _, c := range []*cobra.Command{filterCmd, sortCmd, convertCmd, applyCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "write the result to this file (.parquet, .csv or .json)")
	}

	filterCmd.Flags().StringVar(&filterColumn, "column", "", "column to test")
	filterCmd.Flags().StringVar(&filterOp, "op", "==", "operator: <, <=, ==, !=, >, >=, between, contains, starts_with, ends_with, is_null, is_not_null")
	filterCmd.Flags().StringArrayVar(&filterValues, "value", nil, "operand (repeat for between)")
	filterCmd.Flags().StringVar(&filterQuery, "query", "", `query such as "age >= 30 AND name ~ ann"`)

	sortCmd.Flags().StringArrayVar(&sortKeys, "by", nil, "sort key as column or column:desc (repeatable, first is primary)")

	convertCmd.Flags().StringVar(&convertColumn, "column", "", "column to convert")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target type (Int64, Float64, Utf8, Boolean, Date, Datetime, Categorical)")
	_ = convertCmd.MarkFlagRequired("column")
	_ = convertCmd.MarkFlagRequired("to")

	applyCmd.Flags().StringVar(&applyCode, "code", "", "transformation program")
	applyCmd.Flags().StringVar(&applyCodeFile, "code-file", "", "read the program from a file")

	rootCmd.AddCommand(filterCmd, sortCmd, convertCmd, applyCmd)
}
