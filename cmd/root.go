// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the parqcel command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cfgpkg "parqcel/config"
	"parqcel/fileio"
	"parqcel/model"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagPageSize int

	// Session built from the loaded configuration
	session *cfgpkg.Session
)

var rootCmd = &cobra.Command{
	Use:   "parqcel",
	Short: "View and edit Parquet, CSV, Excel and JSON tables",
	Long: `parqcel loads tabular files into memory, lets you page through them, filter, sort,
convert column types and run small sandboxed transformation programs, and writes the
result back as Parquet, CSV or JSON. Run "parqcel gui" for the desktop editor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.ErrOrStderr())
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.parqcel/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagPageSize, "page-size", 0, "rows per page (overrides config)")
}

// setup loads the configuration, applies flag overrides and creates the session.
func setup(logOut io.Writer) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("debug") {
		c.Debug = debug
	}
	if f.Changed("page-size") && flagPageSize > 0 {
		c.PageSize = flagPageSize
	}
	s, err := cfgpkg.NewSession(c, logOut)
	if err != nil {
		return err
	}
	session = s
	return nil
}

// openModel loads path into a fresh model.
func openModel(ctx context.Context, path string) (*model.TableModel, error) {
	t, err := fileio.Load(ctx, path, session.LoadOptions())
	if err != nil {
		return nil, err
	}
	m := session.NewModel()
	m.Load(t, path)
	return m, nil
}

// finish writes the model to output when given, or prints the current page.
func finish(w io.Writer, m *model.TableModel, output string) error {
	if output == "" {
		return printPage(w, m)
	}
	if err := fileio.Save(m.Current(), output); err != nil {
		return err
	}
	m.MarkSaved()
	fmt.Fprintf(w, "✓ Wrote %d rows, %d columns to %s\n", m.TotalRows(), m.ColumnCount(), output)
	return nil
}

// printPage renders the current page as aligned columns.
func printPage(w io.Writer, m *model.TableModel) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, m.ColumnCount())
	for c := range headers {
		headers[c] = m.HeaderLabel(c)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	cells := make([]string, m.ColumnCount())
	for r := 0; r < m.RowCount(); r++ {
		for c := range cells {
			cells[c] = printable(m.CellText(r, c))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%d rows)\n", m.PageLabel(), m.TotalRows())
	return nil
}

func printable(s string) string {
	s = strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(s)
	if len([]rune(s)) > 40 {
		return string([]rune(s)[:39]) + "…"
	}
	return s
}
