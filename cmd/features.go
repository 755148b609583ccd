package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"parqcel/features"
)

var (
	featureScale       string
	featureOneHot      bool
	featureMaxTerms    int
	featureNumeric     []string
	featureCategorical []string
	featureText        []string

	pcaComponents int
	pcaAppend     bool
)

var featurizeCmd = &cobra.Command{
	Use:   "featurize <file>",
	Short: "Append scaled, one-hot and TF-IDF feature columns",
	Long: `Adds numeric feature columns to the table. Numeric columns are scaled, text
columns with few distinct values are one-hot encoded and other text columns are
weighted with TF-IDF. Column kinds are detected unless given explicitly.`,
	Example: `  parqcel featurize sales.parquet --scale minmax -o features.parquet
  parqcel featurize reviews.csv --text comment --max-terms 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := featureOptions()
		if err != nil {
			return err
		}
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		before := m.ColumnCount()
		if err := m.Featurize(opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d feature columns\n", m.ColumnCount()-before)
		return finish(cmd.OutOrStdout(), m, outputPath)
	},
}

var pcaCmd = &cobra.Command{
	Use:   "pca <file>",
	Short: "Project the featurized table onto its principal components",
	Example: `  parqcel pca sales.parquet -k 3 -o embedding.csv
  parqcel pca sales.parquet --append -o sales_pca.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := featureOptions()
		if err != nil {
			return err
		}
		m, err := openModel(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var ratio []float64
		if pcaAppend {
			if ratio, err = m.AddPCA(pcaComponents, opts); err != nil {
				return err
			}
		} else {
			p, err := features.Project(m.Current(), opts, pcaComponents)
			if err != nil {
				return err
			}
			t, err := p.Table()
			if err != nil {
				return err
			}
			ratio = p.VarianceRatio
			m = session.NewModel()
			m.Load(t, args[0])
		}

		parts := make([]string, len(ratio))
		for i, r := range ratio {
			parts[i] = fmt.Sprintf("pca_%d %.1f%%", i+1, r*100)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Explained variance: %s\n", strings.Join(parts, ", "))
		return finish(cmd.OutOrStdout(), m, outputPath)
	},
}

// featureOptions reads the shared feature flags. Column kinds given
// explicitly replace detection for that kind only.
func featureOptions() (features.Options, error) {
	scale, err := features.ParseScaling(featureScale)
	if err != nil {
		return features.Options{}, err
	}
	opts := features.Options{Scale: scale, OneHot: featureOneHot, MaxTerms: featureMaxTerms}
	if len(featureNumeric) > 0 {
		opts.Numeric = featureNumeric
	}
	if len(featureCategorical) > 0 {
		opts.Categorical = featureCategorical
	}
	if len(featureText) > 0 {
		opts.Text = featureText
	}
	return opts, nil
}

func init() {
	for _, c := range []*cobra.Command{featurizeCmd, pcaCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "write the result to this file (.parquet, .csv or .json)")
		c.Flags().StringVar(&featureScale, "scale", "standard", "numeric scaling: standard, minmax or none")
		c.Flags().BoolVar(&featureOneHot, "one-hot", true, "one-hot encode categorical columns")
		c.Flags().IntVar(&featureMaxTerms, "max-terms", features.DefaultMaxTerms, "TF-IDF terms kept per text column")
		c.Flags().StringSliceVar(&featureNumeric, "numeric", nil, "numeric columns (default: detected)")
		c.Flags().StringSliceVar(&featureCategorical, "categorical", nil, "categorical columns (default: detected)")
		c.Flags().StringSliceVar(&featureText, "text", nil, "free text columns (default: detected)")
	}
	pcaCmd.Flags().IntVarP(&pcaComponents, "components", "k", 2, "number of components")
	pcaCmd.Flags().BoolVar(&pcaAppend, "append", false, "append the components to the table instead of writing them alone")

	rootCmd.AddCommand(featurizeCmd, pcaCmd)
}
