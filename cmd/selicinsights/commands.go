package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/selicinsights/internal/analysis"
	atomicio "github.com/sawpanic/selicinsights/internal/io"
	"github.com/sawpanic/selicinsights/internal/series"
	"github.com/sawpanic/selicinsights/internal/snippet"
	"github.com/sawpanic/selicinsights/internal/source"
	"github.com/sawpanic/selicinsights/internal/table"
)

func addRangeFlag(cmd *cobra.Command) {
	cmd.Flags().String("range", string(series.DefaultRange), "Time range (1year|3years|5years|all)")
}

// loadWindow loads the configured source once and applies --range.
func loadWindow(cmd *cobra.Command) (series.Dataset, series.Range, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	rt, err := openRuntime(cmd.Context(), cfg, nil)
	if err != nil {
		return nil, "", err
	}
	defer rt.Close()

	ds, err := rt.source.Load(cmd.Context())
	if err != nil {
		return nil, "", fmt.Errorf("failed to load data: %w", err)
	}
	rangeStr, _ := cmd.Flags().GetString("range")
	rng := series.ParseRange(rangeStr)
	return ds.Filter(rng, time.Now()), rng, nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected range as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, rng, err := loadWindow(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" || out == "-" {
				return table.WriteCSV(cmd.OutOrStdout(), ds)
			}
			if err := writeCSVFile(out, ds); err != nil {
				return err
			}
			log.Info().Str("path", out).Str("range", string(rng)).Int("records", len(ds)).Msg("CSV exported")
			return nil
		},
	}
	addRangeFlag(cmd)
	cmd.Flags().String("out", table.CSVFilename, "Output file, or - for stdout")
	return cmd
}

func writeCSVFile(path string, ds series.Dataset) error {
	err := atomicio.WriteFileAtomic(path, func(w io.Writer) error {
		return table.WriteCSV(w, ds)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newCorrelateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Print the Pearson correlation matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, rng, err := loadWindow(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Correlação entre Variáveis (%s, %d registros)\n\n", rng.Label(), len(ds))
			return printMatrix(cmd.OutOrStdout(), analysis.Correlate(ds))
		},
	}
	addRangeFlag(cmd)
	return cmd
}

func printMatrix(w io.Writer, m analysis.Matrix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, f := range m.Fields {
		fmt.Fprintf(tw, "%s\t", f.Label())
	}
	fmt.Fprintln(tw)
	for _, row := range m.Rows() {
		fmt.Fprintf(tw, "%s\t", row[0].Row.Label())
		for _, c := range row {
			fmt.Fprintf(tw, "%s\t", c.Display)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func newReturnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "returns",
		Short: "Compare estimated fixed-income returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := loadWindow(cmd)
			if err != nil {
				return err
			}
			return printReturns(cmd.OutOrStdout(), analysis.CompareInvestments(ds))
		},
	}
	addRangeFlag(cmd)
	return cmd
}

func printReturns(w io.Writer, c analysis.Comparison) error {
	fmt.Fprintf(w, "SELIC %s%% | IPCA %s%%\n\n", series.FormatFixed2(c.Selic), series.FormatFixed2(c.Inflation))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Investimento\tRetorno (%)\tRetorno Real (%)")
	for _, inv := range c.Investments {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", inv.Name, series.FormatFixed2(inv.Return), series.FormatFixed2(inv.RealReturn))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", c.Message)
	return err
}

func newSnippetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snippet",
		Short: "Print the Python analysis snippet",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), snippet.Code())
			return err
		},
	}
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write observations into PostgreSQL",
		Long:  "Creates the economic_series table if needed and upserts the embedded sample, or the YAML file given with --from",
		RunE:  runSeed,
	}
	cmd.Flags().String("from", "", "YAML data file to seed instead of the embedded sample")
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("seed requires a database: set --pg-dsn or PG_DSN with PG_ENABLED=true")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	var src source.Source = source.Embedded{}
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		if src, err = source.NewFile(from); err != nil {
			return err
		}
	}
	ds, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", src.Name(), err)
	}

	cfg.Source.Kind = source.KindEmbedded
	rt, err := openRuntime(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	total, err := source.Seed(ctx, rt.db.Repository().Series, ds)
	if err != nil {
		return err
	}

	log.Info().Int("written", len(ds)).Int64("total", total).Msg("Database seeded")
	fmt.Fprintf(cmd.OutOrStdout(), "%d observações gravadas (%d no total)\n", len(ds), total)
	return nil
}
