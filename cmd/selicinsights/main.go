package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sawpanic/selicinsights/internal/config"
)

const (
	appName = "SELIC Insights"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	setupLogging(os.Stderr, config.Default().Log)

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "selicinsights",
		Short:   "Brazilian macroeconomic dashboard (SELIC, IPCA, PIB, Câmbio)",
		Version: version,
		Long: `SELIC Insights serves a read-only dashboard of quarterly Brazilian
macroeconomic indicators with a Pearson correlation matrix, a searchable
data table with CSV export, a fixed-income comparison and a Python snippet
for further analysis in Google Colab.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML configuration file")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newCorrelateCmd(),
		newReturnsCmd(),
		newSnippetCmd(),
		newSeedCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig resolves defaults, file, environment and flags, then configures
// logging from the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyFlags(&cfg, cmd.Flags()); err != nil {
		return cfg, fmt.Errorf("invalid flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging(os.Stderr, cfg.Log)
	return cfg, nil
}

// setupLogging installs the global logger: a console writer when out is a
// terminal (or console is forced), JSON lines otherwise.
func setupLogging(out *os.File, lc config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = out
	switch lc.Format {
	case "console":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case "json":
	default:
		if term.IsTerminal(int(out.Fd())) {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
		}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version)
		},
	}
}
