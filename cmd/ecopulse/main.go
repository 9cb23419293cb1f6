package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/internal/pipeline"
	"github.com/ecopulse/ecopulse/pkg/analyzer"
	"github.com/ecopulse/ecopulse/pkg/cleaner"
	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/datagen"
	"github.com/ecopulse/ecopulse/pkg/export"
	"github.com/ecopulse/ecopulse/pkg/ingest"
	"github.com/ecopulse/ecopulse/pkg/logger"
	"github.com/ecopulse/ecopulse/pkg/model"
)

var version = "0.1.0"

// envPrefix makes every flag overridable through the environment, for
// example ECOPULSE_INPUT or ECOPULSE_LOG_LEVEL.
const envPrefix = "ECOPULSE"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "ecopulse",
		Short: "EcoPulse - urban environmental data cleaning and analysis",
		Long: `EcoPulse cleans city-year environmental measurements and runs exploratory
analysis over them: descriptive statistics, anomaly detection, per-city
trends, correlations and threshold-driven insights.`,
	}

	root.AddCommand(versionCmd(), runCmd(), generateCmd(), compareCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("EcoPulse v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean a dataset and run the full analysis",
		Long: `Run the full pipeline over a CSV or JSON dataset: validation,
deduplication, imputation, outlier clamping and derived metrics, then
statistics, anomalies, trends, correlations and insights.

Example:
  ecopulse run --input data/observations.csv --cleaned-out cleaned.csv --results-out results.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(bindFlags(cmd))
		},
	}

	cmd.Flags().StringP("input", "i", "", "Path to the raw dataset, .csv or .json (required)")
	cmd.Flags().StringP("config", "c", "", "Path to a YAML configuration file (optional)")
	cmd.Flags().String("cleaned-out", "", "Write the cleaned dataset to this CSV file")
	cmd.Flags().String("results-out", "", "Write the full analysis results to this JSON file")
	cmd.Flags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.Flags().Duration("timeout", 5*time.Minute, "Pipeline timeout")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset",
		Long: `Generate a deterministic synthetic dataset of Brazilian city measurements.
Defect rates inject missing values, duplicate rows and outliers so the
cleaning stage has work to do.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(bindFlags(cmd))
		},
	}

	cmd.Flags().StringP("output", "o", "", "Path of the CSV file to write (required)")
	cmd.Flags().Int64("seed", 42, "Random seed")
	cmd.Flags().Int("start-year", 2018, "First year to generate")
	cmd.Flags().Int("end-year", 2024, "Last year to generate")
	cmd.Flags().StringSlice("cities", nil, "Cities to generate (default: all known cities)")
	cmd.Flags().Float64("null-rate", 0, "Probability of a missing measurement")
	cmd.Flags().Float64("duplicate-rate", 0, "Probability of a duplicated city-year row")
	cmd.Flags().Float64("outlier-rate", 0, "Probability of an inflated measurement")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank cities by a metric",
		Long: `Clean the dataset and rank cities by one metric, highest first.
Without --year each city is ranked by its mean across all years.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(bindFlags(cmd))
		},
	}

	cmd.Flags().StringP("input", "i", "", "Path to the raw dataset, .csv or .json (required)")
	cmd.Flags().StringP("config", "c", "", "Path to a YAML configuration file (optional)")
	cmd.Flags().StringP("metric", "m", string(model.ColEnergy), "Metric column to rank by")
	cmd.Flags().Int("year", 0, "Rank by this year only (default: mean across years)")
	cmd.Flags().Int("top", 0, "Keep only the top N cities")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// bindFlags merges the command's flags with the environment: a flag set
// on the command line wins, then ECOPULSE_* variables, then defaults.
func bindFlags(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

// loadConfig builds the run configuration from an optional YAML file and
// an optional log level override.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	err := logger.Init(logger.Config{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
	})
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("component", "ecopulse-cli")), nil
}

// readDataset picks the parser by file extension.
func readDataset(path string) (model.Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ingest.ReadJSONFile(path)
	}
	return ingest.ReadCSVFile(path)
}

func runPipeline(v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	input := v.GetString("input")
	raw, err := readDataset(input)
	if err != nil {
		return err
	}
	log.Info("dataset loaded", zap.String("path", input), zap.Int("records", raw.Len()))

	ctx, cancel := context.WithTimeout(context.Background(), v.GetDuration("timeout"))
	defer cancel()

	results, err := pipeline.New(cfg, log).Run(ctx, raw)
	if err != nil {
		return err
	}

	if out := v.GetString("cleaned-out"); out != "" {
		if err := export.WriteCSVFile(out, results.Cleaned); err != nil {
			return err
		}
		log.Info("cleaned dataset written", zap.String("path", out))
	}
	if out := v.GetString("results-out"); out != "" {
		if err := export.WriteJSONFile(out, results); err != nil {
			return err
		}
		log.Info("results written", zap.String("path", out))
	}

	fmt.Printf("%d records cleaned, %d anomalies, %d insights\n\n",
		results.Cleaned.Len(), len(results.Anomalies), len(results.Insights))
	for _, in := range results.Insights {
		fmt.Printf("[%s] %s: %s\n", in.Severity, in.Category, in.Message)
	}
	return nil
}

func runGenerate(v *viper.Viper) error {
	ds := datagen.Generate(datagen.Options{
		Seed:          v.GetInt64("seed"),
		StartYear:     v.GetInt("start-year"),
		EndYear:       v.GetInt("end-year"),
		Cities:        v.GetStringSlice("cities"),
		NullRate:      v.GetFloat64("null-rate"),
		DuplicateRate: v.GetFloat64("duplicate-rate"),
		OutlierRate:   v.GetFloat64("outlier-rate"),
	})

	output := v.GetString("output")
	if err := export.WriteCSVFile(output, ds); err != nil {
		return err
	}

	fmt.Printf("wrote %d records for %d cities to %s\n", ds.Len(), len(ds.Cities()), output)
	return nil
}

func runCompare(v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	raw, err := readDataset(v.GetString("input"))
	if err != nil {
		return err
	}

	cleaned, _, err := cleaner.New(cfg.Cleaning, log).Clean(raw)
	if err != nil {
		return err
	}

	metric := model.Column(v.GetString("metric"))
	ranks := analyzer.New(cfg.Analysis, log).
		CompareCities(cleaned, metric, v.GetInt("year"), v.GetInt("top"))
	if len(ranks) == 0 {
		fmt.Printf("no cities have values for %s\n", metric)
		return nil
	}

	fmt.Printf("cities ranked by %s\n", metric)
	for _, r := range ranks {
		fmt.Printf("%3d. %-25s %15.2f\n", r.Rank, r.City, r.Value)
	}
	return nil
}
