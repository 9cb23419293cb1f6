// Package config provides the configuration surface for the ecopulse
// pipeline. Defaults are explicit, validated once at load time, and passed
// into the Cleaner, Analyzer and insight Formatter constructors; nothing
// here is ambient or global state.
package config

import (
	"github.com/ecopulse/ecopulse/pkg/errors"
)

// Outlier detection methods accepted by AnalysisConfig.OutlierMethod.
const (
	OutlierMethodIQR    = "iqr"
	OutlierMethodZScore = "zscore"
)

// ImputeStrategyMedian is the only supported imputation strategy.
const ImputeStrategyMedian = "median"

// Severity levels used by insight severity bands.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Config is the full configuration for a pipeline run.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Cleaning CleaningConfig `yaml:"cleaning" mapstructure:"cleaning"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Insights InsightConfig  `yaml:"insights" mapstructure:"insights"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" mapstructure:"level"`
	// Encoding selects json or console output
	Encoding string `yaml:"encoding" mapstructure:"encoding"`
}

// CleaningConfig controls the Cleaner.
type CleaningConfig struct {
	// YearMin and YearMax bound the plausible observation years; records
	// outside the range are dropped during structural validation
	YearMin int `yaml:"year_min" mapstructure:"year_min"`
	YearMax int `yaml:"year_max" mapstructure:"year_max"`
	// ImputeStrategy selects the null imputation strategy ("median")
	ImputeStrategy string `yaml:"impute_strategy" mapstructure:"impute_strategy"`
	// IQRMultiplier scales the interquartile range when computing the
	// clamping bounds [Q1 - k*IQR, Q3 + k*IQR]
	IQRMultiplier float64 `yaml:"iqr_multiplier" mapstructure:"iqr_multiplier"`
}

// AnalysisConfig controls the Analyzer.
type AnalysisConfig struct {
	// OutlierMethod selects the anomaly detection policy ("iqr" or "zscore")
	OutlierMethod string `yaml:"outlier_method" mapstructure:"outlier_method"`
	// ZScoreThreshold flags values more than this many standard deviations
	// from the column mean under the zscore policy
	ZScoreThreshold float64 `yaml:"zscore_threshold" mapstructure:"zscore_threshold"`
	// IQRMultiplier scales the IQR bounds under the iqr policy
	IQRMultiplier float64 `yaml:"iqr_multiplier" mapstructure:"iqr_multiplier"`
	// TrendMetrics lists the column names trend analysis is run for
	TrendMetrics []string `yaml:"trend_metrics" mapstructure:"trend_metrics"`
}

// InsightConfig holds the thresholds the insight Formatter applies.
type InsightConfig struct {
	// TrendAlertPct is the average annual change (percent) above which a
	// city trend becomes an insight
	TrendAlertPct float64 `yaml:"trend_alert_pct" mapstructure:"trend_alert_pct"`
	// CorrelationAlert is the absolute Pearson coefficient above which a
	// column pair becomes an insight
	CorrelationAlert float64 `yaml:"correlation_alert" mapstructure:"correlation_alert"`
	// SeverityBands map anomaly scores to severities; the band with the
	// highest MinScore not exceeding the score wins
	SeverityBands []SeverityBand `yaml:"anomaly_severity_bands" mapstructure:"anomaly_severity_bands"`
}

// SeverityBand assigns a severity to anomaly scores at or above MinScore.
type SeverityBand struct {
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
	Severity string  `yaml:"severity" mapstructure:"severity"`
}

// Default returns a Config with production defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Cleaning: CleaningConfig{
			YearMin:        2000,
			YearMax:        2100,
			ImputeStrategy: ImputeStrategyMedian,
			IQRMultiplier:  1.5,
		},
		Analysis: AnalysisConfig{
			OutlierMethod:   OutlierMethodIQR,
			ZScoreThreshold: 3.0,
			IQRMultiplier:   1.5,
			TrendMetrics: []string{
				"energy_consumption_mwh",
				"air_quality_index",
				"solid_waste_tons",
				"co2_emissions_tons",
				"avg_temperature_c",
				"energy_per_capita",
			},
		},
		Insights: InsightConfig{
			TrendAlertPct:    10.0,
			CorrelationAlert: 0.7,
			SeverityBands: []SeverityBand{
				{MinScore: 0, Severity: SeverityInfo},
				{MinScore: 3, Severity: SeverityWarning},
				{MinScore: 6, Severity: SeverityCritical},
			},
		},
	}
}

// Validate checks the configuration for correctness. It is called before
// any data processing so that bad thresholds or policy names fail the run
// up front.
func (c *Config) Validate() error {
	if c.Cleaning.YearMin <= 0 || c.Cleaning.YearMax <= 0 {
		return errors.New(errors.ErrorTypeConfig, "year range must be positive")
	}
	if c.Cleaning.YearMin > c.Cleaning.YearMax {
		return errors.Newf(errors.ErrorTypeConfig, "year_min %d exceeds year_max %d",
			c.Cleaning.YearMin, c.Cleaning.YearMax)
	}
	if c.Cleaning.ImputeStrategy != ImputeStrategyMedian {
		return errors.Newf(errors.ErrorTypeConfig, "unsupported impute_strategy %q",
			c.Cleaning.ImputeStrategy)
	}
	if c.Cleaning.IQRMultiplier <= 0 {
		return errors.New(errors.ErrorTypeConfig, "cleaning iqr_multiplier must be positive")
	}

	switch c.Analysis.OutlierMethod {
	case OutlierMethodIQR, OutlierMethodZScore:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported outlier_method %q",
			c.Analysis.OutlierMethod)
	}
	if c.Analysis.ZScoreThreshold <= 0 {
		return errors.New(errors.ErrorTypeConfig, "zscore_threshold must be positive")
	}
	if c.Analysis.IQRMultiplier <= 0 {
		return errors.New(errors.ErrorTypeConfig, "analysis iqr_multiplier must be positive")
	}

	if c.Insights.TrendAlertPct < 0 {
		return errors.New(errors.ErrorTypeConfig, "trend_alert_pct cannot be negative")
	}
	if c.Insights.CorrelationAlert < 0 || c.Insights.CorrelationAlert > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "correlation_alert %.2f outside [0, 1]",
			c.Insights.CorrelationAlert)
	}
	if len(c.Insights.SeverityBands) == 0 {
		return errors.New(errors.ErrorTypeConfig, "at least one anomaly severity band is required")
	}
	prev := -1.0
	for _, band := range c.Insights.SeverityBands {
		if band.MinScore < 0 {
			return errors.New(errors.ErrorTypeConfig, "severity band min_score cannot be negative")
		}
		if band.MinScore <= prev {
			return errors.New(errors.ErrorTypeConfig, "severity bands must be sorted by ascending min_score")
		}
		switch band.Severity {
		case SeverityInfo, SeverityWarning, SeverityCritical:
		default:
			return errors.Newf(errors.ErrorTypeConfig, "unknown severity %q", band.Severity)
		}
		prev = band.MinScore
	}

	return nil
}
