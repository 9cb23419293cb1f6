// Package analyzer derives descriptive statistics, anomaly flags, trends
// and correlations from a cleaned dataset. Every operation is read-only
// over the dataset and returns independent result values, so they may run
// concurrently over the same cleaned data without synchronization.
package analyzer

import (
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// Analyzer runs the exploratory analyses over a cleaned dataset.
type Analyzer struct {
	cfg config.AnalysisConfig
	log *zap.Logger
}

// New creates an Analyzer. The configuration must already be validated.
func New(cfg config.AnalysisConfig, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, log: log}
}

// ColumnStats holds the descriptive statistics of one numeric column.
// Quartiles and higher moments are pointers because they are undefined
// for very small samples.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`

	Q1         *float64 `json:"q1,omitempty"`
	Q3         *float64 `json:"q3,omitempty"`
	Skewness   *float64 `json:"skewness,omitempty"`
	ExKurtosis *float64 `json:"ex_kurtosis,omitempty"`
}

// DescribeColumns computes descriptive statistics for every numeric
// column with at least one value. Columns that are entirely unset, such
// as derived metrics when no record has a usable population, are absent
// from the result.
func (a *Analyzer) DescribeColumns(ds model.Dataset) map[model.Column]ColumnStats {
	result := make(map[model.Column]ColumnStats)

	for _, col := range model.NumericColumns() {
		values := ds.ColumnValues(col)
		if len(values) == 0 {
			continue
		}
		result[col] = describe(values)
	}

	a.log.Debug("descriptive statistics computed", zap.Int("columns", len(result)))
	return result
}

func describe(values []float64) ColumnStats {
	cs := ColumnStats{Count: len(values)}

	cs.Mean, _ = stats.Mean(values)
	cs.Median, _ = stats.Median(values)
	cs.Min, _ = stats.Min(values)
	cs.Max, _ = stats.Max(values)

	if len(values) >= 2 {
		cs.StdDev, _ = stats.StandardDeviationSample(values)
	}

	if q1, err := stats.Percentile(values, 25); err == nil {
		cs.Q1 = &q1
	}
	if q3, err := stats.Percentile(values, 75); err == nil {
		cs.Q3 = &q3
	}

	if len(values) >= 3 {
		skew := stat.Skew(values, nil)
		cs.Skewness = &skew
	}
	if len(values) >= 4 {
		kurt := stat.ExKurtosis(values, nil)
		cs.ExKurtosis = &kurt
	}

	return cs
}

// iqrBounds computes the outlier bounds for one column under the
// configured multiplier. It reports ok=false when the sample is too
// small for quartiles.
func iqrBounds(values []float64, multiplier float64) (lower, upper, iqr float64, ok bool) {
	q1, err := stats.Percentile(values, 25)
	if err != nil {
		return 0, 0, 0, false
	}
	q3, err := stats.Percentile(values, 75)
	if err != nil {
		return 0, 0, 0, false
	}

	iqr = q3 - q1
	return q1 - multiplier*iqr, q3 + multiplier*iqr, iqr, true
}
