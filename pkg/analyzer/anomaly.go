package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// Anomaly flags one value of one record as unusual under the active
// detection policy. Score is the z-score under the zscore policy, and
// the distance past the violated bound in IQR units under the iqr
// policy (absolute distance when the interquartile range is zero).
type Anomaly struct {
	City   string       `json:"city"`
	Year   int          `json:"year"`
	Column model.Column `json:"column"`
	Value  float64      `json:"value"`
	Policy string       `json:"policy"`
	Score  float64      `json:"score"`
}

// columnGauge holds the per-column thresholds precomputed before the
// record sweep.
type columnGauge struct {
	// iqr policy
	lower, upper, iqr float64

	// zscore policy
	mean, sigma float64

	usable bool
}

// DetectAnomalies flags unusual values across all numeric columns using
// the configured policy. Results follow record order, then the canonical
// column order within a record, so repeated runs over the same dataset
// produce identical output.
//
// Under the zscore policy a column with zero standard deviation is
// skipped since the z-score is undefined there. The iqr policy keeps
// degenerate columns: with a zero interquartile range the bounds
// collapse to [Q1, Q3] and any value outside them is still flagged.
func (a *Analyzer) DetectAnomalies(ds model.Dataset) []Anomaly {
	gauges := make(map[model.Column]columnGauge)
	for _, col := range model.NumericColumns() {
		gauges[col] = a.gauge(ds.ColumnValues(col))
	}

	var anomalies []Anomaly
	for _, rec := range ds.Records {
		for _, col := range model.NumericColumns() {
			v := rec.Value(col)
			if v == nil {
				continue
			}
			g := gauges[col]
			if !g.usable {
				continue
			}

			score, flagged := a.score(g, *v)
			if !flagged {
				continue
			}
			anomalies = append(anomalies, Anomaly{
				City:   rec.City,
				Year:   rec.Year,
				Column: col,
				Value:  *v,
				Policy: a.cfg.OutlierMethod,
				Score:  score,
			})
		}
	}

	a.log.Info("anomaly detection finished",
		zap.String("policy", a.cfg.OutlierMethod),
		zap.Int("anomalies", len(anomalies)))
	return anomalies
}

func (a *Analyzer) gauge(values []float64) columnGauge {
	if len(values) < 2 {
		return columnGauge{}
	}

	switch a.cfg.OutlierMethod {
	case config.OutlierMethodZScore:
		mean, _ := stats.Mean(values)
		sigma, _ := stats.StandardDeviationPopulation(values)
		if sigma == 0 {
			return columnGauge{}
		}
		return columnGauge{mean: mean, sigma: sigma, usable: true}

	default: // config.OutlierMethodIQR
		lower, upper, iqr, ok := iqrBounds(values, a.cfg.IQRMultiplier)
		if !ok {
			return columnGauge{}
		}
		return columnGauge{lower: lower, upper: upper, iqr: iqr, usable: true}
	}
}

func (a *Analyzer) score(g columnGauge, v float64) (float64, bool) {
	if a.cfg.OutlierMethod == config.OutlierMethodZScore {
		z := (v - g.mean) / g.sigma
		return z, math.Abs(z) > a.cfg.ZScoreThreshold
	}

	switch {
	case v < g.lower:
		return iqrScore(g.lower-v, g.iqr), true
	case v > g.upper:
		return iqrScore(v-g.upper, g.iqr), true
	default:
		return 0, false
	}
}

// iqrScore expresses the distance past a bound in IQR units, falling
// back to the absolute distance when the column has no interquartile
// spread.
func iqrScore(distance, iqr float64) float64 {
	if iqr == 0 {
		return distance
	}
	return distance / iqr
}
