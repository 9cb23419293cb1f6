// Package insight turns cleaning reports and analysis results into
// human-readable findings. The Formatter is pure: it applies configured
// thresholds and returns Insight values, and leaves rendering and output
// to the caller.
package insight

import (
	"fmt"
	"math"

	"github.com/ecopulse/ecopulse/pkg/analyzer"
	"github.com/ecopulse/ecopulse/pkg/cleaner"
	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// Insight categories.
const (
	CategoryDataQuality = "data_quality"
	CategoryAnomaly     = "anomaly"
	CategoryTrend       = "trend"
	CategoryCorrelation = "correlation"
	CategoryRanking     = "ranking"
)

// Insight is one finding. Data carries the numbers behind the message
// for machine consumers.
type Insight struct {
	Category string         `json:"category"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// Formatter produces insights under a fixed threshold configuration.
type Formatter struct {
	cfg config.InsightConfig
}

// New creates a Formatter. The configuration must already be validated.
func New(cfg config.InsightConfig) *Formatter {
	return &Formatter{cfg: cfg}
}

// Summarize assembles the insight list for one analysis pass: anomalies,
// trends, the period temperature drift, correlations, then the city
// rankings in canonical column order. Cleaning findings come from
// CleaningInsights, which the caller composes ahead of these since they
// describe the cleaning report rather than the analyzer outputs.
func (f *Formatter) Summarize(
	stats map[model.Column]analyzer.ColumnStats,
	anomalies []analyzer.Anomaly,
	trends []analyzer.CityTrend,
	correlations analyzer.CorrelationMatrix,
	rankings map[model.Column][]analyzer.CityRank,
) []Insight {
	var insights []Insight
	insights = append(insights, f.AnomalyInsights(anomalies)...)
	insights = append(insights, f.TrendInsights(trends)...)
	insights = append(insights, f.GrowthLeaderInsights(model.ColCO2, trends)...)
	insights = append(insights, f.DriftInsights(stats, trends)...)
	insights = append(insights, f.CorrelationInsights(correlations)...)
	for _, col := range model.NumericColumns() {
		insights = append(insights, f.RankingInsights(col, rankings[col])...)
	}
	return insights
}

// CleaningInsights reports what cleaning had to repair. Columns that
// could not be imputed at all are flagged as warnings since their
// derived metrics are missing downstream.
func (f *Formatter) CleaningInsights(report cleaner.Report) []Insight {
	var insights []Insight

	if dropped := report.TotalDropped(); dropped > 0 {
		insights = append(insights, Insight{
			Category: CategoryDataQuality,
			Severity: config.SeverityInfo,
			Message: fmt.Sprintf("dropped %d of %d input records (%d invalid, %d duplicates)",
				dropped, report.TotalInput, report.InvalidDropped, report.DuplicatesDropped),
			Data: map[string]any{
				"total_input":        report.TotalInput,
				"invalid_dropped":    report.InvalidDropped,
				"duplicates_dropped": report.DuplicatesDropped,
			},
		})
	}

	if imputed := report.TotalImputed(); imputed > 0 {
		insights = append(insights, Insight{
			Category: CategoryDataQuality,
			Severity: config.SeverityInfo,
			Message:  fmt.Sprintf("imputed %d missing values with column medians", imputed),
			Data:     map[string]any{"imputed_by_column": report.Imputed},
		})
	}

	for _, col := range report.ImputationSkipped {
		insights = append(insights, Insight{
			Category: CategoryDataQuality,
			Severity: config.SeverityWarning,
			Message:  fmt.Sprintf("column %s has no values at all and stays empty", col),
			Data:     map[string]any{"column": string(col)},
		})
	}

	if clamped := report.TotalClamped(); clamped > 0 {
		insights = append(insights, Insight{
			Category: CategoryDataQuality,
			Severity: config.SeverityInfo,
			Message:  fmt.Sprintf("clamped %d outlier values into their interquartile bounds", clamped),
			Data:     map[string]any{"clamped_by_column": report.Clamped},
		})
	}

	if report.DerivedSkipped > 0 {
		insights = append(insights, Insight{
			Category: CategoryDataQuality,
			Severity: config.SeverityWarning,
			Message: fmt.Sprintf("%d records have no usable population; their per-capita metrics are unset",
				report.DerivedSkipped),
			Data: map[string]any{"records": report.DerivedSkipped},
		})
	}

	return insights
}

// AnomalyInsights emits one insight per detected anomaly, with severity
// taken from the configured score bands.
func (f *Formatter) AnomalyInsights(anomalies []analyzer.Anomaly) []Insight {
	insights := make([]Insight, 0, len(anomalies))
	for _, a := range anomalies {
		insights = append(insights, Insight{
			Category: CategoryAnomaly,
			Severity: f.severityFor(math.Abs(a.Score)),
			Message: fmt.Sprintf("%s %d: %s value %.2f is unusual (%s score %.2f)",
				a.City, a.Year, a.Column, a.Value, a.Policy, a.Score),
			Data: map[string]any{
				"city":   a.City,
				"year":   a.Year,
				"column": string(a.Column),
				"value":  a.Value,
				"score":  a.Score,
			},
		})
	}
	return insights
}

// TrendInsights emits an insight for every city trend whose average
// annual change exceeds the alert threshold.
func (f *Formatter) TrendInsights(trends []analyzer.CityTrend) []Insight {
	var insights []Insight
	for _, tr := range trends {
		if tr.AvgAnnualPctChange == nil {
			continue
		}
		avg := *tr.AvgAnnualPctChange
		if math.Abs(avg) < f.cfg.TrendAlertPct {
			continue
		}

		verb := "rising"
		if avg < 0 {
			verb = "falling"
		}
		insights = append(insights, Insight{
			Category: CategoryTrend,
			Severity: config.SeverityWarning,
			Message: fmt.Sprintf("%s in %s is %s %.1f%% per year on average",
				tr.Metric, tr.City, verb, math.Abs(avg)),
			Data: map[string]any{
				"city":             tr.City,
				"metric":           string(tr.Metric),
				"avg_annual_pct":   avg,
				"total_pct_change": deref(tr.TotalPctChange),
				"direction":        tr.Direction,
				"years_observed":   len(tr.Points),
			},
		})
	}
	return insights
}

// CorrelationInsights emits an insight per column pair whose absolute
// coefficient reaches the alert threshold. Each pair appears once, in
// the canonical column order.
func (f *Formatter) CorrelationInsights(m analyzer.CorrelationMatrix) []Insight {
	var insights []Insight
	for i, ca := range m.Columns {
		for _, cb := range m.Columns[i+1:] {
			coef := m.At(ca, cb)
			if !coef.Defined || math.Abs(coef.Value) < f.cfg.CorrelationAlert {
				continue
			}

			kind := "positively"
			if coef.Value < 0 {
				kind = "negatively"
			}
			insights = append(insights, Insight{
				Category: CategoryCorrelation,
				Severity: config.SeverityInfo,
				Message: fmt.Sprintf("%s and %s are strongly %s correlated (r=%.2f)",
					ca, cb, kind, coef.Value),
				Data: map[string]any{
					"column_a":    string(ca),
					"column_b":    string(cb),
					"coefficient": coef.Value,
				},
			})
		}
	}
	return insights
}

// RankingInsights highlights the extremes of a city ranking. Rankings
// sort highest first; for metrics where lower is better the last entry
// is the leader, and the insight names both ends of the ranking.
func (f *Formatter) RankingInsights(metric model.Column, ranks []analyzer.CityRank) []Insight {
	if len(ranks) == 0 {
		return nil
	}

	if !lowestIsBest(metric) {
		top := ranks[0]
		return []Insight{{
			Category: CategoryRanking,
			Severity: config.SeverityInfo,
			Message: fmt.Sprintf("%s leads %s with %.2f across %d ranked cities",
				top.City, metric, top.Value, len(ranks)),
			Data: map[string]any{
				"city":   top.City,
				"metric": string(metric),
				"value":  top.Value,
				"cities": len(ranks),
			},
		}}
	}

	best := ranks[len(ranks)-1]
	msg := fmt.Sprintf("%s has the lowest mean %s at %.2f", best.City, metric, best.Value)
	data := map[string]any{
		"metric":    string(metric),
		"best_city": best.City,
		"best":      best.Value,
		"cities":    len(ranks),
	}
	if len(ranks) > 1 {
		worst := ranks[0]
		msg = fmt.Sprintf("%s, while %s has the highest at %.2f", msg, worst.City, worst.Value)
		data["worst_city"] = worst.City
		data["worst"] = worst.Value
	}
	return []Insight{{
		Category: CategoryRanking,
		Severity: config.SeverityInfo,
		Message:  msg,
		Data:     data,
	}}
}

// lowestIsBest reports whether the small end of a ranking is the
// desirable one. The air quality index reads lower for cleaner air, and
// the consumption-side per-capita metrics measure resource use per
// resident. Water efficiency counts residents served per cubic meter,
// so it ranks like the raw measurements.
func lowestIsBest(c model.Column) bool {
	switch c {
	case model.ColAirQuality, model.ColEnergyPerCapita, model.ColWastePerCapita,
		model.ColWaterPerCapita, model.ColCO2PerCapita, model.ColCarbonIntensity:
		return true
	}
	return false
}

// GrowthLeaderInsights names the city whose metric grew fastest on
// average across the period. Emitted only when that fastest growth is
// actually positive.
func (f *Formatter) GrowthLeaderInsights(metric model.Column, trends []analyzer.CityTrend) []Insight {
	var leader *analyzer.CityTrend
	for i, tr := range trends {
		if tr.Metric != metric || tr.AvgAnnualPctChange == nil {
			continue
		}
		if leader == nil || *tr.AvgAnnualPctChange > *leader.AvgAnnualPctChange {
			leader = &trends[i]
		}
	}
	if leader == nil || *leader.AvgAnnualPctChange <= 0 {
		return nil
	}

	return []Insight{{
		Category: CategoryTrend,
		Severity: config.SeverityInfo,
		Message: fmt.Sprintf("%s shows the fastest %s growth at %.2f%% per year",
			leader.City, metric, *leader.AvgAnnualPctChange),
		Data: map[string]any{
			"city":           leader.City,
			"metric":         string(metric),
			"avg_annual_pct": *leader.AvgAnnualPctChange,
		},
	}}
}

// DriftInsights reports how the average temperature moved over the
// observed period, aggregated across the per-city temperature trends.
// A rising average is flagged as a warning since it points at urban
// heat buildup.
func (f *Formatter) DriftInsights(stats map[model.Column]analyzer.ColumnStats, trends []analyzer.CityTrend) []Insight {
	var total float64
	var cities int
	for _, tr := range trends {
		if tr.Metric != model.ColTemperature || tr.TotalPctChange == nil {
			continue
		}
		total += *tr.TotalPctChange
		cities++
	}
	if cities == 0 {
		return nil
	}

	drift := total / float64(cities)
	if drift == 0 {
		return nil
	}
	verb, severity := "fell", config.SeverityInfo
	if drift > 0 {
		verb, severity = "rose", config.SeverityWarning
	}

	msg := fmt.Sprintf("average temperature %s %.2f%% over the observed period", verb, math.Abs(drift))
	data := map[string]any{
		"metric":    string(model.ColTemperature),
		"drift_pct": drift,
		"cities":    cities,
	}
	if st, ok := stats[model.ColTemperature]; ok {
		msg = fmt.Sprintf("%s (period mean %.1f°C)", msg, st.Mean)
		data["mean"] = st.Mean
	}
	return []Insight{{
		Category: CategoryTrend,
		Severity: severity,
		Message:  msg,
		Data:     data,
	}}
}

// severityFor picks the band with the highest min_score not exceeding
// the score. Bands are validated to be sorted ascending.
func (f *Formatter) severityFor(score float64) string {
	severity := f.cfg.SeverityBands[0].Severity
	for _, band := range f.cfg.SeverityBands {
		if score < band.MinScore {
			break
		}
		severity = band.Severity
	}
	return severity
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
