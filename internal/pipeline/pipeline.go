// Package pipeline wires cleaning, analysis and insight generation into
// one run over a raw dataset. Cleaning happens first and alone; the four
// analyses are independent reads of the cleaned dataset and run
// concurrently, each writing its own result field.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/pkg/analyzer"
	"github.com/ecopulse/ecopulse/pkg/cleaner"
	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/errors"
	"github.com/ecopulse/ecopulse/pkg/insight"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// Pipeline runs the full cleaning and analysis sequence under one
// configuration.
type Pipeline struct {
	cfg       *config.Config
	log       *zap.Logger
	cleaner   *cleaner.Cleaner
	analyzer  *analyzer.Analyzer
	formatter *insight.Formatter
}

// Results collects everything one run produces.
type Results struct {
	Cleaned model.Dataset `json:"-"`

	Report       cleaner.Report                        `json:"cleaning_report"`
	Stats        map[model.Column]analyzer.ColumnStats `json:"column_stats"`
	Anomalies    []analyzer.Anomaly                    `json:"anomalies"`
	Trends       []analyzer.CityTrend                  `json:"trends"`
	Correlations analyzer.CorrelationMatrix            `json:"correlations"`
	Rankings     map[model.Column][]analyzer.CityRank  `json:"rankings"`
	Insights     []insight.Insight                     `json:"insights"`

	Duration time.Duration `json:"duration_ns"`
}

// New creates a Pipeline. The configuration must already be validated.
func New(cfg *config.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		cleaner:   cleaner.New(cfg.Cleaning, log),
		analyzer:  analyzer.New(cfg.Analysis, log),
		formatter: insight.New(cfg.Insights),
	}
}

// Run cleans the raw dataset and computes all analyses over the result.
// Cleaning failures abort the run; the analyses never fail, they degrade
// to empty or undefined results where data is too thin.
func (p *Pipeline) Run(ctx context.Context, raw model.Dataset) (*Results, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "run cancelled")
	}

	cleaned, report, err := p.cleaner.Clean(raw)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "run cancelled")
	}

	results := &Results{Cleaned: cleaned, Report: report}

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		results.Stats = p.analyzer.DescribeColumns(cleaned)
	}()
	go func() {
		defer wg.Done()
		results.Anomalies = p.analyzer.DetectAnomalies(cleaned)
	}()
	go func() {
		defer wg.Done()
		results.Trends = p.trends(cleaned)
	}()
	go func() {
		defer wg.Done()
		results.Correlations = p.analyzer.Correlations(cleaned)
	}()
	go func() {
		defer wg.Done()
		results.Rankings = p.rankings(cleaned)
	}()
	wg.Wait()

	results.Insights = p.formatter.CleaningInsights(report)
	results.Insights = append(results.Insights, p.formatter.Summarize(
		results.Stats, results.Anomalies, results.Trends, results.Correlations, results.Rankings)...)
	results.Duration = time.Since(start)

	p.log.Info("pipeline run finished",
		zap.Int("records", cleaned.Len()),
		zap.Int("anomalies", len(results.Anomalies)),
		zap.Int("insights", len(results.Insights)),
		zap.Duration("duration", results.Duration))
	return results, nil
}

// trends runs trend analysis for every configured metric, flattened in
// configuration order.
func (p *Pipeline) trends(ds model.Dataset) []analyzer.CityTrend {
	var trends []analyzer.CityTrend
	for _, metric := range p.cfg.Analysis.TrendMetrics {
		trends = append(trends, p.analyzer.Trends(ds, model.Column(metric))...)
	}
	return trends
}

// rankings ranks cities by their mean over all years, one ranking per
// configured metric.
func (p *Pipeline) rankings(ds model.Dataset) map[model.Column][]analyzer.CityRank {
	rankings := make(map[model.Column][]analyzer.CityRank, len(p.cfg.Analysis.TrendMetrics))
	for _, metric := range p.cfg.Analysis.TrendMetrics {
		col := model.Column(metric)
		rankings[col] = p.analyzer.CompareCities(ds, col, 0, 0)
	}
	return rankings
}
