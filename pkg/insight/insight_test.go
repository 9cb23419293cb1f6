package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse/pkg/analyzer"
	"github.com/ecopulse/ecopulse/pkg/cleaner"
	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/model"
)

func fptr(v float64) *float64 { return &v }

func newFormatter(mutate func(*config.InsightConfig)) *Formatter {
	cfg := config.Default().Insights
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg)
}

func TestCleaningInsights(t *testing.T) {
	f := newFormatter(nil)

	report := cleaner.NewReport(100)
	report.InvalidDropped = 3
	report.DuplicatesDropped = 2
	report.Imputed[model.ColEnergy] = 4
	report.ImputationSkipped = []model.Column{model.ColCO2}
	report.Clamped[model.ColWater] = 1
	report.DerivedSkipped = 5

	insights := f.CleaningInsights(report)
	require.Len(t, insights, 5)
	for _, in := range insights {
		assert.Equal(t, CategoryDataQuality, in.Category)
	}

	assert.Contains(t, insights[0].Message, "dropped 5 of 100")
	assert.Equal(t, config.SeverityInfo, insights[0].Severity)
	assert.Contains(t, insights[1].Message, "imputed 4")
	assert.Contains(t, insights[2].Message, string(model.ColCO2))
	assert.Equal(t, config.SeverityWarning, insights[2].Severity)
	assert.Contains(t, insights[3].Message, "clamped 1")
	assert.Equal(t, config.SeverityWarning, insights[4].Severity)
}

func TestCleaningInsightsCleanInput(t *testing.T) {
	f := newFormatter(nil)

	report := cleaner.NewReport(50)

	assert.Empty(t, f.CleaningInsights(report), "nothing to report when nothing was repaired")
}

func TestAnomalyInsightSeverityBands(t *testing.T) {
	f := newFormatter(nil)

	anomalies := []analyzer.Anomaly{
		{City: "Curitiba", Year: 2020, Column: model.ColEnergy, Value: 10, Policy: "iqr", Score: 1.5},
		{City: "Curitiba", Year: 2021, Column: model.ColEnergy, Value: 20, Policy: "iqr", Score: 4.0},
		{City: "Curitiba", Year: 2022, Column: model.ColEnergy, Value: 30, Policy: "zscore", Score: -8.0},
	}

	insights := f.AnomalyInsights(anomalies)
	require.Len(t, insights, 3)
	assert.Equal(t, config.SeverityInfo, insights[0].Severity)
	assert.Equal(t, config.SeverityWarning, insights[1].Severity)
	assert.Equal(t, config.SeverityCritical, insights[2].Severity, "band applies to the absolute score")

	for _, in := range insights {
		assert.Equal(t, CategoryAnomaly, in.Category)
		assert.Contains(t, in.Message, "Curitiba")
	}
}

func TestTrendInsightsThreshold(t *testing.T) {
	f := newFormatter(nil)

	trends := []analyzer.CityTrend{
		{City: "Recife", Metric: model.ColEnergy, AvgAnnualPctChange: fptr(12.5), Direction: analyzer.DirectionUp},
		{City: "Salvador", Metric: model.ColEnergy, AvgAnnualPctChange: fptr(4.0), Direction: analyzer.DirectionUp},
		{City: "Manaus", Metric: model.ColEnergy, AvgAnnualPctChange: fptr(-15.0), Direction: analyzer.DirectionDown},
		{City: "Teresina", Metric: model.ColEnergy},
	}

	insights := f.TrendInsights(trends)
	require.Len(t, insights, 2)

	assert.Contains(t, insights[0].Message, "Recife")
	assert.Contains(t, insights[0].Message, "rising 12.5%")
	assert.Contains(t, insights[1].Message, "Manaus")
	assert.Contains(t, insights[1].Message, "falling 15.0%")
	for _, in := range insights {
		assert.Equal(t, CategoryTrend, in.Category)
		assert.Equal(t, config.SeverityWarning, in.Severity)
	}
}

func TestCorrelationInsights(t *testing.T) {
	f := newFormatter(nil)

	m := analyzer.CorrelationMatrix{
		Columns: []model.Column{model.ColEnergy, model.ColCO2, model.ColWaste},
		Cells: map[model.Column]map[model.Column]analyzer.Coefficient{
			model.ColEnergy: {
				model.ColEnergy: {Value: 1, Defined: true},
				model.ColCO2:    {Value: 0.92, Defined: true},
				model.ColWaste:  {Value: -0.85, Defined: true},
			},
			model.ColCO2: {
				model.ColEnergy: {Value: 0.92, Defined: true},
				model.ColCO2:    {Value: 1, Defined: true},
				model.ColWaste:  {Value: 0.3, Defined: true},
			},
			model.ColWaste: {
				model.ColEnergy: {Value: -0.85, Defined: true},
				model.ColCO2:    {Value: 0.3, Defined: true},
				model.ColWaste:  {Value: 1, Defined: true},
			},
		},
	}

	insights := f.CorrelationInsights(m)
	require.Len(t, insights, 2, "diagonal and weak pairs stay out")

	assert.Contains(t, insights[0].Message, "positively correlated")
	assert.Contains(t, insights[1].Message, "negatively correlated")
}

func TestRankingInsights(t *testing.T) {
	f := newFormatter(nil)

	ranks := []analyzer.CityRank{
		{City: "Belo Horizonte", Value: 150, Rank: 1},
		{City: "Santos", Value: 150, Rank: 2},
		{City: "Campinas", Value: 120, Rank: 3},
	}

	insights := f.RankingInsights(model.ColEnergy, ranks)
	require.Len(t, insights, 1)
	assert.Equal(t, CategoryRanking, insights[0].Category)
	assert.Contains(t, insights[0].Message, "Belo Horizonte leads")

	assert.Empty(t, f.RankingInsights(model.ColEnergy, nil))
}

func TestRankingInsightsLowestIsBest(t *testing.T) {
	f := newFormatter(nil)

	ranks := []analyzer.CityRank{
		{City: "São Paulo", Value: 85, Rank: 1},
		{City: "Porto Alegre", Value: 52, Rank: 2},
		{City: "Curitiba", Value: 38, Rank: 3},
	}

	insights := f.RankingInsights(model.ColAirQuality, ranks)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Message, "Curitiba has the lowest mean")
	assert.Contains(t, insights[0].Message, "São Paulo has the highest")
	assert.Equal(t, "Curitiba", insights[0].Data["best_city"])
	assert.Equal(t, "São Paulo", insights[0].Data["worst_city"])
}

func TestRankingInsightsPerCapitaEfficiency(t *testing.T) {
	f := newFormatter(nil)

	ranks := []analyzer.CityRank{
		{City: "Manaus", Value: 1.9, Rank: 1},
		{City: "Curitiba", Value: 1.1, Rank: 2},
	}

	insights := f.RankingInsights(model.ColEnergyPerCapita, ranks)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Message, "Curitiba has the lowest mean energy_per_capita")
	assert.Contains(t, insights[0].Message, "Manaus has the highest")
}

func TestGrowthLeaderInsights(t *testing.T) {
	f := newFormatter(nil)

	trends := []analyzer.CityTrend{
		{City: "Belém", Metric: model.ColCO2, AvgAnnualPctChange: fptr(2.1)},
		{City: "Manaus", Metric: model.ColCO2, AvgAnnualPctChange: fptr(4.8)},
		{City: "Natal", Metric: model.ColCO2},
		{City: "Natal", Metric: model.ColEnergy, AvgAnnualPctChange: fptr(9.9)},
	}

	insights := f.GrowthLeaderInsights(model.ColCO2, trends)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Message, "Manaus shows the fastest")
	assert.Contains(t, insights[0].Message, "4.80% per year")
}

func TestGrowthLeaderInsightsAllShrinking(t *testing.T) {
	f := newFormatter(nil)

	trends := []analyzer.CityTrend{
		{City: "Belém", Metric: model.ColCO2, AvgAnnualPctChange: fptr(-2.1)},
	}

	assert.Empty(t, f.GrowthLeaderInsights(model.ColCO2, trends))
}

func TestDriftInsights(t *testing.T) {
	f := newFormatter(nil)

	stats := map[model.Column]analyzer.ColumnStats{
		model.ColTemperature: {Mean: 22.4},
	}
	trends := []analyzer.CityTrend{
		{City: "Recife", Metric: model.ColTemperature, TotalPctChange: fptr(4.0)},
		{City: "Natal", Metric: model.ColTemperature, TotalPctChange: fptr(2.0)},
		{City: "Natal", Metric: model.ColEnergy, TotalPctChange: fptr(50.0)},
	}

	insights := f.DriftInsights(stats, trends)
	require.Len(t, insights, 1)
	assert.Equal(t, CategoryTrend, insights[0].Category)
	assert.Equal(t, config.SeverityWarning, insights[0].Severity, "rising temperature warns")
	assert.Contains(t, insights[0].Message, "rose 3.00%")
	assert.Contains(t, insights[0].Message, "22.4")
	assert.InDelta(t, 3.0, insights[0].Data["drift_pct"].(float64), 1e-9)
}

func TestDriftInsightsFalling(t *testing.T) {
	f := newFormatter(nil)

	trends := []analyzer.CityTrend{
		{City: "Recife", Metric: model.ColTemperature, TotalPctChange: fptr(-1.5)},
	}

	insights := f.DriftInsights(nil, trends)
	require.Len(t, insights, 1)
	assert.Equal(t, config.SeverityInfo, insights[0].Severity)
	assert.Contains(t, insights[0].Message, "fell 1.50%")
}

func TestDriftInsightsNoTemperatureTrends(t *testing.T) {
	f := newFormatter(nil)

	trends := []analyzer.CityTrend{
		{City: "Natal", Metric: model.ColEnergy, TotalPctChange: fptr(50.0)},
		{City: "Natal", Metric: model.ColTemperature},
	}

	assert.Empty(t, f.DriftInsights(nil, trends))
}

func TestSummarizeOrder(t *testing.T) {
	f := newFormatter(nil)

	stats := map[model.Column]analyzer.ColumnStats{
		model.ColTemperature: {Mean: 21.8},
	}
	anomalies := []analyzer.Anomaly{
		{City: "Natal", Year: 2024, Column: model.ColEnergy, Value: 100, Policy: "zscore", Score: 3.0},
	}
	trends := []analyzer.CityTrend{
		{City: "Recife", Metric: model.ColEnergy, AvgAnnualPctChange: fptr(20)},
		{City: "Recife", Metric: model.ColTemperature, TotalPctChange: fptr(3.5)},
	}
	rankings := map[model.Column][]analyzer.CityRank{
		model.ColEnergy: {{City: "Natal", Value: 100, Rank: 1}},
	}

	insights := f.Summarize(stats, anomalies, trends, analyzer.CorrelationMatrix{}, rankings)
	require.Len(t, insights, 4)
	assert.Equal(t, CategoryAnomaly, insights[0].Category)
	assert.Equal(t, CategoryTrend, insights[1].Category)
	assert.Equal(t, CategoryTrend, insights[2].Category, "temperature drift follows the city trends")
	assert.Equal(t, CategoryRanking, insights[3].Category)
	assert.Contains(t, insights[3].Message, "Natal leads")
}
