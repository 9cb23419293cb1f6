package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/model"
)

func TestDetectAnomaliesIQR(t *testing.T) {
	a := newAnalyzer(t, nil)

	anomalies := a.DetectAnomalies(skewedEnergyDataset())

	require.Len(t, anomalies, 1)
	got := anomalies[0]
	assert.Equal(t, "Curitiba", got.City)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, model.ColEnergy, got.Column)
	assert.InDelta(t, 1000, got.Value, 1e-9)
	assert.Equal(t, config.OutlierMethodIQR, got.Policy)

	// Bounds are [7.5, 15.5] with an interquartile range of 2, so the
	// score is (1000 - 15.5) / 2.
	assert.InDelta(t, 492.25, got.Score, 1e-9)
}

func TestDetectAnomaliesZScore(t *testing.T) {
	a := newAnalyzer(t, func(cfg *config.AnalysisConfig) {
		cfg.OutlierMethod = config.OutlierMethodZScore
		cfg.ZScoreThreshold = 2.0
	})

	records := make([]model.Record, 0, 10)
	for year := 2015; year < 2024; year++ {
		records = append(records, obs("Natal", year, 10))
	}
	records = append(records, obs("Natal", 2024, 100))

	anomalies := a.DetectAnomalies(model.NewDataset(records))

	require.Len(t, anomalies, 1)
	got := anomalies[0]
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, model.ColEnergy, got.Column)
	assert.Equal(t, config.OutlierMethodZScore, got.Policy)
	assert.InDelta(t, 3.0, got.Score, 1e-9)
}

func TestDetectAnomaliesIQRZeroSpread(t *testing.T) {
	a := newAnalyzer(t, nil)

	records := []model.Record{
		obs("Fortaleza", 2020, 1),
		obs("Fortaleza", 2021, 1),
		obs("Fortaleza", 2022, 1),
		obs("Fortaleza", 2023, 1),
		obs("Fortaleza", 2024, 100),
	}

	anomalies := a.DetectAnomalies(model.NewDataset(records))

	// Q1 and Q3 are both 1, so the bounds collapse to [1, 1]; the outlier
	// is still flagged and the score falls back to the absolute distance
	// past the bound.
	require.Len(t, anomalies, 1)
	got := anomalies[0]
	assert.Equal(t, "Fortaleza", got.City)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, model.ColEnergy, got.Column)
	assert.Equal(t, config.OutlierMethodIQR, got.Policy)
	assert.InDelta(t, 99.0, got.Score, 1e-9)
}

func TestDetectAnomaliesSkipsDegenerateColumns(t *testing.T) {
	// Every column constant: zero spread means nothing stands out.
	ds := model.NewDataset([]model.Record{
		obs("Palmas", 2020, 100),
		obs("Palmas", 2021, 100),
		obs("Palmas", 2022, 100),
		obs("Palmas", 2023, 100),
	})

	for _, method := range []string{config.OutlierMethodIQR, config.OutlierMethodZScore} {
		a := newAnalyzer(t, func(cfg *config.AnalysisConfig) {
			cfg.OutlierMethod = method
		})
		assert.Empty(t, a.DetectAnomalies(ds), "method %s", method)
	}
}

func TestDetectAnomaliesRecordOrder(t *testing.T) {
	a := newAnalyzer(t, nil)

	records := []model.Record{
		obs("Goiânia", 2020, 1000),
		obs("Goiânia", 2021, 10),
		obs("Goiânia", 2022, 12),
		obs("Goiânia", 2023, 11),
		obs("Goiânia", 2024, 13),
	}
	records[0].CO2 = fptr(4000)
	records[1].CO2 = fptr(4100)
	records[2].CO2 = fptr(4200)
	records[3].CO2 = fptr(4300)
	records[4].CO2 = fptr(43000)

	anomalies := a.DetectAnomalies(model.NewDataset(records))

	require.Len(t, anomalies, 2)
	assert.Equal(t, model.ColEnergy, anomalies[0].Column)
	assert.Equal(t, 2020, anomalies[0].Year)
	assert.Equal(t, model.ColCO2, anomalies[1].Column)
	assert.Equal(t, 2024, anomalies[1].Year)
}

func TestDetectAnomaliesIgnoresUnsetValues(t *testing.T) {
	a := newAnalyzer(t, nil)

	ds := skewedEnergyDataset()
	ds.Records[4].Energy = nil

	for _, got := range a.DetectAnomalies(ds) {
		assert.NotEqual(t, model.ColEnergy, got.Column)
	}
}
