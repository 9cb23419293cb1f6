package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse/pkg/model"
)

func correlationDataset() model.Dataset {
	records := make([]model.Record, 4)
	for i := range records {
		v := float64(i + 1)
		records[i] = model.Record{
			City:        "Vitória",
			Year:        2020 + i,
			Energy:      fptr(v),
			CO2:         fptr(2 * v),
			Waste:       fptr(10 - 2*v),
			Temperature: fptr(21),
			AirQuality:  fptr(50),
			Population:  fptr(1900),
		}
	}
	// Water observed only once, too sparse to correlate.
	records[0].Water = fptr(120000)
	return model.NewDataset(records)
}

func TestCorrelations(t *testing.T) {
	a := newAnalyzer(t, nil)

	m := a.Correlations(correlationDataset())
	assert.Equal(t, model.NumericColumns(), m.Columns)

	energyCO2 := m.At(model.ColEnergy, model.ColCO2)
	require.True(t, energyCO2.Defined)
	assert.InDelta(t, 1, energyCO2.Value, 1e-9)

	energyWaste := m.At(model.ColEnergy, model.ColWaste)
	require.True(t, energyWaste.Defined)
	assert.InDelta(t, -1, energyWaste.Value, 1e-9)

	assert.Equal(t, energyCO2, m.At(model.ColCO2, model.ColEnergy), "matrix is symmetric")

	diag := m.At(model.ColEnergy, model.ColEnergy)
	require.True(t, diag.Defined)
	assert.Equal(t, 1.0, diag.Value)
}

func TestCorrelationsUndefinedPairs(t *testing.T) {
	a := newAnalyzer(t, nil)

	m := a.Correlations(correlationDataset())

	assert.False(t, m.At(model.ColEnergy, model.ColTemperature).Defined,
		"constant column has no correlation")
	assert.False(t, m.At(model.ColTemperature, model.ColTemperature).Defined)
	assert.False(t, m.At(model.ColWater, model.ColEnergy).Defined,
		"a single joint observation is not enough")
	assert.False(t, m.At(model.ColEnergy, model.ColEnergyPerCapita).Defined,
		"derived column never computed")
}

func TestCorrelationsEmptyDataset(t *testing.T) {
	a := newAnalyzer(t, nil)

	m := a.Correlations(model.NewDataset(nil))
	for _, ca := range m.Columns {
		for _, cb := range m.Columns {
			assert.False(t, m.At(ca, cb).Defined)
		}
	}
	assert.False(t, m.At(model.Column("unknown"), model.ColEnergy).Defined)
}
