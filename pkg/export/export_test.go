package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse/pkg/errors"
	"github.com/ecopulse/ecopulse/pkg/ingest"
	"github.com/ecopulse/ecopulse/pkg/model"
)

func fptr(v float64) *float64 { return &v }

func sampleDataset() model.Dataset {
	return model.NewDataset([]model.Record{
		{
			City:        "Porto Alegre",
			Year:        2022,
			Energy:      fptr(18000.5),
			AirQuality:  fptr(65),
			Waste:       fptr(5200),
			Water:       fptr(98000),
			CO2:         fptr(21000),
			Temperature: fptr(19.4),
			Population:  fptr(1480),
		},
		{
			City: "Curitiba",
			Year: 2023,
			// everything else missing
		},
	})
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDataset()))

	ds, err := ingest.ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	first := ds.Records[0]
	assert.Equal(t, "Porto Alegre", first.City)
	assert.Equal(t, 2022, first.Year)
	require.NotNil(t, first.Energy)
	assert.InDelta(t, 18000.5, *first.Energy, 1e-9)

	second := ds.Records[1]
	assert.Equal(t, "Curitiba", second.City)
	assert.Nil(t, second.Energy, "unset values survive the round trip as empty cells")
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDataset()))

	lines := strings.Split(buf.String(), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "city", strings.Split(lines[0], ",")[0])
	assert.Contains(t, lines[0], "energy_consumption_mwh")
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, WriteCSVFile(path, sampleDataset()))

	ds, err := ingest.ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestWriteCSVFileBadPath(t *testing.T) {
	err := WriteCSVFile("/nonexistent/dir/out.csv", sampleDataset())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	payload := map[string]any{"records": 2, "source": "test"}

	require.NoError(t, WriteJSONFile(path, payload))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"records": 2`)
}
