// Package ingest parses raw environmental observations from CSV and JSON
// into the typed record model. Parsing is tolerant at the cell level:
// unreadable numeric cells become unset values and unreadable years
// become year zero, both of which the cleaner drops or repairs. Only
// structural problems, an unreadable file or a malformed row shape, fail
// the whole read.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ecopulse/ecopulse/pkg/errors"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// ReadCSV parses records from CSV with a header row. All header names
// are kept as the dataset's columns so schema validation can tell a
// missing column from an empty one.
func ReadCSV(r io.Reader) (model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return model.Dataset{}, errors.New(errors.ErrorTypeEmptyDataset, "csv input has no header row")
	}
	if err != nil {
		return model.Dataset{}, errors.Wrap(err, errors.ErrorTypeData, "failed to read csv header")
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	ds := model.Dataset{Columns: columns}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Dataset{}, errors.Wrap(err, errors.ErrorTypeData, "malformed csv row")
		}
		ds.Records = append(ds.Records, parseRow(columns, row))
	}

	return ds, nil
}

// ReadCSVFile reads a CSV dataset from disk.
func ReadCSVFile(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input file").
			WithDetail("path", path)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return model.Dataset{}, e.WithDetail("path", path)
		}
		return model.Dataset{}, err
	}
	return ds, nil
}

func parseRow(columns []string, row []string) model.Record {
	var rec model.Record
	for i, name := range columns {
		if i >= len(row) {
			break
		}
		cell := strings.TrimSpace(row[i])

		switch name {
		case model.FieldCity:
			rec.City = cell
		case model.FieldYear:
			// A year that does not parse stays zero and fails the
			// cleaner's range check.
			rec.Year, _ = strconv.Atoi(cell)
		default:
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			rec.SetValue(model.Column(name), &v)
		}
	}
	return rec
}

// jsonRecord mirrors Record with the wire column names. Absent and null
// fields both come out as unset values.
type jsonRecord struct {
	City string `json:"city"`
	Year int    `json:"year"`

	Energy      *float64 `json:"energy_consumption_mwh"`
	AirQuality  *float64 `json:"air_quality_index"`
	Waste       *float64 `json:"solid_waste_tons"`
	Water       *float64 `json:"water_usage_m3"`
	CO2         *float64 `json:"co2_emissions_tons"`
	Temperature *float64 `json:"avg_temperature_c"`
	Population  *float64 `json:"population_thousands"`
}

// ReadJSON parses a JSON array of observation objects. The dataset gets
// the full raw schema: unlike CSV there is no header to distinguish a
// missing column from an always-null one.
func ReadJSON(r io.Reader) (model.Dataset, error) {
	var rows []jsonRecord
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return model.Dataset{}, errors.Wrap(err, errors.ErrorTypeData, "failed to decode json records")
	}

	records := make([]model.Record, len(rows))
	for i, row := range rows {
		rec := model.Record{City: row.City, Year: row.Year}
		rec.SetValue(model.ColEnergy, row.Energy)
		rec.SetValue(model.ColAirQuality, row.AirQuality)
		rec.SetValue(model.ColWaste, row.Waste)
		rec.SetValue(model.ColWater, row.Water)
		rec.SetValue(model.ColCO2, row.CO2)
		rec.SetValue(model.ColTemperature, row.Temperature)
		rec.SetValue(model.ColPopulation, row.Population)
		records[i] = rec
	}

	return model.NewDataset(records), nil
}

// ReadJSONFile reads a JSON dataset from disk.
func ReadJSONFile(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input file").
			WithDetail("path", path)
	}
	defer f.Close()

	ds, err := ReadJSON(f)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return model.Dataset{}, e.WithDetail("path", path)
		}
		return model.Dataset{}, err
	}
	return ds, nil
}
