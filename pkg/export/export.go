// Package export writes cleaned datasets and analysis results to CSV
// and JSON.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/ecopulse/ecopulse/pkg/errors"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// WriteCSV writes the dataset in its own column order with a header
// row. Unset values become empty cells, mirroring how ingestion reads
// them back.
func WriteCSV(w io.Writer, ds model.Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Columns); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv header")
	}

	row := make([]string, len(ds.Columns))
	for i := range ds.Records {
		rec := &ds.Records[i]
		for j, name := range ds.Columns {
			switch name {
			case model.FieldCity:
				row[j] = rec.City
			case model.FieldYear:
				row[j] = strconv.Itoa(rec.Year)
			default:
				if v := rec.Value(model.Column(name)); v != nil {
					row[j] = strconv.FormatFloat(*v, 'f', -1, 64)
				} else {
					row[j] = ""
				}
			}
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush csv output")
	}
	return nil
}

// WriteCSVFile writes the dataset to a CSV file, creating or
// truncating it.
func WriteCSVFile(path string, ds model.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}

	if err := WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output file")
	}
	return nil
}

// WriteJSON writes any result value as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to encode json output")
	}
	return nil
}

// WriteJSONFile writes any result value to a JSON file.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}

	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output file")
	}
	return nil
}
