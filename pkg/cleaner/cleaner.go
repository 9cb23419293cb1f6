// Package cleaner validates, deduplicates, imputes and clamps raw
// city-year observations, then computes the derived per-capita metrics.
// Clean is a pure transformation: the input dataset is never mutated, so
// a caller can always compare before and after.
package cleaner

import (
	"strings"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/pkg/config"
	"github.com/ecopulse/ecopulse/pkg/errors"
	"github.com/ecopulse/ecopulse/pkg/model"
)

// Cleaner applies the fixed cleaning sequence: structural validation,
// deduplication, median imputation, IQR clamping, derived metrics.
type Cleaner struct {
	cfg config.CleaningConfig
	log *zap.Logger
}

// New creates a Cleaner. The configuration must already be validated.
func New(cfg config.CleaningConfig, log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{cfg: cfg, log: log}
}

// Clean runs the full cleaning sequence and returns a new dataset plus a
// report of everything that was dropped, imputed or clamped. The step
// order is fixed; changing it changes results, so it is never
// configurable.
func (c *Cleaner) Clean(raw model.Dataset) (model.Dataset, Report, error) {
	report := NewReport(raw.Len())

	if err := c.checkSchema(raw); err != nil {
		return model.Dataset{}, report, err
	}

	ds := raw.Clone()
	ds.Records = c.validate(ds.Records, &report)
	if len(ds.Records) == 0 {
		return model.Dataset{}, report, errors.New(errors.ErrorTypeEmptyDataset,
			"no valid records survived structural validation")
	}

	ds.Records = c.deduplicate(ds.Records, &report)
	c.impute(ds.Records, &report)
	c.clampOutliers(ds.Records, &report)
	c.deriveMetrics(ds.Records, &report)

	ds.Columns = cleanedColumns(raw.Columns)

	c.log.Info("cleaning complete", report.Fields()...)
	return ds, report, nil
}

// checkSchema verifies that every required column was present in the
// input. This runs once, up front; later stages trust the schema.
func (c *Cleaner) checkSchema(ds model.Dataset) error {
	required := []string{model.FieldCity, model.FieldYear}
	for _, col := range model.RawColumns() {
		required = append(required, string(col))
	}

	var missing []string
	for _, name := range required {
		if !ds.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrorTypeSchema,
			"required columns missing from input schema: %s", strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}
	return nil
}

// validate drops records with an empty city or an implausible year.
func (c *Cleaner) validate(records []model.Record, report *Report) []model.Record {
	kept := records[:0]
	for _, r := range records {
		if strings.TrimSpace(r.City) == "" || r.Year < c.cfg.YearMin || r.Year > c.cfg.YearMax {
			report.InvalidDropped++
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// deduplicate keeps the first occurrence of each (city, year) pair in
// encounter order.
func (c *Cleaner) deduplicate(records []model.Record, report *Report) []model.Record {
	type key struct {
		city string
		year int
	}

	seen := make(map[key]bool, len(records))
	kept := records[:0]
	for _, r := range records {
		k := key{city: r.City, year: r.Year}
		if seen[k] {
			report.DuplicatesDropped++
			continue
		}
		seen[k] = true
		kept = append(kept, r)
	}
	return kept
}

// impute fills nil raw measurements with the column median computed over
// the whole dataset. A column with no values at all is skipped and
// recorded in the report; derived metrics that need it stay unset.
func (c *Cleaner) impute(records []model.Record, report *Report) {
	for _, col := range model.RawColumns() {
		var values []float64
		for i := range records {
			if v := records[i].Value(col); v != nil {
				values = append(values, *v)
			}
		}

		if len(values) == 0 {
			report.ImputationSkipped = append(report.ImputationSkipped, col)
			continue
		}
		if len(values) == len(records) {
			continue
		}

		median, err := stats.Median(values)
		if err != nil {
			report.ImputationSkipped = append(report.ImputationSkipped, col)
			continue
		}

		for i := range records {
			if records[i].Value(col) == nil {
				records[i].SetValue(col, &median)
				report.Imputed[col]++
			}
		}
	}
}

// clampOutliers clamps each raw column to [Q1 - k*IQR, Q3 + k*IQR], with
// the lower bound floored at zero since every raw measurement is a
// non-negative quantity. Bounds come from the pre-clamp distribution.
func (c *Cleaner) clampOutliers(records []model.Record, report *Report) {
	for _, col := range model.RawColumns() {
		var values []float64
		for i := range records {
			if v := records[i].Value(col); v != nil {
				values = append(values, *v)
			}
		}
		if len(values) == 0 {
			continue
		}

		lower, upper, err := iqrBounds(values, c.cfg.IQRMultiplier)
		if err != nil {
			continue
		}
		if lower < 0 {
			lower = 0
		}

		for i := range records {
			v := records[i].Value(col)
			if v == nil {
				continue
			}
			switch {
			case *v < lower:
				records[i].SetValue(col, &lower)
				report.Clamped[col]++
			case *v > upper:
				records[i].SetValue(col, &upper)
				report.Clamped[col]++
			}
		}
	}
}

// deriveMetrics computes the six derived metrics for records with a
// positive population. Records without one keep nil derived fields and
// are counted in the report.
func (c *Cleaner) deriveMetrics(records []model.Record, report *Report) {
	for i := range records {
		r := &records[i]
		if r.Population == nil || *r.Population <= 0 {
			report.DerivedSkipped++
			continue
		}
		pop := *r.Population

		r.EnergyPerCapita = ratio(r.Energy, pop)
		r.WastePerCapita = ratio(r.Waste, pop)
		r.WaterPerCapita = ratio(r.Water, pop)
		r.CO2PerCapita = ratio(r.CO2, pop)

		if r.CO2 != nil && r.Energy != nil && *r.Energy > 0 {
			v := *r.CO2 / *r.Energy
			r.CarbonIntensity = &v
		}
		// Water efficiency is population served per cubic meter, so
		// higher means better.
		if r.Water != nil && *r.Water > 0 {
			v := pop / *r.Water
			r.WaterEfficiency = &v
		}
	}
}

// ratio divides a possibly-nil numerator by a positive denominator.
func ratio(num *float64, denom float64) *float64 {
	if num == nil {
		return nil
	}
	v := *num / denom
	return &v
}

// iqrBounds computes the clamping bounds for one column.
func iqrBounds(values []float64, multiplier float64) (lower, upper float64, err error) {
	q1, err := stats.Percentile(values, 25)
	if err != nil {
		return 0, 0, err
	}
	q3, err := stats.Percentile(values, 75)
	if err != nil {
		return 0, 0, err
	}

	iqr := q3 - q1
	return q1 - multiplier*iqr, q3 + multiplier*iqr, nil
}

// cleanedColumns extends the input schema with the derived columns.
func cleanedColumns(input []string) []string {
	columns := make([]string, len(input))
	copy(columns, input)
	for _, col := range model.DerivedColumns() {
		found := false
		for _, existing := range columns {
			if existing == string(col) {
				found = true
				break
			}
		}
		if !found {
			columns = append(columns, string(col))
		}
	}
	return columns
}
