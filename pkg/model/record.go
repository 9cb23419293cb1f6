// Package model provides the typed data model for city-year environmental
// observations. The schema is fixed: rows are parsed once at ingestion into
// Records with named, typed fields, and all later stages access measurements
// through Column constants instead of arbitrary string keys.
package model

// Column identifies a numeric measurement column.
type Column string

// Raw measurement columns, as they appear in the input schema.
const (
	ColEnergy      Column = "energy_consumption_mwh"
	ColAirQuality  Column = "air_quality_index"
	ColWaste       Column = "solid_waste_tons"
	ColWater       Column = "water_usage_m3"
	ColCO2         Column = "co2_emissions_tons"
	ColTemperature Column = "avg_temperature_c"
	ColPopulation  Column = "population_thousands"
)

// Derived metric columns, computed by the cleaner.
const (
	ColEnergyPerCapita Column = "energy_per_capita"
	ColWastePerCapita  Column = "waste_per_capita"
	ColWaterPerCapita  Column = "water_per_capita"
	ColCO2PerCapita    Column = "co2_per_capita"
	ColCarbonIntensity Column = "carbon_intensity"
	ColWaterEfficiency Column = "water_efficiency"
)

// Identity columns present in every input row.
const (
	FieldCity = "city"
	FieldYear = "year"
)

// RawColumns returns the raw measurement columns in canonical order.
func RawColumns() []Column {
	return []Column{
		ColEnergy,
		ColAirQuality,
		ColWaste,
		ColWater,
		ColCO2,
		ColTemperature,
		ColPopulation,
	}
}

// DerivedColumns returns the derived metric columns in canonical order.
func DerivedColumns() []Column {
	return []Column{
		ColEnergyPerCapita,
		ColWastePerCapita,
		ColWaterPerCapita,
		ColCO2PerCapita,
		ColCarbonIntensity,
		ColWaterEfficiency,
	}
}

// NumericColumns returns all numeric columns, raw then derived.
func NumericColumns() []Column {
	return append(RawColumns(), DerivedColumns()...)
}

// Record is one city-year observation. Measurement fields are pointers
// because raw inputs may be missing; after cleaning every raw field is
// non-nil, while derived fields stay nil for records whose population
// makes per-capita math meaningless.
type Record struct {
	City string
	Year int

	Energy      *float64
	AirQuality  *float64
	Waste       *float64
	Water       *float64
	CO2         *float64
	Temperature *float64
	Population  *float64

	EnergyPerCapita *float64
	WastePerCapita  *float64
	WaterPerCapita  *float64
	CO2PerCapita    *float64
	CarbonIntensity *float64
	WaterEfficiency *float64
}

// Value returns a pointer to the record's value for the given column, or
// nil when the value is unset. The returned pointer is the record's own
// field pointer; callers must not write through it.
func (r *Record) Value(c Column) *float64 {
	switch c {
	case ColEnergy:
		return r.Energy
	case ColAirQuality:
		return r.AirQuality
	case ColWaste:
		return r.Waste
	case ColWater:
		return r.Water
	case ColCO2:
		return r.CO2
	case ColTemperature:
		return r.Temperature
	case ColPopulation:
		return r.Population
	case ColEnergyPerCapita:
		return r.EnergyPerCapita
	case ColWastePerCapita:
		return r.WastePerCapita
	case ColWaterPerCapita:
		return r.WaterPerCapita
	case ColCO2PerCapita:
		return r.CO2PerCapita
	case ColCarbonIntensity:
		return r.CarbonIntensity
	case ColWaterEfficiency:
		return r.WaterEfficiency
	default:
		return nil
	}
}

// SetValue sets the record's value for the given column. A nil value
// clears the field. Unknown columns are ignored.
func (r *Record) SetValue(c Column, v *float64) {
	var p **float64
	switch c {
	case ColEnergy:
		p = &r.Energy
	case ColAirQuality:
		p = &r.AirQuality
	case ColWaste:
		p = &r.Waste
	case ColWater:
		p = &r.Water
	case ColCO2:
		p = &r.CO2
	case ColTemperature:
		p = &r.Temperature
	case ColPopulation:
		p = &r.Population
	case ColEnergyPerCapita:
		p = &r.EnergyPerCapita
	case ColWastePerCapita:
		p = &r.WastePerCapita
	case ColWaterPerCapita:
		p = &r.WaterPerCapita
	case ColCO2PerCapita:
		p = &r.CO2PerCapita
	case ColCarbonIntensity:
		p = &r.CarbonIntensity
	case ColWaterEfficiency:
		p = &r.WaterEfficiency
	default:
		return
	}

	if v == nil {
		*p = nil
		return
	}
	value := *v
	*p = &value
}

// Clone returns a deep copy of the record. Pointer fields are copied by
// value so mutating the clone never touches the original.
func (r Record) Clone() Record {
	clone := Record{City: r.City, Year: r.Year}
	for _, c := range NumericColumns() {
		clone.SetValue(c, r.Value(c))
	}
	return clone
}
