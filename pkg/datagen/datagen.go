// Package datagen produces deterministic synthetic city-year datasets
// for demos and pipeline exercises. City baselines approximate real
// Brazilian capitals with yearly growth trends, and the generator can
// inject missing values, duplicate rows and outliers so the cleaning
// stage has something to repair.
package datagen

import (
	"math"
	"math/rand"
	"sort"

	"github.com/ecopulse/ecopulse/pkg/model"
)

// profile holds a city's reference-year measurements. Values drift from
// these by the per-metric growth rates.
type profile struct {
	Population  float64 // thousands
	Energy      float64 // MWh
	AirQuality  float64 // index
	Waste       float64 // tons
	Water       float64 // m3
	CO2         float64 // tons
	Temperature float64 // celsius
}

var profiles = map[string]profile{
	"São Paulo":      {12300, 125000, 65, 8500000, 450000000, 12500000, 22.5},
	"Rio de Janeiro": {6800, 95000, 58, 6200000, 320000000, 9500000, 24.2},
	"Belo Horizonte": {2600, 45000, 55, 2800000, 150000000, 4500000, 22.8},
	"Curitiba":       {1950, 38000, 48, 2200000, 120000000, 3800000, 18.5},
	"Porto Alegre":   {1500, 42000, 52, 2500000, 140000000, 4200000, 20.1},
	"Brasília":       {3100, 35000, 45, 1800000, 100000000, 3500000, 22.3},
	"Salvador":       {2900, 32000, 60, 2000000, 110000000, 3200000, 26.5},
	"Recife":         {1650, 28000, 58, 1800000, 95000000, 2800000, 26.2},
	"Fortaleza":      {2700, 30000, 56, 1900000, 100000000, 3000000, 27.1},
	"Manaus":         {2200, 25000, 45, 1500000, 80000000, 2500000, 27.8},
	"Goiânia":        {1550, 28000, 50, 1700000, 90000000, 2800000, 23.5},
	"Campinas":       {1200, 32000, 52, 1900000, 100000000, 3200000, 21.8},
	"Florianópolis":  {500, 15000, 40, 900000, 50000000, 1500000, 20.2},
	"Natal":          {890, 18000, 55, 1100000, 60000000, 1800000, 26.0},
	"Palmas":         {310, 9000, 38, 550000, 30000000, 900000, 28.0},
}

// defaultProfile backs cities without a baseline of their own.
var defaultProfile = profile{500, 15000, 50, 900000, 50000000, 1500000, 24.0}

// Options controls generation. Zero rates disable the corresponding
// defect injection; zero years default to 2018 through 2024.
type Options struct {
	Seed      int64
	StartYear int
	EndYear   int
	// Cities to generate; defaults to every city with a baseline
	Cities []string
	// NullRate is the per-measurement probability of a missing value
	NullRate float64
	// DuplicateRate is the per-row probability of an extra conflicting
	// row for the same city and year
	DuplicateRate float64
	// OutlierRate is the per-row probability of one measurement being
	// inflated far outside its plausible range
	OutlierRate float64
}

// Cities returns the city names with a baseline, sorted.
func Cities() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds a dataset. The same options always produce the same
// dataset.
func Generate(opts Options) model.Dataset {
	if opts.StartYear == 0 {
		opts.StartYear = 2018
	}
	if opts.EndYear == 0 {
		opts.EndYear = 2024
	}
	cities := opts.Cities
	if len(cities) == 0 {
		cities = Cities()
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var records []model.Record
	for _, city := range cities {
		base, ok := profiles[city]
		if !ok {
			base = defaultProfile
		}

		// Air quality drifts in a fixed direction per city.
		airDrift := []float64{-0.3, 0, 0.3}[rng.Intn(3)]

		for year := opts.StartYear; year <= opts.EndYear; year++ {
			rec := yearRecord(rng, city, year, opts.StartYear, base, airDrift)

			injectNulls(rng, &rec, opts.NullRate)
			if rng.Float64() < opts.OutlierRate {
				injectOutlier(rng, &rec)
			}
			records = append(records, rec)

			if rng.Float64() < opts.DuplicateRate {
				dup := yearRecord(rng, city, year, opts.StartYear, base, airDrift)
				records = append(records, dup)
			}
		}
	}

	return model.NewDataset(records)
}

// Yearly growth rates relative to the series start.
const (
	popGrowth    = 1.01
	energyGrowth = 1.025
	wasteGrowth  = 1.02
	waterGrowth  = 1.015
	co2Growth    = 1.025
	tempStep     = 0.15
)

func yearRecord(rng *rand.Rand, city string, year, startYear int, base profile, airDrift float64) model.Record {
	elapsed := float64(year - startYear)
	jitter := func(v float64) float64 {
		return v * (1 + rng.Float64()*0.04 - 0.02)
	}

	pop := math.Max(200, base.Population*0.95*math.Pow(popGrowth, elapsed))
	energy := math.Max(5000, jitter(base.Energy*0.92*math.Pow(energyGrowth, elapsed)))
	air := clamp(base.AirQuality*1.05+airDrift*elapsed+rng.Float64()*2-1, 35, 75)
	waste := math.Max(200000, jitter(base.Waste*0.90*math.Pow(wasteGrowth, elapsed)))
	water := math.Max(10000000, jitter(base.Water*0.90*math.Pow(waterGrowth, elapsed)))
	co2 := math.Max(500000, jitter(base.CO2*0.92*math.Pow(co2Growth, elapsed)))
	temp := clamp(base.Temperature-0.3+tempStep*elapsed+rng.Float64()*0.2-0.1, 15, 30)

	rec := model.Record{City: city, Year: year}
	rec.SetValue(model.ColPopulation, &pop)
	rec.SetValue(model.ColEnergy, &energy)
	rec.SetValue(model.ColAirQuality, &air)
	rec.SetValue(model.ColWaste, &waste)
	rec.SetValue(model.ColWater, &water)
	rec.SetValue(model.ColCO2, &co2)
	rec.SetValue(model.ColTemperature, &temp)
	return rec
}

func injectNulls(rng *rand.Rand, rec *model.Record, rate float64) {
	if rate <= 0 {
		return
	}
	for _, col := range model.RawColumns() {
		if rng.Float64() < rate {
			rec.SetValue(col, nil)
		}
	}
}

func injectOutlier(rng *rand.Rand, rec *model.Record) {
	cols := model.RawColumns()
	col := cols[rng.Intn(len(cols))]
	v := rec.Value(col)
	if v == nil {
		return
	}
	inflated := *v * 10
	rec.SetValue(col, &inflated)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
