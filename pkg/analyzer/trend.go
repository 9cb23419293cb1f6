package analyzer

import (
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/ecopulse/ecopulse/pkg/model"
)

// Trend directions. A trend is stable when its average annual change
// stays inside the stability band.
const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

// directionBandPct is the half-width, in percent per year, of the band
// treated as a stable trend.
const directionBandPct = 2.0

// TrendPoint is one year of one metric for one city. Delta and
// PctChange compare against the previous observed year and are nil on
// the first point; PctChange is also nil when the previous value is
// zero.
type TrendPoint struct {
	Year      int      `json:"year"`
	Value     float64  `json:"value"`
	Delta     *float64 `json:"delta,omitempty"`
	PctChange *float64 `json:"pct_change,omitempty"`
}

// CityTrend is the evolution of one metric for one city across years.
// The aggregate fields are nil when the series is too short, fewer than
// two points, or the percent base is zero.
type CityTrend struct {
	City   string       `json:"city"`
	Metric model.Column `json:"metric"`
	Points []TrendPoint `json:"points"`

	TotalPctChange     *float64 `json:"total_pct_change,omitempty"`
	AvgAnnualPctChange *float64 `json:"avg_annual_pct_change,omitempty"`
	Slope              *float64 `json:"slope,omitempty"`
	Direction          string   `json:"direction,omitempty"`
}

// Trends computes per-city trends for one metric. Cities are ordered
// alphabetically and points by ascending year. Records with the metric
// unset are left out of the series; a city with fewer than two usable
// years yields a trend with its points but no aggregates.
func (a *Analyzer) Trends(ds model.Dataset, metric model.Column) []CityTrend {
	byCity := make(map[string][]TrendPoint)
	for _, rec := range ds.Records {
		v := rec.Value(metric)
		if v == nil {
			continue
		}
		byCity[rec.City] = append(byCity[rec.City], TrendPoint{Year: rec.Year, Value: *v})
	}

	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	trends := make([]CityTrend, 0, len(cities))
	for _, city := range cities {
		trends = append(trends, buildTrend(city, metric, byCity[city]))
	}

	a.log.Debug("trends computed",
		zap.String("metric", string(metric)),
		zap.Int("cities", len(trends)))
	return trends
}

func buildTrend(city string, metric model.Column, points []TrendPoint) CityTrend {
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		delta := points[i].Value - prev
		points[i].Delta = &delta
		if prev != 0 {
			pct := delta / prev * 100
			points[i].PctChange = &pct
		}
	}

	t := CityTrend{City: city, Metric: metric, Points: points}
	if len(points) < 2 {
		return t
	}

	first := points[0].Value
	last := points[len(points)-1].Value
	if first != 0 {
		total := (last - first) / first * 100
		t.TotalPctChange = &total

		avg := total / float64(len(points)-1)
		t.AvgAnnualPctChange = &avg

		switch {
		case avg > directionBandPct:
			t.Direction = DirectionUp
		case avg < -directionBandPct:
			t.Direction = DirectionDown
		default:
			t.Direction = DirectionStable
		}
	}

	years := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		years[i] = float64(p.Year)
		values[i] = p.Value
	}
	_, slope := stat.LinearRegression(years, values, nil, false)
	t.Slope = &slope

	return t
}
