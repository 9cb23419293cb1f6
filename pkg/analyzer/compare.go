package analyzer

import (
	"sort"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/pkg/model"
)

// CityRank is one row of a city ranking for a metric. Rank starts at 1
// for the highest value.
type CityRank struct {
	City  string  `json:"city"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

// CompareCities ranks cities by a metric, highest first. With year zero
// each city is ranked by the mean of its observed values across all
// years; with a specific year only cities with that year observed take
// part. Ties break alphabetically. A positive topN truncates the
// ranking.
func (a *Analyzer) CompareCities(ds model.Dataset, metric model.Column, year, topN int) []CityRank {
	byCity := make(map[string][]float64)
	for _, rec := range ds.Records {
		if year != 0 && rec.Year != year {
			continue
		}
		v := rec.Value(metric)
		if v == nil {
			continue
		}
		byCity[rec.City] = append(byCity[rec.City], *v)
	}

	ranks := make([]CityRank, 0, len(byCity))
	for city, values := range byCity {
		mean, err := stats.Mean(values)
		if err != nil {
			continue
		}
		ranks = append(ranks, CityRank{City: city, Value: mean})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Value != ranks[j].Value {
			return ranks[i].Value > ranks[j].Value
		}
		return ranks[i].City < ranks[j].City
	})
	if topN > 0 && len(ranks) > topN {
		ranks = ranks[:topN]
	}
	for i := range ranks {
		ranks[i].Rank = i + 1
	}

	a.log.Debug("city comparison computed",
		zap.String("metric", string(metric)),
		zap.Int("year", year),
		zap.Int("cities", len(ranks)))
	return ranks
}
