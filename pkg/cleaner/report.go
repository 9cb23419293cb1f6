package cleaner

import (
	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/pkg/model"
)

// Report enumerates everything the cleaner changed, so that no drop,
// imputation or clamp is ever silent.
type Report struct {
	// TotalInput is the number of records before any cleaning
	TotalInput int `json:"total_input"`
	// InvalidDropped counts records dropped by structural validation
	InvalidDropped int `json:"invalid_dropped"`
	// DuplicatesDropped counts later occurrences of a (city, year) pair
	DuplicatesDropped int `json:"duplicates_dropped"`
	// Imputed counts median-imputed nulls per column
	Imputed map[model.Column]int `json:"imputed"`
	// ImputationSkipped lists columns that were entirely null
	ImputationSkipped []model.Column `json:"imputation_skipped,omitempty"`
	// Clamped counts outlier values clamped per column
	Clamped map[model.Column]int `json:"clamped"`
	// DerivedSkipped counts records excluded from derived metrics for
	// lack of a positive population
	DerivedSkipped int `json:"derived_skipped"`
}

// NewReport initializes a report for a run over n input records.
func NewReport(n int) Report {
	return Report{
		TotalInput: n,
		Imputed:    make(map[model.Column]int),
		Clamped:    make(map[model.Column]int),
	}
}

// TotalDropped returns the number of input records absent from the output.
func (r Report) TotalDropped() int {
	return r.InvalidDropped + r.DuplicatesDropped
}

// TotalImputed returns the number of values filled across all columns.
func (r Report) TotalImputed() int {
	total := 0
	for _, n := range r.Imputed {
		total += n
	}
	return total
}

// TotalClamped returns the number of values clamped across all columns.
func (r Report) TotalClamped() int {
	total := 0
	for _, n := range r.Clamped {
		total += n
	}
	return total
}

// Fields renders the report as structured log fields.
func (r Report) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Int("total_input", r.TotalInput),
		zap.Int("invalid_dropped", r.InvalidDropped),
		zap.Int("duplicates_dropped", r.DuplicatesDropped),
		zap.Int("values_imputed", r.TotalImputed()),
		zap.Int("values_clamped", r.TotalClamped()),
		zap.Int("derived_skipped", r.DerivedSkipped),
	}
	if len(r.ImputationSkipped) > 0 {
		skipped := make([]string, len(r.ImputationSkipped))
		for i, col := range r.ImputationSkipped {
			skipped[i] = string(col)
		}
		fields = append(fields, zap.Strings("imputation_skipped", skipped))
	}
	return fields
}
