package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/ecopulse/ecopulse/pkg/model"
)

// Coefficient is one cell of the correlation matrix. Defined is false
// when Pearson correlation does not exist for the pair, fewer than two
// complete observations or a zero-variance side.
type Coefficient struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// CorrelationMatrix is a symmetric matrix of pairwise Pearson
// coefficients over the numeric columns.
type CorrelationMatrix struct {
	Columns []model.Column                                `json:"columns"`
	Cells   map[model.Column]map[model.Column]Coefficient `json:"cells"`
}

// At returns the coefficient for a column pair. Unknown columns yield
// an undefined coefficient.
func (m CorrelationMatrix) At(a, b model.Column) Coefficient {
	row, ok := m.Cells[a]
	if !ok {
		return Coefficient{}
	}
	return row[b]
}

// Correlations computes the pairwise Pearson correlation matrix over
// all numeric columns. Each pair uses only the records where both
// columns are set, so columns with disjoint coverage come out
// undefined rather than skewed. The matrix is symmetric and its
// diagonal is exactly 1 wherever the column has at least two complete
// observations with spread.
func (a *Analyzer) Correlations(ds model.Dataset) CorrelationMatrix {
	cols := model.NumericColumns()
	m := CorrelationMatrix{
		Columns: cols,
		Cells:   make(map[model.Column]map[model.Column]Coefficient, len(cols)),
	}
	for _, c := range cols {
		m.Cells[c] = make(map[model.Column]Coefficient, len(cols))
	}

	defined := 0
	for i, ca := range cols {
		for j := i; j < len(cols); j++ {
			cb := cols[j]
			coef := pairCorrelation(ds, ca, cb)
			m.Cells[ca][cb] = coef
			m.Cells[cb][ca] = coef
			if coef.Defined {
				defined++
			}
		}
	}

	a.log.Debug("correlation matrix computed",
		zap.Int("columns", len(cols)),
		zap.Int("defined_pairs", defined))
	return m
}

func pairCorrelation(ds model.Dataset, ca, cb model.Column) Coefficient {
	var xs, ys []float64
	for _, rec := range ds.Records {
		x := rec.Value(ca)
		y := rec.Value(cb)
		if x == nil || y == nil {
			continue
		}
		xs = append(xs, *x)
		ys = append(ys, *y)
	}
	if len(xs) < 2 {
		return Coefficient{}
	}

	if ca == cb {
		// The diagonal is exactly 1 when the column has spread,
		// sidestepping rounding in the general formula.
		if sigma, err := stats.StandardDeviationPopulation(xs); err != nil || sigma == 0 {
			return Coefficient{}
		}
		return Coefficient{Value: 1, Defined: true}
	}

	r, err := stats.Pearson(xs, ys)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return Coefficient{}
	}

	// Floating point can push the result marginally outside [-1, 1].
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return Coefficient{Value: r, Defined: true}
}
