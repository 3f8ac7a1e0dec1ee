// Package analysis computes the derived views shown on the dashboard:
// the pairwise correlation matrix and the fixed-income return comparison.
package analysis

import (
	"math"

	"github.com/sawpanic/selicinsights/internal/series"
)

// Band classifies a correlation coefficient for colouring.
type Band string

const (
	BandStrongPositive Band = "strong-positive"
	BandPositive       Band = "positive"
	BandNeutral        Band = "neutral"
	BandNegative       Band = "negative"
	BandStrongNegative Band = "strong-negative"
)

// BandFor maps a coefficient in [-1, 1] onto its colour band.
func BandFor(v float64) Band {
	switch {
	case v > 0.7:
		return BandStrongPositive
	case v > 0.3:
		return BandPositive
	case v > -0.3:
		return BandNeutral
	case v > -0.7:
		return BandNegative
	default:
		return BandStrongNegative
	}
}

// Matrix holds the Pearson coefficient for every ordered pair of fields.
type Matrix struct {
	Fields []series.Field
	values map[series.Field]map[series.Field]float64
}

// Get returns the coefficient for (a, b); unknown pairs read as zero.
func (m Matrix) Get(a, b series.Field) float64 {
	return m.values[a][b]
}

// Cell is one rendered entry of the matrix.
type Cell struct {
	Row     series.Field `json:"row"`
	Col     series.Field `json:"col"`
	Value   float64      `json:"value"`
	Display string       `json:"display"`
	Band    Band         `json:"band"`
}

// Rows returns the matrix as display rows in field order.
func (m Matrix) Rows() [][]Cell {
	rows := make([][]Cell, 0, len(m.Fields))
	for _, a := range m.Fields {
		row := make([]Cell, 0, len(m.Fields))
		for _, b := range m.Fields {
			v := m.Get(a, b)
			row = append(row, Cell{
				Row:     a,
				Col:     b,
				Value:   v,
				Display: series.FormatFixed2(v),
				Band:    BandFor(v),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// Correlate computes the Pearson correlation of every ordered pair of the
// four indicators over ds. Means and variances are computed per cell. A zero
// or undefined denominator yields 0, so an empty input is all zeros.
func Correlate(ds series.Dataset) Matrix {
	m := Matrix{
		Fields: append([]series.Field(nil), series.Fields...),
		values: make(map[series.Field]map[series.Field]float64, len(series.Fields)),
	}
	for _, a := range m.Fields {
		m.values[a] = make(map[series.Field]float64, len(m.Fields))
		for _, b := range m.Fields {
			m.values[a][b] = pearson(ds, a, b)
		}
	}
	return m
}

func pearson(ds series.Dataset, a, b series.Field) float64 {
	n := float64(len(ds))
	var sumA, sumB float64
	for _, o := range ds {
		sumA += o.Value(a)
		sumB += o.Value(b)
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for _, o := range ds {
		da := o.Value(a) - meanA
		db := o.Value(b) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	r := cov / (math.Sqrt(varA) * math.Sqrt(varB))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
