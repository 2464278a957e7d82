package model

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes numeric feature columns to zero mean and
// unit variance. Columns with zero variance pass through unscaled.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// FitScaler computes per-column means and standard deviations over the
// rows of cols, where cols[i] is one row of numeric features.
func FitScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty data")
	}
	width := len(rows[0])
	col := make([]float64, len(rows))
	s := &StandardScaler{
		Means: make([]float64, width),
		Stds:  make([]float64, width),
	}
	for j := 0; j < width; j++ {
		for i, row := range rows {
			if len(row) != width {
				return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), width)
			}
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if len(rows) == 1 || std == 0 {
			std = 1
		}
		s.Means[j] = mean
		s.Stds[j] = std
	}
	return s, nil
}

// Transform standardizes one row in place-safe fashion, returning a
// new slice.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Means) {
		return nil, fmt.Errorf("row has %d columns, scaler fitted on %d", len(row), len(s.Means))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out, nil
}
