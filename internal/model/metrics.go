package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics are the evaluation scores reported per fold and per model.
type Metrics struct {
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// Evaluate computes R2, MAE and RMSE of predictions against truth.
func Evaluate(truth, pred []float64) (Metrics, error) {
	if len(truth) != len(pred) {
		return Metrics{}, fmt.Errorf("length mismatch: %d truth vs %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return Metrics{}, fmt.Errorf("cannot evaluate empty slices")
	}

	mean := stat.Mean(truth, nil)
	var ssRes, ssTot, absSum float64
	for i := range truth {
		d := truth[i] - pred[i]
		ssRes += d * d
		absSum += math.Abs(d)
		t := truth[i] - mean
		ssTot += t * t
	}

	m := Metrics{
		MAE:  absSum / float64(len(truth)),
		RMSE: math.Sqrt(ssRes / float64(len(truth))),
	}
	if ssTot == 0 {
		// constant target: perfect iff residuals are zero
		if ssRes == 0 {
			m.R2 = 1
		}
		return m, nil
	}
	m.R2 = 1 - ssRes/ssTot
	return m, nil
}

// meanMetrics averages a slice of per-fold metrics.
func meanMetrics(folds []Metrics) Metrics {
	if len(folds) == 0 {
		return Metrics{}
	}
	var out Metrics
	for _, m := range folds {
		out.R2 += m.R2
		out.MAE += m.MAE
		out.RMSE += m.RMSE
	}
	n := float64(len(folds))
	out.R2 /= n
	out.MAE /= n
	out.RMSE /= n
	return out
}
