// Package model implements the house value regression pipeline:
// standard-scaled numeric features plus a one-hot encoded
// ocean_proximity column feeding a ridge regressor, with an optional
// log transform on the target. Cross-validation and grid search follow
// the same K-fold scheme throughout so scores are comparable.
package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/terra-data/price.report/internal/housing"
)

// RandomState seeds every shuffle in this package so training runs are
// reproducible.
const RandomState = 42

// Config selects the pipeline hyperparameters.
type Config struct {
	// Lambda is the ridge penalty; zero gives ordinary least squares.
	Lambda float64 `json:"lambda"`
	// LogTarget fits on log1p(value) and predicts through expm1.
	LogTarget bool `json:"log_target"`
}

// Pipeline is a fitted regression model. The zero value is unusable;
// obtain one from Fit, GridSearch or Load.
type Pipeline struct {
	Config    Config          `json:"config"`
	Scaler    *StandardScaler `json:"scaler"`
	Weights   []float64       `json:"weights"`
	Intercept float64         `json:"intercept"`
	Features  []string        `json:"features"`
	TrainedAt time.Time       `json:"trained_at"`
	Rows      int             `json:"rows"`
}

// encodeOceanProximity returns the one-hot columns for a category in
// the fixed order of housing.OceanProximityCategories.
func encodeOceanProximity(cat string) []float64 {
	out := make([]float64, len(housing.OceanProximityCategories))
	for i, c := range housing.OceanProximityCategories {
		if c == cat {
			out[i] = 1
			break
		}
	}
	return out
}

// featureRow builds the full (scaled numeric + one-hot) feature row
// for one record.
func (p *Pipeline) featureRow(rec housing.Record) ([]float64, error) {
	scaled, err := p.Scaler.Transform(rec.NumericFeatures())
	if err != nil {
		return nil, err
	}
	return append(scaled, encodeOceanProximity(rec.OceanProximity)...), nil
}

// Fit trains a pipeline on records using the given config. Records
// must carry a target (MedianHouseValue).
func Fit(records []housing.Record, cfg Config) (*Pipeline, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("need at least 2 records to fit, got %d", len(records))
	}
	if cfg.Lambda < 0 {
		return nil, fmt.Errorf("lambda must be non-negative, got %v", cfg.Lambda)
	}

	numeric := make([][]float64, len(records))
	for i, rec := range records {
		numeric[i] = rec.NumericFeatures()
	}
	scaler, err := FitScaler(numeric)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Config:    cfg,
		Scaler:    scaler,
		Features:  housing.FeatureNames(),
		TrainedAt: time.Now().UTC(),
		Rows:      len(records),
	}

	width := len(p.Features)
	x := mat.NewDense(len(records), width, nil)
	y := make([]float64, len(records))
	for i, rec := range records {
		row, err := p.featureRow(rec)
		if err != nil {
			return nil, err
		}
		x.SetRow(i, row)
		t := rec.MedianHouseValue
		if cfg.LogTarget {
			if t < 0 {
				return nil, fmt.Errorf("record %d: negative target %v with log transform", i, t)
			}
			t = math.Log1p(t)
		}
		y[i] = t
	}

	weights, intercept, err := solveRidge(x, y, cfg.Lambda)
	if err != nil {
		return nil, err
	}
	p.Weights = weights
	p.Intercept = intercept
	return p, nil
}

// solveRidge fits linear weights with an unpenalized intercept:
// columns and target are centered, then (Xc'Xc + lambda*I) w = Xc'y.
// With lambda zero the one-hot block makes the centered system rank
// deficient, so that case goes through an SVD least-squares solve
// which picks the minimum-norm solution.
func solveRidge(x *mat.Dense, y []float64, lambda float64) (weights []float64, intercept float64, err error) {
	rows, cols := x.Dims()

	colMeans := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += x.At(i, j)
		}
		colMeans[j] = sum / float64(rows)
	}
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(rows)

	xc := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			xc.Set(i, j, x.At(i, j)-colMeans[j])
		}
	}
	yc := mat.NewVecDense(rows, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var w mat.VecDense
	if lambda > 0 {
		var a mat.Dense
		a.Mul(xc.T(), xc)
		for j := 0; j < cols; j++ {
			a.Set(j, j, a.At(j, j)+lambda)
		}
		var b mat.VecDense
		b.MulVec(xc.T(), yc)
		if err := w.SolveVec(&a, &b); err != nil {
			return nil, 0, fmt.Errorf("failed to solve normal equations: %v", err)
		}
	} else {
		var svd mat.SVD
		if ok := svd.Factorize(xc, mat.SVDThin); !ok {
			return nil, 0, fmt.Errorf("SVD factorization failed")
		}
		svd.SolveVecTo(&w, yc, svd.Rank(1e-10))
	}

	weights = make([]float64, cols)
	intercept = yMean
	for j := 0; j < cols; j++ {
		weights[j] = w.AtVec(j)
		intercept -= weights[j] * colMeans[j]
	}
	return weights, intercept, nil
}

// Predict returns the estimated median house value for one record.
func (p *Pipeline) Predict(rec housing.Record) (float64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	row, err := p.featureRow(rec)
	if err != nil {
		return 0, err
	}
	if len(row) != len(p.Weights) {
		return 0, fmt.Errorf("feature width %d does not match model width %d", len(row), len(p.Weights))
	}
	v := p.Intercept
	for j, w := range p.Weights {
		v += w * row[j]
	}
	if p.Config.LogTarget {
		v = math.Expm1(v)
	}
	return v, nil
}

// PredictAll predicts every record, returning predictions aligned with
// the input slice.
func (p *Pipeline) PredictAll(records []housing.Record) ([]float64, error) {
	out := make([]float64, len(records))
	for i, rec := range records {
		v, err := p.Predict(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %v", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Coefficient pairs a feature name with its fitted weight.
type Coefficient struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Coefficients returns the model weights sorted ascending by value,
// the layout the coefficient chart expects.
func (p *Pipeline) Coefficients() []Coefficient {
	coefs := make([]Coefficient, len(p.Weights))
	for i, w := range p.Weights {
		coefs[i] = Coefficient{Feature: p.Features[i], Value: w}
	}
	sort.Slice(coefs, func(i, j int) bool { return coefs[i].Value < coefs[j].Value })
	return coefs
}
