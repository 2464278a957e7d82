package model

import (
	"fmt"
	"math/rand"

	"github.com/terra-data/price.report/internal/housing"
)

// KFold splits n row indices into k shuffled folds. The shuffle is
// seeded so repeated runs produce identical splits.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}

	idx := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, v := range idx {
		folds[i%k] = append(folds[i%k], v)
	}
	return folds, nil
}

// CVResult holds cross-validation scores for one model config.
type CVResult struct {
	Config Config    `json:"config"`
	Folds  []Metrics `json:"folds"`
	Mean   Metrics   `json:"mean"`
}

// CrossValidate scores cfg with shuffled K-fold cross-validation: for
// each fold the model is fitted on the remaining folds and evaluated
// on the held-out rows. Scores are computed on the original target
// scale even when the config fits on log targets.
func CrossValidate(records []housing.Record, cfg Config, k int, seed int64) (*CVResult, error) {
	folds, err := KFold(len(records), k, seed)
	if err != nil {
		return nil, err
	}

	result := &CVResult{Config: cfg}
	for fi, holdout := range folds {
		inFold := make(map[int]bool, len(holdout))
		for _, i := range holdout {
			inFold[i] = true
		}

		train := make([]housing.Record, 0, len(records)-len(holdout))
		test := make([]housing.Record, 0, len(holdout))
		for i, rec := range records {
			if inFold[i] {
				test = append(test, rec)
			} else {
				train = append(train, rec)
			}
		}

		p, err := Fit(train, cfg)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %v", fi, err)
		}
		pred, err := p.PredictAll(test)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %v", fi, err)
		}
		truth := make([]float64, len(test))
		for i, rec := range test {
			truth[i] = rec.MedianHouseValue
		}
		m, err := Evaluate(truth, pred)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %v", fi, err)
		}
		result.Folds = append(result.Folds, m)
	}
	result.Mean = meanMetrics(result.Folds)
	return result, nil
}
