package model

import (
	"fmt"

	"github.com/terra-data/price.report/internal/housing"
	"github.com/terra-data/price.report/internal/monitoring"
)

// Grid enumerates the hyperparameter combinations to search.
type Grid struct {
	Lambdas    []float64 `json:"lambdas"`
	LogTargets []bool    `json:"log_targets"`
}

// DefaultGrid covers OLS through strong ridge penalties, with and
// without the log target transform.
func DefaultGrid() Grid {
	return Grid{
		Lambdas:    []float64{0, 0.1, 1, 10, 100},
		LogTargets: []bool{false, true},
	}
}

// Configs expands the grid into the full list of candidate configs.
func (g Grid) Configs() []Config {
	var configs []Config
	for _, lt := range g.LogTargets {
		for _, l := range g.Lambdas {
			configs = append(configs, Config{Lambda: l, LogTarget: lt})
		}
	}
	return configs
}

// SearchResult is the outcome of a grid search: every candidate's CV
// scores plus the winning pipeline refitted on all rows.
type SearchResult struct {
	Candidates []CVResult `json:"candidates"`
	Best       CVResult   `json:"best"`
	Pipeline   *Pipeline  `json:"-"`
}

// GridSearch cross-validates every config in the grid and refits the
// candidate with the lowest mean RMSE on the full dataset.
func GridSearch(records []housing.Record, grid Grid, k int, seed int64) (*SearchResult, error) {
	configs := grid.Configs()
	if len(configs) == 0 {
		return nil, fmt.Errorf("empty parameter grid")
	}

	result := &SearchResult{}
	bestIdx := -1
	for i, cfg := range configs {
		cv, err := CrossValidate(records, cfg, k, seed)
		if err != nil {
			return nil, fmt.Errorf("config %+v: %v", cfg, err)
		}
		monitoring.Logf("grid search %d/%d lambda=%g log_target=%v rmse=%.2f r2=%.4f",
			i+1, len(configs), cfg.Lambda, cfg.LogTarget, cv.Mean.RMSE, cv.Mean.R2)
		result.Candidates = append(result.Candidates, *cv)
		if bestIdx < 0 || cv.Mean.RMSE < result.Candidates[bestIdx].Mean.RMSE {
			bestIdx = i
		}
	}
	result.Best = result.Candidates[bestIdx]

	p, err := Fit(records, result.Best.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to refit best config: %v", err)
	}
	result.Pipeline = p
	return result, nil
}
