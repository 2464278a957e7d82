// Command train fits the house value model: it cross-validates the
// hyperparameter grid, refits the best candidate on all rows, writes
// the model artifact, and renders diagnostic plots.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/terra-data/price.report/internal/housing"
	"github.com/terra-data/price.report/internal/manifest"
	"github.com/terra-data/price.report/internal/model"
)

var (
	assetsDir    = flag.String("assets", "assets", "Directory holding data assets and the manifest")
	housingAsset = flag.String("housing-asset", "housing-clean", "Manifest name of the housing CSV")
	csvPath      = flag.String("csv", "", "Train directly from this CSV instead of a manifest asset")
	outPath      = flag.String("out", "model.json", "Path to write the model artifact")
	plotsDir     = flag.String("plots", "plots", "Directory to write diagnostic plots (empty to skip)")
	gridPath     = flag.String("grid", "", "JSON file overriding the default parameter grid")
	folds        = flag.Int("folds", 5, "Number of cross-validation folds")
)

// gridFile overrides parts of the default search grid. Pointer fields
// so absent keys keep their defaults.
type gridFile struct {
	Lambdas    *[]float64 `json:"lambdas"`
	LogTargets *[]bool    `json:"log_targets"`
	Folds      *int       `json:"folds"`
}

func loadGrid() (model.Grid, int) {
	grid := model.DefaultGrid()
	k := *folds
	if *gridPath == "" {
		return grid, k
	}
	data, err := os.ReadFile(*gridPath)
	if err != nil {
		log.Fatalf("failed to read grid file: %v", err)
	}
	var gf gridFile
	if err := json.Unmarshal(data, &gf); err != nil {
		log.Fatalf("failed to parse grid file: %v", err)
	}
	if gf.Lambdas != nil {
		grid.Lambdas = *gf.Lambdas
	}
	if gf.LogTargets != nil {
		grid.LogTargets = *gf.LogTargets
	}
	if gf.Folds != nil {
		k = *gf.Folds
	}
	return grid, k
}

func resolveCSV() string {
	if *csvPath != "" {
		return *csvPath
	}
	m, err := manifest.ParseFile(filepath.Join(*assetsDir, "requirements.txt"))
	if err != nil {
		log.Fatalf("failed to parse asset manifest: %v", err)
	}
	path, err := manifest.Resolve(m, *assetsDir, *housingAsset)
	if err != nil {
		log.Fatalf("failed to resolve housing asset: %v", err)
	}
	return path
}

func main() {
	flag.Parse()

	path := resolveCSV()
	records, err := housing.LoadCSV(path)
	if err != nil {
		log.Fatalf("failed to load housing CSV: %v", err)
	}
	log.Printf("loaded %d records from %s", len(records), path)

	grid, k := loadGrid()
	result, err := model.GridSearch(records, grid, k, model.RandomState)
	if err != nil {
		log.Fatalf("grid search failed: %v", err)
	}
	best := result.Best
	log.Printf("best config: lambda=%g log_target=%v (rmse=%.2f mae=%.2f r2=%.4f)",
		best.Config.Lambda, best.Config.LogTarget, best.Mean.RMSE, best.Mean.MAE, best.Mean.R2)

	artifact := &model.Artifact{Pipeline: result.Pipeline, CV: &best}
	if err := artifact.Save(*outPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	log.Printf("wrote model artifact to %s", *outPath)

	if *plotsDir == "" {
		return
	}
	if err := os.MkdirAll(*plotsDir, 0o755); err != nil {
		log.Fatalf("failed to create plots dir: %v", err)
	}

	truth := make([]float64, len(records))
	for i, rec := range records {
		truth[i] = rec.MedianHouseValue
	}
	pred, err := result.Pipeline.PredictAll(records)
	if err != nil {
		log.Fatalf("failed to predict training set: %v", err)
	}

	plots := []struct {
		name string
		save func(string) error
	}{
		{"coefficients.png", func(p string) error {
			return model.SaveCoefficientPlot(result.Pipeline.Coefficients(), p)
		}},
		{"residuals.png", func(p string) error {
			return model.SaveResidualHistogram(truth, pred, p)
		}},
		{"actual_vs_predicted.png", func(p string) error {
			return model.SaveActualVsPredicted(truth, pred, p)
		}},
	}
	for _, pl := range plots {
		out := filepath.Join(*plotsDir, pl.name)
		if err := pl.save(out); err != nil {
			log.Fatalf("failed to save %s: %v", pl.name, err)
		}
		log.Printf("wrote %s", out)
	}
}
