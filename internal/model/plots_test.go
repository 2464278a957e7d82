package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSavePlots(t *testing.T) {
	records := syntheticRecords(60, 11)
	p, err := Fit(records, Config{Lambda: 1})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	pred, err := p.PredictAll(records)
	if err != nil {
		t.Fatalf("PredictAll failed: %v", err)
	}
	truth := make([]float64, len(records))
	for i, rec := range records {
		truth[i] = rec.MedianHouseValue
	}

	dir := t.TempDir()
	files := map[string]func(string) error{
		"coefficients.png": func(path string) error {
			return SaveCoefficientPlot(p.Coefficients(), path)
		},
		"residuals.png": func(path string) error {
			return SaveResidualHistogram(truth, pred, path)
		},
		"actual_vs_predicted.png": func(path string) error {
			return SaveActualVsPredicted(truth, pred, path)
		},
	}
	for name, save := range files {
		path := filepath.Join(dir, name)
		if err := save(path); err != nil {
			t.Fatalf("failed to save %s: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestSavePlotsRejectEmptyInput(t *testing.T) {
	dir := t.TempDir()
	if err := SaveCoefficientPlot(nil, filepath.Join(dir, "c.png")); err == nil {
		t.Error("expected error for empty coefficients")
	}
	if err := SaveResidualHistogram(nil, nil, filepath.Join(dir, "r.png")); err == nil {
		t.Error("expected error for empty residual input")
	}
	if err := SaveActualVsPredicted([]float64{1}, []float64{}, filepath.Join(dir, "a.png")); err == nil {
		t.Error("expected error for mismatched input")
	}
}
