package model

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveCoefficientPlot writes a bar chart of the sorted model
// coefficients with a zero reference line.
func SaveCoefficientPlot(coefs []Coefficient, path string) error {
	if len(coefs) == 0 {
		return fmt.Errorf("no coefficients to plot")
	}

	values := make(plotter.Values, len(coefs))
	labels := make([]string, len(coefs))
	for i, c := range coefs {
		values[i] = c.Value
		labels[i] = c.Feature
	}

	p := plot.New()
	p.Title.Text = "Model coefficients"
	p.Y.Label.Text = "Coefficient"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("failed to build coefficient bars: %v", err)
	}
	bars.Color = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 0xff}
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = -1.2
	p.X.Tick.Label.XAlign = -0.9

	zero := plotter.XYs{{X: -0.5, Y: 0}, {X: float64(len(coefs)) - 0.5, Y: 0}}
	zeroLine, err := plotter.NewLine(zero)
	if err != nil {
		return fmt.Errorf("failed to build zero line: %v", err)
	}
	zeroLine.Color = color.Gray{Y: 128}
	p.Add(zeroLine)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save coefficient plot: %v", err)
	}
	return nil
}

// SaveResidualHistogram writes a histogram of prediction residuals
// (truth minus prediction).
func SaveResidualHistogram(truth, pred []float64, path string) error {
	if len(truth) != len(pred) || len(truth) == 0 {
		return fmt.Errorf("need matching non-empty truth and predictions")
	}
	residuals := make(plotter.Values, len(truth))
	for i := range truth {
		residuals[i] = truth[i] - pred[i]
	}

	p := plot.New()
	p.Title.Text = "Residuals"
	p.X.Label.Text = "Truth - prediction"
	p.Y.Label.Text = "Count"

	bins := 30
	if len(residuals) < bins {
		bins = len(residuals)
	}
	hist, err := plotter.NewHist(residuals, bins)
	if err != nil {
		return fmt.Errorf("failed to build residual histogram: %v", err)
	}
	p.Add(hist)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save residual histogram: %v", err)
	}
	return nil
}

// SaveActualVsPredicted writes a scatter of predictions against truth
// with the identity line for reference.
func SaveActualVsPredicted(truth, pred []float64, path string) error {
	if len(truth) != len(pred) || len(truth) == 0 {
		return fmt.Errorf("need matching non-empty truth and predictions")
	}

	pts := make(plotter.XYs, len(truth))
	lo, hi := truth[0], truth[0]
	for i := range truth {
		pts[i] = plotter.XY{X: pred[i], Y: truth[i]}
		for _, v := range []float64{truth[i], pred[i]} {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	p := plot.New()
	p.Title.Text = "Actual vs predicted"
	p.X.Label.Text = "Predicted value"
	p.Y.Label.Text = "Actual value"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %v", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 0x1f, G: 0x9e, B: 0x89, A: 0x66}
	p.Add(scatter)

	identity := plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}}
	line, err := plotter.NewLine(identity)
	if err != nil {
		return fmt.Errorf("failed to build identity line: %v", err)
	}
	line.Color = color.Gray{Y: 96}
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save actual-vs-predicted plot: %v", err)
	}
	return nil
}
