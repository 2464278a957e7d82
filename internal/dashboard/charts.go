package dashboard

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/terra-data/price.report/internal/geo"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridis, the palette matplotlib uses for the source dashboards.
var viridisColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// handleCountyPricesChart renders a bar chart of median house value by
// county. Query params:
//   - limit (optional; default 20) caps the number of counties shown
func (ws *WebServer) handleCountyPricesChart(w http.ResponseWriter, r *http.Request) {
	counties, err := ws.db.ListCounties()
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list counties: %v", err))
		return
	}
	if len(counties) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no counties loaded")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if len(counties) > limit {
		counties = counties[:limit]
	}

	names := make([]string, 0, len(counties))
	values := make([]opts.BarData, 0, len(counties))
	for _, c := range counties {
		names = append(names, c.Name)
		values = append(values, opts.BarData{Value: c.Medians.MedianHouseValue})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "County Prices", Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Median House Value by County", Subtitle: fmt.Sprintf("counties=%d", len(counties))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45}}),
	)
	bar.SetXAxis(names).
		AddSeries("median value", values,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleCountyMapChart renders county centroids as a scatter in
// lon/lat space, colored by median house value.
func (ws *WebServer) handleCountyMapChart(w http.ResponseWriter, r *http.Request) {
	counties, err := ws.db.ListCounties()
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list counties: %v", err))
		return
	}
	if len(counties) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no counties loaded")
		return
	}

	data := make([]opts.ScatterData, 0, len(counties))
	maxValue := 0.0
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	for _, c := range counties {
		lon, lat := c.Medians.Longitude, c.Medians.Latitude
		if len(c.Rings) > 0 {
			p := geo.Polygon{Exterior: geo.Ring(c.Rings[0])}
			centroid := p.Centroid()
			lon, lat = centroid.Lon(), centroid.Lat()
		}
		minLon = math.Min(minLon, lon)
		maxLon = math.Max(maxLon, lon)
		minLat = math.Min(minLat, lat)
		maxLat = math.Max(maxLat, lat)
		if c.Medians.MedianHouseValue > maxValue {
			maxValue = c.Medians.MedianHouseValue
		}
		data = append(data, opts.ScatterData{
			Name:  c.Name,
			Value: []interface{}{lon, lat, c.Medians.MedianHouseValue},
		})
	}
	if maxValue == 0 {
		maxValue = 1
	}

	// Small padding so edge counties stay visible
	padLon := (maxLon - minLon) * 0.05
	padLat := (maxLat - minLat) * 0.05
	if padLon == 0 {
		padLon = 1.0
	}
	if padLat == 0 {
		padLat = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "County Map", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "County Centroids", Subtitle: fmt.Sprintf("counties=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minLon - padLon, Max: maxLon + padLon, Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minLat - padLat, Max: maxLat + padLat, Name: "Latitude", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxValue),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	scatter.AddSeries("counties", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render map chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleResidualsChart renders actual vs predicted value for stored
// records with a known target, colored by absolute residual.
// Query params:
//   - max_points (optional; default 2000) to reduce payload size
func (ws *WebServer) handleResidualsChart(w http.ResponseWriter, r *http.Request) {
	if ws.artifact == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	maxPoints := 2000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 10 && v <= 20000 {
			maxPoints = v
		}
	}

	records, err := ws.db.ListRecords(maxPoints)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list records: %v", err))
		return
	}
	if len(records) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no records loaded")
		return
	}

	data := make([]opts.ScatterData, 0, len(records))
	maxResidual := 0.0
	maxAxis := 0.0
	for _, rec := range records {
		if rec.MedianHouseValue == 0 {
			continue
		}
		predicted, err := ws.artifact.Pipeline.Predict(rec)
		if err != nil {
			continue
		}
		residual := math.Abs(rec.MedianHouseValue - predicted)
		if residual > maxResidual {
			maxResidual = residual
		}
		if rec.MedianHouseValue > maxAxis {
			maxAxis = rec.MedianHouseValue
		}
		if predicted > maxAxis {
			maxAxis = predicted
		}
		data = append(data, opts.ScatterData{Value: []interface{}{rec.MedianHouseValue, predicted, residual}})
	}
	if len(data) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no records with a known value")
		return
	}
	if maxResidual == 0 {
		maxResidual = 1
	}
	pad := maxAxis * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Model Residuals", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Actual vs Predicted", Subtitle: fmt.Sprintf("points=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: pad, Name: "Actual ($)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: pad, Name: "Predicted ($)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxResidual),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	scatter.AddSeries("records", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render residuals chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleDashboard renders a simple page with iframes to the debug charts.
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Price Report Dashboard</title>
  <style>
    body { background: #111; color: #eee; font-family: sans-serif; margin: 0; padding: 1rem; }
    h1 { font-size: 1.2rem; }
    .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
    iframe { width: 100%; height: 720px; border: 1px solid #333; background: #fff; }
    .wide { grid-column: span 2; }
  </style>
</head>
<body>
  <h1>Price Report Debug Dashboard</h1>
  <div class="grid">
    <iframe class="wide" src="/charts/county-prices"></iframe>
    <iframe src="/charts/map"></iframe>
    <iframe src="/charts/residuals"></iframe>
  </div>
</body>
</html>
`
