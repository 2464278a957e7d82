package dashboard

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terra-data/price.report/internal/db"
	"github.com/terra-data/price.report/internal/geo"
	"github.com/terra-data/price.report/internal/housing"
	"github.com/terra-data/price.report/internal/model"
)

const migrationsDir = "../../migrations"

func testWebServer(t *testing.T) *WebServer {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "dashboard_test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	records := syntheticRecords(100)
	if err := database.InsertRecords(records); err != nil {
		t.Fatalf("InsertRecords failed: %v", err)
	}
	if err := database.UpsertCounty(geo.County{
		Name: "Alameda",
		Medians: geo.CountyMedians{
			Longitude:        -122.05,
			Latitude:         37.65,
			MedianHouseValue: 380000,
		},
		Polygons: []geo.Polygon{
			{Exterior: geo.Ring{{-122.3, 37.4}, {-121.5, 37.4}, {-121.5, 37.9}, {-122.3, 37.9}, {-122.3, 37.4}}},
		},
	}); err != nil {
		t.Fatalf("UpsertCounty failed: %v", err)
	}

	pipeline, err := model.Fit(records, model.Config{Lambda: 1})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	return NewWebServer(WebServerConfig{
		Address:  "127.0.0.1:0",
		DB:       database,
		Artifact: &model.Artifact{Pipeline: pipeline},
	})
}

func syntheticRecords(n int) []housing.Record {
	rng := rand.New(rand.NewSource(3))
	records := make([]housing.Record, n)
	for i := range records {
		income := 1 + rng.Float64()*9
		rooms := 500 + rng.Float64()*3000
		rec := housing.Record{
			Longitude:        -122 + rng.Float64(),
			Latitude:         37 + rng.Float64(),
			HousingMedianAge: 1 + rng.Float64()*49,
			TotalRooms:       rooms,
			TotalBedrooms:    rooms / 5,
			Population:       800 + rng.Float64()*2000,
			Households:       300 + rng.Float64()*500,
			MedianIncome:     income,
			OceanProximity:   housing.OceanProximityCategories[i%len(housing.OceanProximityCategories)],
		}
		rec.MedianHouseValue = 50000 + 40000*income + 12*rooms
		records[i] = rec
	}
	return records
}

func get(t *testing.T, ws *WebServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	ws.setupRoutes().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	ws := testWebServer(t)
	w := get(t, ws, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestDashboardPage(t *testing.T) {
	ws := testWebServer(t)
	w := get(t, ws, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, path := range []string{"/charts/county-prices", "/charts/map", "/charts/residuals"} {
		if !strings.Contains(body, path) {
			t.Errorf("dashboard missing iframe for %s", path)
		}
	}
}

func TestChartHandlers(t *testing.T) {
	ws := testWebServer(t)

	for _, path := range []string{"/charts/county-prices", "/charts/map", "/charts/residuals"} {
		w := get(t, ws, path)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, body: %s", path, w.Code, w.Body.String())
			continue
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
			t.Errorf("%s content type = %q", path, ct)
		}
		if !strings.Contains(w.Body.String(), "echarts") {
			t.Errorf("%s does not look like an echarts page", path)
		}
	}
}

func TestResidualsChartNoModel(t *testing.T) {
	ws := testWebServer(t)
	ws.artifact = nil
	w := get(t, ws, "/charts/residuals")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestMetrics(t *testing.T) {
	ws := testWebServer(t)
	w := get(t, ws, "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics output missing standard collectors")
	}
}
