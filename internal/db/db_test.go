package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/terra-data/price.report/internal/geo"
	"github.com/terra-data/price.report/internal/housing"
)

const migrationsDir = "../../migrations"

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	return db
}

func sampleRecord() housing.Record {
	return housing.Record{
		Longitude:        -122.23,
		Latitude:         37.88,
		HousingMedianAge: 41,
		TotalRooms:       880,
		TotalBedrooms:    129,
		Population:       322,
		Households:       126,
		MedianIncome:     8.3252,
		OceanProximity:   "NEAR BAY",
		MedianHouseValue: 452600,
	}
}

func TestMigrations(t *testing.T) {
	db := testDB(t)

	version, dirty, err := db.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if dirty {
		t.Error("database dirty after MigrateUp")
	}
	latest, err := GetLatestMigrationVersion(migrationsDir)
	if err != nil {
		t.Fatalf("GetLatestMigrationVersion failed: %v", err)
	}
	if version != latest {
		t.Errorf("version = %d, want %d", version, latest)
	}
	if err := db.CheckMigrations(migrationsDir); err != nil {
		t.Errorf("CheckMigrations failed on up-to-date db: %v", err)
	}

	if err := db.MigrateDown(migrationsDir); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	if err := db.CheckMigrations(migrationsDir); err == nil {
		t.Error("CheckMigrations passed on out-of-date db")
	}
}

func TestCheckMigrationsFreshDB(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()
	if err := db.CheckMigrations(migrationsDir); err == nil {
		t.Error("expected error for unmigrated database")
	}
}

func TestRecordStore(t *testing.T) {
	db := testDB(t)

	rec := sampleRecord()
	other := rec
	other.OceanProximity = "INLAND"
	other.MedianHouseValue = 92300

	if err := db.InsertRecords([]housing.Record{rec, other}); err != nil {
		t.Fatalf("InsertRecords failed: %v", err)
	}

	n, err := db.CountRecords()
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountRecords = %d, want 2", n)
	}

	records, err := db.ListRecords(10)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// newest first
	if records[0].OceanProximity != "INLAND" {
		t.Errorf("first record ocean_proximity = %q, want INLAND", records[0].OceanProximity)
	}
	if records[1].MedianHouseValue != 452600 {
		t.Errorf("median_house_value = %v", records[1].MedianHouseValue)
	}
}

func TestCountyStore(t *testing.T) {
	db := testDB(t)

	county := geo.County{
		Name: "Alameda",
		Medians: geo.CountyMedians{
			Longitude:      -121.9,
			Latitude:       37.65,
			Households:     442,
			OceanProximity: "NEAR BAY",
		},
		Polygons: []geo.Polygon{
			{Exterior: geo.Ring{{-122, 37.4}, {-121.5, 37.4}, {-121.5, 37.9}, {-122, 37.9}, {-122, 37.4}}},
		},
	}
	if err := db.UpsertCounty(county); err != nil {
		t.Fatalf("UpsertCounty failed: %v", err)
	}

	// upsert replaces
	county.Medians.Households = 450
	if err := db.UpsertCounty(county); err != nil {
		t.Fatalf("UpsertCounty (update) failed: %v", err)
	}

	got, err := db.County("Alameda")
	if err != nil {
		t.Fatalf("County failed: %v", err)
	}
	if got.Medians.Households != 450 {
		t.Errorf("households = %v, want 450", got.Medians.Households)
	}
	if len(got.Rings) != 1 || len(got.Rings[0]) != 5 {
		t.Errorf("rings round-trip mismatch: %+v", got.Rings)
	}

	counties, err := db.ListCounties()
	if err != nil {
		t.Fatalf("ListCounties failed: %v", err)
	}
	if len(counties) != 1 {
		t.Errorf("got %d counties, want 1", len(counties))
	}

	if _, err := db.County("Nowhere"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for missing county, got %v", err)
	}
}

func TestPredictionStore(t *testing.T) {
	db := testDB(t)

	p := Prediction{
		ID:             "f3b3e1f0-0000-4000-8000-000000000001",
		County:         "",
		Inputs:         sampleRecord(),
		PredictedValue: 412000.5,
	}
	if err := db.RecordPrediction(p); err != nil {
		t.Fatalf("RecordPrediction failed: %v", err)
	}

	got, err := db.RecentPredictions(5)
	if err != nil {
		t.Fatalf("RecentPredictions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d predictions, want 1", len(got))
	}
	if got[0].ID != p.ID {
		t.Errorf("id = %q", got[0].ID)
	}
	if got[0].County != "" {
		t.Errorf("county = %q, want empty", got[0].County)
	}
	if got[0].Inputs.MedianIncome != 8.3252 {
		t.Errorf("inputs round-trip mismatch: %+v", got[0].Inputs)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}
