// Command import loads the housing CSV and the county GeoJSON into
// the sqlite database. Input paths are resolved through the asset
// manifest so the data loaded always matches the declared versions.
package main

import (
	"flag"
	"log"

	_ "modernc.org/sqlite"

	"github.com/terra-data/price.report/internal/db"
	"github.com/terra-data/price.report/internal/geo"
	"github.com/terra-data/price.report/internal/housing"
	"github.com/terra-data/price.report/internal/manifest"
)

var (
	dbPath        = flag.String("db", "price_report.db", "Path to the sqlite database")
	assetsDir     = flag.String("assets", "assets", "Directory holding data assets and the manifest")
	housingAsset  = flag.String("housing-asset", "housing-clean", "Manifest name of the housing CSV")
	countiesAsset = flag.String("counties-asset", "county-shapes", "Manifest name of the county GeoJSON")
	migrationsDir = flag.String("migrations", "migrations", "Directory holding schema migrations")
)

func main() {
	flag.Parse()

	m, err := manifest.ParseFile(*assetsDir + "/requirements.txt")
	if err != nil {
		log.Fatalf("failed to parse asset manifest: %v", err)
	}

	csvPath, err := manifest.Resolve(m, *assetsDir, *housingAsset)
	if err != nil {
		log.Fatalf("failed to resolve housing asset: %v", err)
	}
	geoPath, err := manifest.Resolve(m, *assetsDir, *countiesAsset)
	if err != nil {
		log.Fatalf("failed to resolve counties asset: %v", err)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	if err := database.CheckMigrations(*migrationsDir); err != nil {
		log.Fatalf("%v", err)
	}

	records, err := housing.LoadCSV(csvPath)
	if err != nil {
		log.Fatalf("failed to load housing CSV: %v", err)
	}
	if err := database.InsertRecords(records); err != nil {
		log.Fatalf("failed to insert records: %v", err)
	}
	log.Printf("imported %d housing records from %s", len(records), csvPath)

	counties, err := geo.LoadCounties(geoPath)
	if err != nil {
		log.Fatalf("failed to load counties: %v", err)
	}
	for _, c := range counties {
		for i := range c.Polygons {
			c.Polygons[i].Orient()
		}
		if err := database.UpsertCounty(c); err != nil {
			log.Fatalf("failed to store county %s: %v", c.Name, err)
		}
	}
	log.Printf("imported %d counties from %s", len(counties), geoPath)
}
