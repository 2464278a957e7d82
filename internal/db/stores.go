package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/terra-data/price.report/internal/geo"
	"github.com/terra-data/price.report/internal/housing"
)

// InsertRecords bulk-inserts housing records inside one transaction.
func (db *DB) InsertRecords(records []housing.Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO houses (
		longitude, latitude, housing_median_age, total_rooms, total_bedrooms,
		population, households, median_income, ocean_proximity, median_house_value
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(
			rec.Longitude, rec.Latitude, rec.HousingMedianAge, rec.TotalRooms,
			rec.TotalBedrooms, rec.Population, rec.Households, rec.MedianIncome,
			rec.OceanProximity, rec.MedianHouseValue,
		); err != nil {
			return fmt.Errorf("failed to insert record %d: %v", i, err)
		}
	}
	return tx.Commit()
}

// ListRecords returns up to limit housing records, newest first.
func (db *DB) ListRecords(limit int) ([]housing.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT longitude, latitude, housing_median_age, total_rooms,
		total_bedrooms, population, households, median_income, ocean_proximity,
		COALESCE(median_house_value, 0)
		FROM houses ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []housing.Record
	for rows.Next() {
		var rec housing.Record
		if err := rows.Scan(
			&rec.Longitude, &rec.Latitude, &rec.HousingMedianAge, &rec.TotalRooms,
			&rec.TotalBedrooms, &rec.Population, &rec.Households, &rec.MedianIncome,
			&rec.OceanProximity, &rec.MedianHouseValue,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountRecords returns the number of stored housing records.
func (db *DB) CountRecords() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM houses").Scan(&n)
	return n, err
}

// UpsertCounty stores a county's medians and exterior rings.
func (db *DB) UpsertCounty(c geo.County) error {
	rings, err := json.Marshal(geo.ExteriorCoordinates(c.Polygons))
	if err != nil {
		return fmt.Errorf("failed to marshal rings for %s: %v", c.Name, err)
	}
	_, err = db.Exec(`INSERT INTO counties (
		name, longitude, latitude, total_rooms, total_bedrooms, population,
		households, rooms_per_household, bedrooms_per_rooms,
		population_per_household, ocean_proximity, median_house_value, rings
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		longitude=excluded.longitude, latitude=excluded.latitude,
		total_rooms=excluded.total_rooms, total_bedrooms=excluded.total_bedrooms,
		population=excluded.population, households=excluded.households,
		rooms_per_household=excluded.rooms_per_household,
		bedrooms_per_rooms=excluded.bedrooms_per_rooms,
		population_per_household=excluded.population_per_household,
		ocean_proximity=excluded.ocean_proximity,
		median_house_value=excluded.median_house_value,
		rings=excluded.rings`,
		c.Name, c.Medians.Longitude, c.Medians.Latitude, c.Medians.TotalRooms,
		c.Medians.TotalBedrooms, c.Medians.Population, c.Medians.Households,
		c.Medians.RoomsPerHousehold, c.Medians.BedroomsPerRooms,
		c.Medians.PopulationPerHousehold, c.Medians.OceanProximity,
		c.Medians.MedianHouseValue, string(rings),
	)
	return err
}

// CountyRow is a stored county: medians plus serialized exterior
// rings ready for the map layer.
type CountyRow struct {
	Name    string             `json:"name"`
	Medians geo.CountyMedians  `json:"medians"`
	Rings   [][]geo.Coordinate `json:"rings"`
}

func scanCounty(scan func(...any) error) (CountyRow, error) {
	var row CountyRow
	var rings string
	err := scan(
		&row.Name, &row.Medians.Longitude, &row.Medians.Latitude,
		&row.Medians.TotalRooms, &row.Medians.TotalBedrooms,
		&row.Medians.Population, &row.Medians.Households,
		&row.Medians.RoomsPerHousehold, &row.Medians.BedroomsPerRooms,
		&row.Medians.PopulationPerHousehold, &row.Medians.OceanProximity,
		&row.Medians.MedianHouseValue, &rings,
	)
	if err != nil {
		return row, err
	}
	if err := json.Unmarshal([]byte(rings), &row.Rings); err != nil {
		return row, fmt.Errorf("failed to decode rings for %s: %v", row.Name, err)
	}
	return row, nil
}

const countyColumns = `name, longitude, latitude, total_rooms, total_bedrooms,
	population, households, rooms_per_household, bedrooms_per_rooms,
	population_per_household, ocean_proximity, COALESCE(median_house_value, 0), rings`

// ListCounties returns all counties ordered by name.
func (db *DB) ListCounties() ([]CountyRow, error) {
	rows, err := db.Query("SELECT " + countyColumns + " FROM counties ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counties []CountyRow
	for rows.Next() {
		row, err := scanCounty(rows.Scan)
		if err != nil {
			return nil, err
		}
		counties = append(counties, row)
	}
	return counties, rows.Err()
}

// County returns one county by name. sql.ErrNoRows signals a miss.
func (db *DB) County(name string) (CountyRow, error) {
	return scanCounty(db.QueryRow(
		"SELECT "+countyColumns+" FROM counties WHERE name = ?", name,
	).Scan)
}

// Prediction is one logged prediction request and its outcome.
type Prediction struct {
	ID             string         `json:"id"`
	County         string         `json:"county,omitempty"`
	Inputs         housing.Record `json:"inputs"`
	PredictedValue float64        `json:"predicted_value"`
	CreatedAt      time.Time      `json:"created_at"`
}

// RecordPrediction logs one prediction.
func (db *DB) RecordPrediction(p Prediction) error {
	inputs, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction inputs: %v", err)
	}
	var county any
	if p.County != "" {
		county = p.County
	}
	_, err = db.Exec(
		`INSERT INTO predictions (prediction_id, county, inputs, predicted_value) VALUES (?, ?, ?, ?)`,
		p.ID, county, string(inputs), p.PredictedValue,
	)
	return err
}

// RecentPredictions returns up to limit predictions, newest first.
func (db *DB) RecentPredictions(limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`SELECT prediction_id, county, inputs, predicted_value, created_at
		FROM predictions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []Prediction
	for rows.Next() {
		var p Prediction
		var county sql.NullString
		var inputs string
		if err := rows.Scan(&p.ID, &county, &inputs, &p.PredictedValue, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.County = county.String
		if err := json.Unmarshal([]byte(inputs), &p.Inputs); err != nil {
			return nil, fmt.Errorf("failed to decode inputs for prediction %s: %v", p.ID, err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}
