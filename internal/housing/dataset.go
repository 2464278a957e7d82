package housing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// required header columns for the cleaned dataset CSV
var requiredColumns = []string{
	"longitude", "latitude", "housing_median_age", "total_rooms",
	"total_bedrooms", "population", "households", "median_income",
	"ocean_proximity",
}

// LoadCSV reads housing records from the cleaned dataset CSV at path.
// Columns are located by header name so column order does not matter.
// The median_house_value column is optional; rows missing it load with
// a zero target.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %v", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses housing records from r. See LoadCSV.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %v", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", name)
		}
	}
	_, hasTarget := col["median_house_value"]

	parse := func(row []string, name string, line int) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col[name]]), 64)
		if err != nil {
			return 0, fmt.Errorf("row %d: failed to parse %s: %v", line, name, err)
		}
		return v, nil
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row: %v", err)
		}
		line++

		var rec Record
		if rec.Longitude, err = parse(row, "longitude", line); err != nil {
			return nil, err
		}
		if rec.Latitude, err = parse(row, "latitude", line); err != nil {
			return nil, err
		}
		if rec.HousingMedianAge, err = parse(row, "housing_median_age", line); err != nil {
			return nil, err
		}
		if rec.TotalRooms, err = parse(row, "total_rooms", line); err != nil {
			return nil, err
		}
		if rec.TotalBedrooms, err = parse(row, "total_bedrooms", line); err != nil {
			return nil, err
		}
		if rec.Population, err = parse(row, "population", line); err != nil {
			return nil, err
		}
		if rec.Households, err = parse(row, "households", line); err != nil {
			return nil, err
		}
		if rec.MedianIncome, err = parse(row, "median_income", line); err != nil {
			return nil, err
		}
		rec.OceanProximity = strings.TrimSpace(row[col["ocean_proximity"]])
		if hasTarget {
			if rec.MedianHouseValue, err = parse(row, "median_house_value", line); err != nil {
				return nil, err
			}
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %v", line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset contains no rows")
	}
	return records, nil
}
