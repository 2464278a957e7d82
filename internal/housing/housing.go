// Package housing defines the census-tract housing record and the
// feature engineering applied before modelling.
package housing

import "fmt"

// Record is one census block group from the cleaned housing dataset.
// MedianIncome is expressed in tens of thousands of US dollars, as in
// the source dataset. MedianHouseValue is the prediction target and is
// zero for records built from user input.
type Record struct {
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	HousingMedianAge float64 `json:"housing_median_age"`
	TotalRooms       float64 `json:"total_rooms"`
	TotalBedrooms    float64 `json:"total_bedrooms"`
	Population       float64 `json:"population"`
	Households       float64 `json:"households"`
	MedianIncome     float64 `json:"median_income"`
	OceanProximity   string  `json:"ocean_proximity"`
	MedianHouseValue float64 `json:"median_house_value,omitempty"`
}

// incomeBins are the median_income bucket edges (tens of thousands of
// USD). The upper bucket is open-ended.
var incomeBins = []float64{0, 1.5, 3, 4.5, 6}

// IncomeCategory buckets a median income into categories 1..5. Edges
// belong to the upper bucket, so an income of exactly 1.5 is category
// 2. Negative incomes fall into category 0 and are rejected upstream.
func IncomeCategory(income float64) int {
	cat := 0
	for _, edge := range incomeBins {
		if income >= edge {
			cat++
		} else {
			break
		}
	}
	return cat
}

// RoomsPerHousehold returns total rooms per household, 0 when the
// record has no households.
func (r Record) RoomsPerHousehold() float64 {
	if r.Households == 0 {
		return 0
	}
	return r.TotalRooms / r.Households
}

// BedroomsPerRooms returns the bedroom share of all rooms.
func (r Record) BedroomsPerRooms() float64 {
	if r.TotalRooms == 0 {
		return 0
	}
	return r.TotalBedrooms / r.TotalRooms
}

// PopulationPerHousehold returns mean household size.
func (r Record) PopulationPerHousehold() float64 {
	if r.Households == 0 {
		return 0
	}
	return r.Population / r.Households
}

// NumericFeatures returns the record's numeric model inputs in the
// order of NumericFeatureNames. The categorical ocean_proximity column
// is encoded separately by the model's one-hot encoder.
func (r Record) NumericFeatures() []float64 {
	return []float64{
		r.Longitude,
		r.Latitude,
		r.HousingMedianAge,
		r.TotalRooms,
		r.TotalBedrooms,
		r.Population,
		r.Households,
		r.MedianIncome,
		float64(IncomeCategory(r.MedianIncome)),
		r.RoomsPerHousehold(),
		r.BedroomsPerRooms(),
		r.PopulationPerHousehold(),
	}
}

// Validate rejects records that would poison model training.
func (r Record) Validate() error {
	if r.MedianIncome < 0 {
		return fmt.Errorf("median_income must be non-negative, got %v", r.MedianIncome)
	}
	if r.Households < 0 || r.TotalRooms < 0 || r.TotalBedrooms < 0 || r.Population < 0 {
		return fmt.Errorf("count columns must be non-negative")
	}
	if !ValidOceanProximity(r.OceanProximity) {
		return fmt.Errorf("unknown ocean_proximity %q", r.OceanProximity)
	}
	return nil
}
