package housing

// NumericFeatureNames lists the numeric model input columns in the
// exact order produced by Record.NumericFeatures.
var NumericFeatureNames = []string{
	"longitude",                // block group centroid longitude
	"latitude",                 // block group centroid latitude
	"housing_median_age",       // median building age in years
	"total_rooms",              // total rooms across the block group
	"total_bedrooms",           // total bedrooms across the block group
	"population",               // residents in the block group
	"households",               // occupied dwellings
	"median_income",            // tens of thousands of USD
	"median_income_cat",        // income bucket 1..5
	"rooms_per_household",      // derived: total_rooms / households
	"bedrooms_per_rooms",       // derived: total_bedrooms / total_rooms
	"population_per_household", // derived: population / households
}

// OceanProximityCategories is the allow list for the single
// categorical column. Order fixes the one-hot encoding layout.
var OceanProximityCategories = []string{
	"<1H OCEAN",  // within an hour of the ocean
	"INLAND",     // inland valley tracts
	"ISLAND",     // channel islands
	"NEAR BAY",   // San Francisco bay shore
	"NEAR OCEAN", // immediate coast
}

// ValidOceanProximity reports whether cat is an allowed category.
func ValidOceanProximity(cat string) bool {
	for _, c := range OceanProximityCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// FeatureNames returns the full model column layout: the numeric
// columns followed by one one-hot column per ocean_proximity category.
func FeatureNames() []string {
	names := make([]string, 0, len(NumericFeatureNames)+len(OceanProximityCategories))
	names = append(names, NumericFeatureNames...)
	for _, c := range OceanProximityCategories {
		names = append(names, "ocean_proximity="+c)
	}
	return names
}
