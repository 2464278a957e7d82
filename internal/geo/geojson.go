package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/terra-data/price.report/internal/monitoring"
)

// CountyMedians holds the per-county median inputs the prediction form
// falls back to when the user only supplies age and income.
type CountyMedians struct {
	Longitude              float64 `json:"longitude"`
	Latitude               float64 `json:"latitude"`
	TotalRooms             float64 `json:"total_rooms"`
	TotalBedrooms          float64 `json:"total_bedrooms"`
	Population             float64 `json:"population"`
	Households             float64 `json:"households"`
	RoomsPerHousehold      float64 `json:"rooms_per_household"`
	BedroomsPerRooms       float64 `json:"bedrooms_per_rooms"`
	PopulationPerHousehold float64 `json:"population_per_household"`
	OceanProximity         string  `json:"ocean_proximity"`
	MedianHouseValue       float64 `json:"median_house_value,omitempty"`
}

// County is one county feature: its name, median attributes, and the
// exploded, oriented polygons of its boundary.
type County struct {
	Name     string
	Medians  CountyMedians
	Polygons []Polygon
}

// Centroid returns the centroid of the county's largest polygon.
func (c *County) Centroid() Coordinate {
	if len(c.Polygons) == 0 {
		return Coordinate{c.Medians.Longitude, c.Medians.Latitude}
	}
	best := 0
	bestArea := c.Polygons[0].Area()
	for i := 1; i < len(c.Polygons); i++ {
		if a := c.Polygons[i].Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	return c.Polygons[best].Centroid()
}

// GeoJSON wire types. Only the geometry kinds the county asset uses
// are supported.

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   geometry        `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type countyProperties struct {
	Name string `json:"name"`
	CountyMedians
}

// decodeGeometry explodes a Polygon or MultiPolygon geometry into
// normalized, oriented polygons. Rings that cannot be repaired are
// dropped with a diagnostic, matching how the map layer tolerates the
// occasional bad ring in the source data.
func decodeGeometry(g geometry, name string) ([]Polygon, error) {
	var raw [][][][]float64
	switch g.Type {
	case "Polygon":
		var poly [][][]float64
		if err := json.Unmarshal(g.Coordinates, &poly); err != nil {
			return nil, fmt.Errorf("failed to decode polygon coordinates: %v", err)
		}
		raw = [][][][]float64{poly}
	case "MultiPolygon":
		if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode multipolygon coordinates: %v", err)
		}
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}

	var polygons []Polygon
	for _, rings := range raw {
		if len(rings) == 0 {
			continue
		}
		var p Polygon
		ok := true
		for i, ringCoords := range rings {
			ring := make(Ring, 0, len(ringCoords))
			for _, pos := range ringCoords {
				if len(pos) < 2 {
					ok = false
					break
				}
				ring = append(ring, Coordinate{pos[0], pos[1]})
			}
			if !ok {
				break
			}
			fixed, err := NormalizeRing(ring)
			if err != nil {
				if i == 0 {
					ok = false
					break
				}
				// drop an unrepairable hole but keep the polygon
				monitoring.Logf("dropping bad hole in county %s: %v", name, err)
				continue
			}
			if i == 0 {
				p.Exterior = fixed
			} else {
				p.Holes = append(p.Holes, fixed)
			}
		}
		if !ok || len(p.Exterior) == 0 {
			monitoring.Logf("dropping degenerate polygon in county %s", name)
			continue
		}
		p.Orient()
		polygons = append(polygons, p)
	}
	if len(polygons) == 0 {
		return nil, fmt.Errorf("county %s has no usable polygons", name)
	}
	return polygons, nil
}

// ParseCounties decodes a county FeatureCollection from r.
func ParseCounties(r io.Reader) ([]County, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode geojson: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	var counties []County
	for i, f := range fc.Features {
		var props countyProperties
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			return nil, fmt.Errorf("feature %d: failed to decode properties: %v", i, err)
		}
		if props.Name == "" {
			return nil, fmt.Errorf("feature %d: missing county name", i)
		}
		polygons, err := decodeGeometry(f.Geometry, props.Name)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %v", i, props.Name, err)
		}
		counties = append(counties, County{
			Name:     props.Name,
			Medians:  props.CountyMedians,
			Polygons: polygons,
		})
	}
	if len(counties) == 0 {
		return nil, fmt.Errorf("geojson contains no county features")
	}
	return counties, nil
}

// LoadCounties reads and parses the county asset at path.
func LoadCounties(path string) ([]County, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open county asset: %v", err)
	}
	defer f.Close()
	return ParseCounties(f)
}
