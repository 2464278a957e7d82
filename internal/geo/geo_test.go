package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// unit square, clockwise winding
func cwSquare() Ring {
	return Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
}

func TestSignedArea(t *testing.T) {
	ccw := Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if got := SignedArea(ccw); math.Abs(got-1) > 1e-12 {
		t.Errorf("SignedArea(ccw square) = %v, want 1", got)
	}
	if got := SignedArea(cwSquare()); math.Abs(got+1) > 1e-12 {
		t.Errorf("SignedArea(cw square) = %v, want -1", got)
	}
}

func TestOrientFlipsClockwiseExterior(t *testing.T) {
	p := Polygon{Exterior: cwSquare()}
	p.Orient()
	if !IsCounterClockwise(p.Exterior) {
		t.Error("exterior still clockwise after Orient")
	}
	if got := p.Area(); math.Abs(got-1) > 1e-12 {
		t.Errorf("Area = %v, want 1", got)
	}
}

func TestNormalizeRing(t *testing.T) {
	// unclosed with a duplicate point
	r := Ring{{0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 1}}
	fixed, err := NormalizeRing(r)
	if err != nil {
		t.Fatalf("NormalizeRing failed: %v", err)
	}
	want := Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if diff := cmp.Diff(want, fixed); diff != "" {
		t.Errorf("ring mismatch (-want +got):\n%s", diff)
	}

	if _, err := NormalizeRing(Ring{{0, 0}, {1, 1}}); err == nil {
		t.Error("expected error for 2-point ring")
	}
	if _, err := NormalizeRing(Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}}); err == nil {
		t.Error("expected error for zero-area ring")
	}
}

func TestCentroid(t *testing.T) {
	p := Polygon{Exterior: Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	c := p.Centroid()
	if math.Abs(c.Lon()-1) > 1e-12 || math.Abs(c.Lat()-1) > 1e-12 {
		t.Errorf("Centroid = %v, want (1,1)", c)
	}
}

const countyJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "name": "Alameda",
        "longitude": -121.9, "latitude": 37.65,
        "total_rooms": 2512, "total_bedrooms": 465,
        "population": 1160, "households": 442,
        "rooms_per_household": 5.4, "bedrooms_per_rooms": 0.19,
        "population_per_household": 2.7,
        "ocean_proximity": "NEAR BAY",
        "median_house_value": 229300
      },
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[ -122.0, 37.4 ], [ -122.0, 37.9 ], [ -121.5, 37.9 ], [ -121.5, 37.4 ], [ -122.0, 37.4 ]]],
          [[[ -122.4, 37.7 ], [ -122.4, 37.8 ], [ -122.3, 37.8 ], [ -122.3, 37.7 ], [ -122.4, 37.7 ]]]
        ]
      }
    }
  ]
}`

func TestParseCounties(t *testing.T) {
	counties, err := ParseCounties(strings.NewReader(countyJSON))
	if err != nil {
		t.Fatalf("ParseCounties failed: %v", err)
	}
	if len(counties) != 1 {
		t.Fatalf("got %d counties, want 1", len(counties))
	}

	c := counties[0]
	if c.Name != "Alameda" {
		t.Errorf("name = %q", c.Name)
	}
	if c.Medians.OceanProximity != "NEAR BAY" {
		t.Errorf("ocean_proximity = %q", c.Medians.OceanProximity)
	}
	// MultiPolygon exploded into individual polygons
	if len(c.Polygons) != 2 {
		t.Fatalf("got %d polygons, want 2", len(c.Polygons))
	}
	for i, p := range c.Polygons {
		if !IsCounterClockwise(p.Exterior) {
			t.Errorf("polygon %d exterior not counter-clockwise", i)
		}
	}

	// centroid comes from the larger polygon
	centroid := c.Centroid()
	if math.Abs(centroid.Lon()-(-121.75)) > 1e-9 || math.Abs(centroid.Lat()-37.65) > 1e-9 {
		t.Errorf("centroid = %v", centroid)
	}

	rings := ExteriorCoordinates(c.Polygons)
	if len(rings) != 2 {
		t.Errorf("got %d exterior rings", len(rings))
	}
}

func TestParseCountiesRejectsBadInput(t *testing.T) {
	if _, err := ParseCounties(strings.NewReader(`{"type":"Feature"}`)); err == nil {
		t.Error("expected error for non-collection input")
	}
	missingName := strings.Replace(countyJSON, `"name": "Alameda",`, "", 1)
	if _, err := ParseCounties(strings.NewReader(missingName)); err == nil {
		t.Error("expected error for missing county name")
	}
}
