// Package geo parses the county GeoJSON asset and prepares polygon
// geometry for the dashboard map: multi-polygons are exploded,
// degenerate rings dropped, and exterior rings oriented
// counter-clockwise so every renderer agrees on fill direction.
package geo

import "fmt"

// Coordinate is a GeoJSON position: longitude then latitude.
type Coordinate [2]float64

// Lon returns the longitude component.
func (c Coordinate) Lon() float64 { return c[0] }

// Lat returns the latitude component.
func (c Coordinate) Lat() float64 { return c[1] }

// Ring is a closed linear ring. The first and last coordinate are
// equal after normalization.
type Ring []Coordinate

// Polygon is a single polygon: one exterior ring plus optional holes.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// SignedArea returns the shoelace area of the ring: positive for
// counter-clockwise winding, negative for clockwise.
func SignedArea(r Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < len(r)-1; i++ {
		area += r[i].Lon()*r[i+1].Lat() - r[i+1].Lon()*r[i].Lat()
	}
	return area / 2
}

// IsCounterClockwise reports the ring's winding order.
func IsCounterClockwise(r Ring) bool {
	return SignedArea(r) > 0
}

// reverse flips the ring's winding in place.
func reverse(r Ring) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}

// NormalizeRing closes an unclosed ring, removes consecutive duplicate
// points, and returns an error for rings that remain degenerate
// (fewer than three distinct points or zero area).
func NormalizeRing(r Ring) (Ring, error) {
	if len(r) < 3 {
		return nil, fmt.Errorf("ring has %d points, need at least 3", len(r))
	}

	out := make(Ring, 0, len(r)+1)
	for _, c := range r {
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	// close the ring
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	} else if len(out) >= 2 && out[len(out)-2] == out[0] {
		out = out[:len(out)-1]
	}
	if len(out) < 4 {
		return nil, fmt.Errorf("ring collapses to %d distinct points", len(out)-1)
	}
	if SignedArea(out) == 0 {
		return nil, fmt.Errorf("ring has zero area")
	}
	return out, nil
}

// Orient fixes the polygon's winding: exterior counter-clockwise,
// holes clockwise. The polygon is modified in place.
func (p *Polygon) Orient() {
	if !IsCounterClockwise(p.Exterior) {
		reverse(p.Exterior)
	}
	for _, h := range p.Holes {
		if IsCounterClockwise(h) {
			reverse(h)
		}
	}
}

// Area returns the polygon's area (exterior minus holes), always
// non-negative after Orient.
func (p *Polygon) Area() float64 {
	area := SignedArea(p.Exterior)
	if area < 0 {
		area = -area
	}
	for _, h := range p.Holes {
		ha := SignedArea(h)
		if ha < 0 {
			ha = -ha
		}
		area -= ha
	}
	return area
}

// Centroid returns the area-weighted centroid of the exterior ring.
func (p *Polygon) Centroid() Coordinate {
	r := p.Exterior
	a := SignedArea(r)
	if a == 0 || len(r) < 4 {
		// fall back to the vertex mean for degenerate input
		var lon, lat float64
		n := len(r)
		if n == 0 {
			return Coordinate{}
		}
		for _, c := range r {
			lon += c.Lon()
			lat += c.Lat()
		}
		return Coordinate{lon / float64(n), lat / float64(n)}
	}

	var cx, cy float64
	for i := 0; i < len(r)-1; i++ {
		cross := r[i].Lon()*r[i+1].Lat() - r[i+1].Lon()*r[i].Lat()
		cx += (r[i].Lon() + r[i+1].Lon()) * cross
		cy += (r[i].Lat() + r[i+1].Lat()) * cross
	}
	return Coordinate{cx / (6 * a), cy / (6 * a)}
}

// ExteriorCoordinates returns the exterior rings of all polygons as
// plain coordinate slices, the shape the map layer consumes.
func ExteriorCoordinates(polygons []Polygon) [][]Coordinate {
	out := make([][]Coordinate, 0, len(polygons))
	for _, p := range polygons {
		out = append(out, []Coordinate(p.Exterior))
	}
	return out
}
