package nav

import (
	"github.com/twpayne/go-polyline"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Maneuver describes one turn instruction. Names holds the road name
// components; downstream consumers receive them joined with ";".
type Maneuver struct {
	Instruction string   `json:"instruction"`
	Type        string   `json:"type"`
	Modifier    string   `json:"modifier"`
	Names       []string `json:"names,omitempty"`
}

type Step struct {
	Maneuver          Maneuver `json:"maneuver"`
	DistanceM         float64  `json:"distance_m"`
	ExpectedDurationS float64  `json:"expected_duration_s"`
}

type Leg struct {
	Steps []Step `json:"steps"`
}

type Route struct {
	RequestIdentifier   string       `json:"request_identifier,omitempty"`
	Profile             string       `json:"profile,omitempty"`
	Coordinates         []Coordinate `json:"coordinates,omitempty"`
	DistanceM           float64      `json:"distance_m"`
	ExpectedTravelTimeS float64      `json:"expected_travel_time_s"`
	Legs                []Leg        `json:"legs,omitempty"`
}

func (r *Route) HasCoordinates() bool {
	return r != nil && len(r.Coordinates) > 0
}

// Geometry returns the route's coordinate sequence as an encoded polyline.
func (r *Route) Geometry() string {
	if !r.HasCoordinates() {
		return ""
	}
	coords := make([][]float64, len(r.Coordinates))
	for i, c := range r.Coordinates {
		coords[i] = []float64{c.Lat, c.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

// StepCount returns the sum of per-leg step counts.
func (r *Route) StepCount() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, leg := range r.Legs {
		total += len(leg.Steps)
	}
	return total
}

// Destination returns the route's final coordinate.
func (r *Route) Destination() (Coordinate, bool) {
	if !r.HasCoordinates() {
		return Coordinate{}, false
	}
	return r.Coordinates[len(r.Coordinates)-1], true
}
