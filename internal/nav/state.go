package nav

import "time"

// TimeBucket accumulates time spent in one half of a two-sided state
// (portrait/landscape, foreground/background). Seconds holds the committed
// total; Since is the last transition timestamp, so the interval still in
// progress can be added at read time.
type TimeBucket struct {
	Seconds float64   `json:"seconds"`
	Since   time.Time `json:"since,omitzero"`
}

func (b TimeBucket) Accumulated() time.Duration {
	return time.Duration(b.Seconds * float64(time.Second))
}

// SessionState is the long-lived accumulator for one navigation session.
// It survives reroutes: Original keeps the first route offered, Current the
// route in effect now, and CompletedDistanceM the distance finished on
// routes replaced by reroutes.
type SessionState struct {
	Identifier         string     `json:"identifier"`
	Original           *Route     `json:"original_route,omitempty"`
	Current            *Route     `json:"current_route,omitempty"`
	CompletedDistanceM float64    `json:"completed_distance_m"`
	Reroutes           int        `json:"reroutes"`
	LastRerouteAt      *time.Time `json:"last_reroute_at,omitempty"`
	DepartedAt         *time.Time `json:"departed_at,omitempty"`

	Portrait   TimeBucket `json:"portrait"`
	Landscape  TimeBucket `json:"landscape"`
	Foreground TimeBucket `json:"foreground"`
	Background TimeBucket `json:"background"`
}

// ProgressState is a point-in-time view of where the session stands on the
// current route.
type ProgressState struct {
	LegIndex      int   `json:"leg_index"`
	LegCount      int   `json:"leg_count"`
	StepIndex     int   `json:"step_index"`
	LegStepCount  int   `json:"leg_step_count"`
	LegStepCounts []int `json:"leg_step_counts,omitempty"`

	DistanceRemainingM float64 `json:"distance_remaining_m"`
	DurationRemainingS float64 `json:"duration_remaining_s"`
	DistanceTraveledM  float64 `json:"distance_traveled_m"`

	StepDistanceM          float64 `json:"step_distance_m"`
	StepDurationS          float64 `json:"step_duration_s"`
	StepDistanceRemainingM float64 `json:"step_distance_remaining_m"`
	StepDurationRemainingS float64 `json:"step_duration_remaining_s"`

	CurrentPosition *Coordinate `json:"current_position,omitempty"`

	// CurrentManeuver is always set while navigating; UpcomingManeuver is
	// nil on the last step of the last leg.
	CurrentManeuver  *Maneuver `json:"current_maneuver,omitempty"`
	UpcomingManeuver *Maneuver `json:"upcoming_maneuver,omitempty"`
}

// TotalStepCount sums the per-leg step counts.
func (p ProgressState) TotalStepCount() int {
	total := 0
	for _, n := range p.LegStepCounts {
		total += n
	}
	return total
}
