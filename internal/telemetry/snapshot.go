package telemetry

import (
	"time"

	"backend-navtelemetry/internal/nav"
)

// RouteFacts is the all-or-nothing field group derived from one route
// reference. A nil *RouteFacts means the route had no coordinate data; a
// non-nil value always carries all four fields.
type RouteFacts struct {
	Geometry          string
	Distance          int // meters, rounded half away from zero
	EstimatedDuration int // seconds, rounded half away from zero
	StepCount         int
}

// EventSnapshot is an immutable description of "what is happening right
// now" in a navigation session. One instance is built per reported event
// and never mutated; feedback events embed it rather than extend it.
type EventSnapshot struct {
	SessionIdentifier         string
	OriginalRequestIdentifier string // "" when the original route has no fetch id
	RequestIdentifier         string

	Original *RouteFacts
	Current  *RouteFacts

	Position              *nav.Coordinate
	DistanceToDestination *float64 // meters, great-circle

	DistanceCompleted int // meters, cumulative across reroutes
	DistanceRemaining int
	DurationRemaining int
	StepIndex         int
	StepCount         int // steps in the current leg
	LegIndex          int
	LegCount          int
	TotalStepCount    int

	RerouteCount   int
	Simulation     bool
	Profile        string
	SDKIdentifier  string
	SDKVersion     string
	Created        time.Time
	StartTimestamp *time.Time

	VolumeLevel      int
	AudioType        AudioType
	ScreenBrightness int
	BatteryPluggedIn bool
	BatteryLevel     int // BatteryLevelUnknown when the sensor cannot be read
	ApplicationState AppState
	LocationEngine   string // "" when unknown
	LocationAccuracy *float64

	PercentTimeInPortrait   int
	PercentTimeInForeground int
}

// StepSnapshot captures the current and upcoming maneuver at feedback time.
// Unlike the route-level fields, its distances and durations are truncated,
// not rounded.
type StepSnapshot struct {
	UpcomingInstruction string
	UpcomingType        string
	UpcomingModifier    string
	UpcomingName        string // road names joined with ";"

	PreviousInstruction string
	PreviousType        string
	PreviousModifier    string
	PreviousName        string

	Distance          int
	Duration          int
	DistanceRemaining int
	DurationRemaining int
}
