package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// EncodingError is the only failure mode of serialization: the assembled
// mapping could not be turned into a transportable form.
type EncodingError struct {
	cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("event encoding failed: %v", e.cause)
}

func (e *EncodingError) Unwrap() error {
	return e.cause
}

// Serialize maps a snapshot onto the canonical field-name contract. Absent
// optional fields are omitted entirely, never emitted as null. Field names
// are a compatibility surface for downstream analytics; renaming one is a
// breaking change.
func Serialize(snap EventSnapshot) (map[string]any, error) {
	fields := map[string]any{
		"created":           formatTimestamp(snap.Created),
		"sessionIdentifier": snap.SessionIdentifier,

		"distanceCompleted": snap.DistanceCompleted,
		"distanceRemaining": snap.DistanceRemaining,
		"durationRemaining": snap.DurationRemaining,
		"stepIndex":         snap.StepIndex,
		"stepCount":         snap.StepCount,
		"legIndex":          snap.LegIndex,
		"legCount":          snap.LegCount,
		"totalStepCount":    snap.TotalStepCount,

		"rerouteCount":  snap.RerouteCount,
		"simulation":    snap.Simulation,
		"profile":       snap.Profile,
		"sdkIdentifier": snap.SDKIdentifier,
		"sdkVersion":    snap.SDKVersion,

		"volumeLevel":      snap.VolumeLevel,
		"audioType":        string(snap.AudioType),
		"screenBrightness": snap.ScreenBrightness,
		"batteryPluggedIn": snap.BatteryPluggedIn,
		"batteryLevel":     snap.BatteryLevel,
		"applicationState": string(snap.ApplicationState),

		"percentTimeInPortrait":   snap.PercentTimeInPortrait,
		"percentTimeInForeground": snap.PercentTimeInForeground,
	}

	if snap.StartTimestamp != nil {
		fields["startTimestamp"] = formatTimestamp(*snap.StartTimestamp)
	}
	if snap.OriginalRequestIdentifier != "" {
		fields["originalRequestIdentifier"] = snap.OriginalRequestIdentifier
	}
	if snap.RequestIdentifier != "" {
		fields["requestIdentifier"] = snap.RequestIdentifier
	}

	if facts := snap.Original; facts != nil {
		fields["originalGeometry"] = facts.Geometry
		fields["originalDistance"] = facts.Distance
		fields["originalEstimatedDuration"] = facts.EstimatedDuration
		fields["originalStepCount"] = facts.StepCount
	}
	if facts := snap.Current; facts != nil {
		fields["geometry"] = facts.Geometry
		fields["distance"] = facts.Distance
		fields["estimatedDuration"] = facts.EstimatedDuration
		fields["routeStepCount"] = facts.StepCount
	}

	// coordinates flatten into sibling scalars, not a nested object
	if snap.Position != nil {
		fields["lat"] = snap.Position.Lat
		fields["lng"] = snap.Position.Lng
	}
	if snap.DistanceToDestination != nil {
		fields["userAbsoluteDistanceToDestination"] = *snap.DistanceToDestination
	}

	if snap.LocationEngine != "" {
		fields["locationEngine"] = snap.LocationEngine
	}
	if snap.LocationAccuracy != nil {
		fields["locationAccuracy"] = *snap.LocationAccuracy
	}

	if _, err := json.Marshal(fields); err != nil {
		return nil, &EncodingError{cause: err}
	}
	return fields, nil
}

// SerializeStep maps a step snapshot onto its nested field contract.
// Maneuver strings are omitted when empty; the absent-upcoming case (last
// step of the last leg) therefore drops the whole upcoming group.
func SerializeStep(step StepSnapshot) map[string]any {
	fields := map[string]any{
		"distance":          step.Distance,
		"duration":          step.Duration,
		"distanceRemaining": step.DistanceRemaining,
		"durationRemaining": step.DurationRemaining,
	}
	putNonEmpty(fields, "upcomingInstruction", step.UpcomingInstruction)
	putNonEmpty(fields, "upcomingType", step.UpcomingType)
	putNonEmpty(fields, "upcomingModifier", step.UpcomingModifier)
	putNonEmpty(fields, "upcomingName", step.UpcomingName)
	putNonEmpty(fields, "previousInstruction", step.PreviousInstruction)
	putNonEmpty(fields, "previousType", step.PreviousType)
	putNonEmpty(fields, "previousModifier", step.PreviousModifier)
	putNonEmpty(fields, "previousName", step.PreviousName)
	return fields
}

func putNonEmpty(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
